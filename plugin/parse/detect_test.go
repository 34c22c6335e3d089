package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthDayDetector(t *testing.T) {
	d := NewMonthDayDetector()

	tests := []struct {
		name     string
		input    string
		wantSpan string
		wantDate string
	}{
		{"abbreviation", "Surgery on Jan 18", "Jan 18", "2026-01-18 12:00"},
		{"full name ordinal", "Mom January 3rd dinner", "January 3rd", "2026-01-03 12:00"},
		{"day first", "Party 18 Dec", "18 Dec", "2026-12-18 12:00"},
		{"day of month", "the 1st of May", "1st of May", "2026-05-01 12:00"},
		{"with year", "Trip Sept. 9, 2028", "Sept. 9, 2028", "2028-09-09 12:00"},
		{"case insensitive", "dinner FEB 2", "FEB 2", "2026-02-02 12:00"},
		{"earliest wins", "3 March or Apr 4", "3 March", "2026-03-03 12:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := d.Detect(tt.input, fixedNow)
			require.True(t, ok)
			assert.Equal(t, tt.wantSpan, m.Span.Text)
			assert.Equal(t, tt.wantSpan, tt.input[m.Span.Start:m.Span.End])
			assert.Equal(t, tt.wantDate, m.Time.Format("2006-01-02 15:04"))
		})
	}
}

func TestMonthDayDetector_NoMatch(t *testing.T) {
	d := NewMonthDayDetector()

	for _, input := range []string{"Mark 5 birthday", "Jan 32", "Janitor 4", "nothing here", "18 Janitors"} {
		_, ok := d.Detect(input, fixedNow)
		assert.False(t, ok, input)
	}
}

func TestNumericDateDetector(t *testing.T) {
	d := NewNumericDateDetector()

	tests := []struct {
		name     string
		input    string
		wantSpan string
		wantDate string
	}{
		{"slashes", "Mom bday 12/25/2027", "12/25/2027", "2027-12-25 12:00"},
		{"dots", "Trip 09.09.2028 booked", "09.09.2028", "2028-09-09 12:00"},
		{"two digit year", "Graduation 6-14-28", "6-14-28", "2028-06-14 12:00"},
		{"past year kept", "Moved in 3/1/2020", "3/1/2020", "2020-03-01 12:00"},
		{"invalid first match skipped", "13/40/2027 or 1/2/2027", "1/2/2027", "2027-01-02 12:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := d.Detect(tt.input, fixedNow)
			require.True(t, ok)
			assert.Equal(t, tt.wantSpan, m.Span.Text)
			assert.Equal(t, tt.wantSpan, tt.input[m.Span.Start:m.Span.End])
			assert.Equal(t, tt.wantDate, m.Time.Format("2006-01-02 15:04"))
		})
	}

	for _, input := range []string{"Stef birthday 8/8", "Score 13/40/2027", "v1.2.3"} {
		_, ok := d.Detect(input, fixedNow)
		assert.False(t, ok, input)
	}
}

func TestWhenDetector_WeekdayAbbreviations(t *testing.T) {
	d := NewWhenDetector()

	for _, input := range []string{"Sun birthday", "Call Mon about it", "Sat"} {
		_, ok := d.Detect(input, fixedNow)
		assert.False(t, ok, input)
	}

	m, ok := d.Detect("Lunch on friday", fixedNow)
	require.True(t, ok)
	assert.Equal(t, time.Friday, m.Time.Weekday())
	assert.True(t, m.Time.After(fixedNow))
}

func TestFirstMatch(t *testing.T) {
	at := func(start int, when time.Time) Detector {
		return DetectorFunc(func(text string, ref time.Time) (Match, bool) {
			return Match{Span: Span{Start: start, End: start + 1, Text: text[start : start+1]}, Time: when}, true
		})
	}
	none := DetectorFunc(func(string, time.Time) (Match, bool) { return Match{}, false })

	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC)

	m, ok := FirstMatch(at(5, late), none, at(2, early)).Detect("0123456789", fixedNow)
	require.True(t, ok)
	assert.Equal(t, 2, m.Span.Start)
	assert.Equal(t, early, m.Time)

	m, ok = FirstMatch(at(3, early), at(3, late)).Detect("0123456789", fixedNow)
	require.True(t, ok)
	assert.Equal(t, early, m.Time, "ties go to the first detector")

	_, ok = FirstMatch(none, nil).Detect("0123456789", fixedNow)
	assert.False(t, ok)
}

func TestTrimSpan(t *testing.T) {
	text := "Lunch tomorrow, ok"
	span, ok := trimSpan(text, 5, 15)
	require.True(t, ok)
	assert.Equal(t, "tomorrow", span.Text)
	assert.Equal(t, 6, span.Start)
	assert.Equal(t, 14, span.End)

	_, ok = trimSpan(" , ", 0, 3)
	assert.False(t, ok)
}

func TestWhenDetector_RelativeDates(t *testing.T) {
	parser := newTestParser()

	got := parser.Parse("Lunch tomorrow")
	require.NotNil(t, got.Date)
	assert.Equal(t, "2026-10-20", got.Date.Format("2006-01-02"))
	assert.Equal(t, "Lunch", got.Title)

	got = parser.Parse("Checkup in 2 weeks")
	require.NotNil(t, got.Date)
	assert.Equal(t, "2026-11-02", got.Date.Format("2006-01-02"))
	assert.Equal(t, CategoryMedical, got.Type)

	got = parser.Parse("Today's event")
	require.NotNil(t, got.Date)
	assert.Equal(t, 2027, got.Date.Year())
}
