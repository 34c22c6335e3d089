package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/en"

	"github.com/cgallello/remembered/internal/calendar"
)

// Span is a byte range of the input text.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// IsZero reports whether the span is empty.
func (s Span) IsZero() bool {
	return s.End <= s.Start
}

// Match is a date found by a Detector.
type Match struct {
	Span Span
	Time time.Time
}

// Detector finds the first date-like substring of a text. ref is the current
// time in the caller's location.
type Detector interface {
	Detect(text string, ref time.Time) (Match, bool)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(text string, ref time.Time) (Match, bool)

// Detect implements Detector.
func (f DetectorFunc) Detect(text string, ref time.Time) (Match, bool) {
	return f(text, ref)
}

// FirstMatch returns a Detector that runs every detector and keeps the match
// that starts earliest in the text. Ties go to the detector listed first.
func FirstMatch(detectors ...Detector) Detector {
	return DetectorFunc(func(text string, ref time.Time) (Match, bool) {
		var best Match
		found := false
		for _, d := range detectors {
			if d == nil {
				continue
			}
			m, ok := d.Detect(text, ref)
			if !ok {
				continue
			}
			if !found || m.Span.Start < best.Span.Start {
				best, found = m, true
			}
		}
		return best, found
	})
}

// DefaultDetector is the natural-language stage used by NewParser.
func DefaultDetector() Detector {
	return FirstMatch(NewNumericDateDetector(), NewMonthDayDetector(), NewWhenDetector())
}

const monthNames = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

var (
	// "Jan 18", "January 3rd", "Sept. 9, 2027"
	monthFirstPattern = regexp.MustCompile(`(?i)\b(` + monthNames + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4})\b)?`)
	// "18 Jan", "3rd of March"
	dayFirstPattern = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:of\s+)?(` + monthNames + `)\b\.?(?:,?\s+(\d{4})\b)?`)
)

// MonthDayDetector recognizes English month names combined with a day number.
// Dates are placed at noon in ref's location, in ref's year unless the text
// carries one.
type MonthDayDetector struct{}

// NewMonthDayDetector creates a MonthDayDetector.
func NewMonthDayDetector() *MonthDayDetector {
	return &MonthDayDetector{}
}

// Detect implements Detector.
func (d *MonthDayDetector) Detect(text string, ref time.Time) (Match, bool) {
	var best Match
	found := false

	try := func(pattern *regexp.Regexp, monthGroup, dayGroup, yearGroup int) {
		for _, loc := range pattern.FindAllStringSubmatchIndex(text, -1) {
			if found && loc[0] >= best.Span.Start {
				return
			}
			month := monthFromName(text[loc[2*monthGroup]:loc[2*monthGroup+1]])
			day, _ := strconv.Atoi(text[loc[2*dayGroup]:loc[2*dayGroup+1]])
			year := ref.Year()
			if loc[2*yearGroup] >= 0 {
				year, _ = strconv.Atoi(text[loc[2*yearGroup]:loc[2*yearGroup+1]])
			}
			t, ok := buildDate(year, month, day, ref.Location())
			if !ok {
				continue
			}
			best = Match{
				Span: Span{Start: loc[0], End: loc[1], Text: text[loc[0]:loc[1]]},
				Time: t,
			}
			found = true
			return
		}
	}

	try(monthFirstPattern, 1, 2, 3)
	try(dayFirstPattern, 2, 1, 3)
	return best, found
}

// fullNumericPattern matches "12/25/2027", "1-2-27", "09.09.2028".
var fullNumericPattern = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})[/.\-](\d{4}|\d{2})\b`)

// NumericDateDetector recognizes month/day/year dates. Two-digit years are
// read as 20yy. Dates without a year are left to the extractor's fallback.
type NumericDateDetector struct{}

// NewNumericDateDetector creates a NumericDateDetector.
func NewNumericDateDetector() *NumericDateDetector {
	return &NumericDateDetector{}
}

// Detect implements Detector.
func (d *NumericDateDetector) Detect(text string, ref time.Time) (Match, bool) {
	for _, loc := range fullNumericPattern.FindAllStringSubmatchIndex(text, -1) {
		month, _ := strconv.Atoi(text[loc[2]:loc[3]])
		day, _ := strconv.Atoi(text[loc[4]:loc[5]])
		year, _ := strconv.Atoi(text[loc[6]:loc[7]])
		if loc[7]-loc[6] == 2 {
			year += 2000
		}
		t, ok := buildDate(year, time.Month(month), day, ref.Location())
		if !ok {
			continue
		}
		return Match{
			Span: Span{Start: loc[0], End: loc[1], Text: text[loc[0]:loc[1]]},
			Time: t,
		}, true
	}
	return Match{}, false
}

func monthFromName(name string) time.Month {
	prefix := strings.ToLower(name)
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	for m := time.January; m <= time.December; m++ {
		if strings.ToLower(m.String()[:3]) == prefix {
			return m
		}
	}
	return 0
}

// weekdayAbbreviations are only accepted as dates with a qualifier such as
// "on", "this" or "next"; alone they are too often names ("Sun", "Mon").
var weekdayAbbreviations = map[string]bool{
	"mon": true, "tue": true, "tues": true, "wed": true, "thu": true, "thur": true,
	"thurs": true, "fri": true, "sat": true, "sun": true,
}

// WhenDetector wraps github.com/olebedev/when with the English relative-date
// rules ("tomorrow", "next friday", "in 2 weeks").
type WhenDetector struct {
	parser *when.Parser
}

// NewWhenDetector creates a WhenDetector.
func NewWhenDetector() *WhenDetector {
	w := when.New(nil)
	w.Add(
		en.CasualDate(rules.Override),
		en.Weekday(rules.Override),
		en.Deadline(rules.Override),
	)
	return &WhenDetector{parser: w}
}

// Detect implements Detector.
func (d *WhenDetector) Detect(text string, ref time.Time) (Match, bool) {
	result, err := d.parser.Parse(text, ref)
	if err != nil || result == nil || result.Text == "" {
		return Match{}, false
	}

	start := result.Index
	end := start + len(result.Text)
	if start < 0 || end > len(text) || text[start:end] != result.Text {
		start = strings.Index(text, result.Text)
		if start < 0 {
			return Match{}, false
		}
		end = start + len(result.Text)
	}

	span, ok := trimSpan(text, start, end)
	if !ok || weekdayAbbreviations[strings.ToLower(span.Text)] {
		return Match{}, false
	}
	return Match{Span: span, Time: result.Time.In(ref.Location())}, true
}

// trimSpan narrows [start, end) so it begins and ends on a letter or digit.
func trimSpan(text string, start, end int) (Span, bool) {
	for start < end {
		r, size := utf8.DecodeRuneInString(text[start:end])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRuneInString(text[start:end])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			break
		}
		end -= size
	}
	if end <= start {
		return Span{}, false
	}
	return Span{Start: start, End: end, Text: text[start:end]}, true
}

// buildDate validates month/day and returns noon of that day. Feb 29 is
// accepted in any year and clamped to Feb 28 when the year is not a leap year.
func buildDate(year int, month time.Month, day int, loc *time.Location) (time.Time, bool) {
	if month < time.January || month > time.December || day < 1 {
		return time.Time{}, false
	}
	if day > calendar.DaysIn(2000, month) {
		return time.Time{}, false
	}
	if last := calendar.DaysIn(year, month); day > last {
		day = last
	}
	return time.Date(year, month, day, 12, 0, 0, 0, loc), true
}
