package parse

import (
	"regexp"
	"strconv"
	"time"

	"github.com/cgallello/remembered/internal/calendar"
)

// numericDatePattern matches "8/8", "12-25", "09.09" as month then day.
var numericDatePattern = regexp.MustCompile(`\b(\d{1,2})[/.\-](\d{1,2})\b`)

// Extractor finds the first date in a text and applies the future-shift rule.
type Extractor struct {
	detector Detector
}

// NewExtractor creates an extractor. A nil detector leaves only the numeric
// month/day fallback.
func NewExtractor(detector Detector) *Extractor {
	return &Extractor{detector: detector}
}

// Extract returns the date found in text and the span it was read from. now
// supplies both "today" and the location dates are built in. The returned
// span is the pre-shift match so callers can strip it from the text.
func (e *Extractor) Extract(text string, now time.Time) (time.Time, Span, bool) {
	candidate, span, ok := e.detect(text, now)
	if !ok {
		candidate, span, ok = numericDate(text, now)
	}
	if !ok {
		return time.Time{}, Span{}, false
	}
	return calendar.ShiftDay(candidate, now), span, true
}

func (e *Extractor) detect(text string, now time.Time) (time.Time, Span, bool) {
	if e.detector == nil {
		return time.Time{}, Span{}, false
	}
	m, ok := e.detector.Detect(text, now)
	if !ok || m.Span.IsZero() || m.Time.IsZero() {
		return time.Time{}, Span{}, false
	}
	return m.Time, m.Span, true
}

// numericDate reads the first month/day pair and builds noon of that day in
// the current year.
func numericDate(text string, now time.Time) (time.Time, Span, bool) {
	loc := numericDatePattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return time.Time{}, Span{}, false
	}
	month, _ := strconv.Atoi(text[loc[2]:loc[3]])
	day, _ := strconv.Atoi(text[loc[4]:loc[5]])

	t, ok := buildDate(now.Year(), time.Month(month), day, now.Location())
	if !ok {
		return time.Time{}, Span{}, false
	}
	return t, Span{Start: loc[0], End: loc[1], Text: text[loc[0]:loc[1]]}, true
}
