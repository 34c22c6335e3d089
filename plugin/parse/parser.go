// Package parse extracts a date, a category and a display title from a short
// natural-language reminder phrase such as "Mom birthday Jan 3rd".
//
// Parsing is a pure function of the input text and the injected clock.
package parse

import (
	"time"
)

// Result is the outcome of parsing one input string.
type Result struct {
	// Date is nil when no date-like substring was found.
	Date    *time.Time `json:"date,omitempty"`
	Title   string     `json:"title"`
	Type    Category   `json:"type"`
	Keyword string     `json:"keyword,omitempty"`
	// DateSpan is the text the date was read from, before the year shift.
	DateSpan Span `json:"date_span"`
}

// HasDate reports whether a date was found.
func (r Result) HasDate() bool {
	return r.Date != nil
}

// Parser composes the extractor, the classifier and the title synthesizer.
type Parser struct {
	extractor *Extractor
	location  *time.Location
	now       func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithDetector replaces the natural-language detector. nil disables it.
func WithDetector(d Detector) Option {
	return func(p *Parser) {
		p.extractor = NewExtractor(d)
	}
}

// WithLocation sets the location dates are built in.
func WithLocation(loc *time.Location) Option {
	return func(p *Parser) {
		if loc != nil {
			p.location = loc
		}
	}
}

// WithClock sets the source of "now".
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// NewParser creates a parser using DefaultDetector, the local timezone and
// the system clock unless overridden.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		extractor: NewExtractor(DefaultDetector()),
		location:  time.Local,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse classifies text, extracts its first date and builds the title.
func (p *Parser) Parse(text string) Result {
	now := p.now().In(p.location)

	category, keyword := Classify(text)

	result := Result{Type: category, Keyword: keyword}
	if date, span, ok := p.extractor.Extract(text, now); ok {
		result.Date = &date
		result.DateSpan = span
	}
	result.Title = SynthesizeTitle(text, result.DateSpan, keyword, category)
	return result
}

// PredictType returns the type a capture of text would be saved with, given
// the caller's sticky default.
func (p *Parser) PredictType(text string, sticky Category) Category {
	return ResolveType(p.Parse(text).Type, sticky)
}

// ResolveType applies the sticky-default rule: a parsed CategoryOther is
// replaced by sticky when sticky is a specific category.
func ResolveType(parsed, sticky Category) Category {
	if parsed == CategoryOther && sticky != "" && sticky != CategoryOther {
		return sticky
	}
	return parsed
}
