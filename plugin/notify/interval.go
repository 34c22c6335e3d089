// Package notify turns a reminder's date into alert triggers and keeps the
// alert registry in sync with them.
package notify

import (
	"fmt"
	"time"

	"github.com/cgallello/remembered/internal/calendar"
)

// Interval is a lead time before a reminder's date.
type Interval string

const (
	IntervalOneMonth  Interval = "oneMonth"
	IntervalTwoWeeks  Interval = "twoWeeks"
	IntervalOneWeek   Interval = "oneWeek"
	IntervalThreeDays Interval = "threeDays"
	IntervalOneDay    Interval = "oneDay"
	IntervalDayOf     Interval = "dayOf"
)

var catalog = []struct {
	interval Interval
	friendly string
	months   int
	days     int
}{
	{IntervalOneMonth, "in 1 month", 1, 0},
	{IntervalTwoWeeks, "in 2 weeks", 0, 14},
	{IntervalOneWeek, "in 1 week", 0, 7},
	{IntervalThreeDays, "in 3 days", 0, 3},
	{IntervalOneDay, "tomorrow", 0, 1},
	{IntervalDayOf, "today", 0, 0},
}

// Intervals returns every interval, longest lead first.
func Intervals() []Interval {
	out := make([]Interval, len(catalog))
	for i, entry := range catalog {
		out[i] = entry.interval
	}
	return out
}

// DefaultIntervals is the selection a new record starts with.
func DefaultIntervals() []Interval {
	return []Interval{IntervalOneWeek, IntervalDayOf}
}

// ParseInterval converts a stored name into an Interval.
func ParseInterval(name string) (Interval, error) {
	for _, entry := range catalog {
		if string(entry.interval) == name {
			return entry.interval, nil
		}
	}
	return "", fmt.Errorf("unknown notification interval %q", name)
}

// ParseIntervals converts stored names, failing on the first unknown one.
func ParseIntervals(names []string) ([]Interval, error) {
	out := make([]Interval, 0, len(names))
	for _, name := range names {
		interval, err := ParseInterval(name)
		if err != nil {
			return nil, err
		}
		out = append(out, interval)
	}
	return out, nil
}

// Strings returns the interval names.
func Strings(intervals []Interval) []string {
	out := make([]string, len(intervals))
	for i, interval := range intervals {
		out[i] = string(interval)
	}
	return out
}

func (i Interval) index() int {
	for idx, entry := range catalog {
		if entry.interval == i {
			return idx
		}
	}
	return -1
}

// Valid reports whether i is in the catalog.
func (i Interval) Valid() bool {
	return i.index() >= 0
}

// Friendly is the phrase used in alert bodies ("in 2 weeks", "tomorrow").
func (i Interval) Friendly() string {
	if idx := i.index(); idx >= 0 {
		return catalog[idx].friendly
	}
	return ""
}

// Before returns t moved back by the interval's lead. Month leads clamp the
// day to the end of the earlier month.
func (i Interval) Before(t time.Time) time.Time {
	idx := i.index()
	if idx < 0 {
		return t
	}
	entry := catalog[idx]
	if entry.months != 0 {
		t = calendar.AddMonths(t, -entry.months)
	}
	return t.AddDate(0, 0, -entry.days)
}
