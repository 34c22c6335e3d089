// Package calendar provides calendar-day helpers shared by the parser and the
// notification scheduler.
//
// The future-shift rule lives here: a date that is not in the future is moved
// forward by exactly one year. The parser applies it at day granularity, the
// trigger scheduler at instant granularity.
package calendar

import (
	"fmt"
	"time"
)

// Granularity selects how a candidate is compared against "now".
type Granularity int

const (
	// ByDay compares calendar days and shifts when the candidate day is on or
	// before today.
	ByDay Granularity = iota
	// ByInstant compares instants and shifts when the candidate is strictly
	// before now.
	ByInstant
)

// ParseLocation parses an IANA timezone identifier (e.g., "Europe/Paris").
// An empty identifier means the process local zone.
func ParseLocation(tz string) (*time.Location, error) {
	switch tz {
	case "", "Local":
		return time.Local, nil
	case "UTC":
		return time.UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Local, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	return loc, nil
}

// StartOfDay returns midnight of t's calendar day in t's location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// AtClock returns t's calendar day at hour:minute in t's location.
func AtClock(t time.Time, hour, minute int) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), hour, minute, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar days from a to b, measured in
// a's location. Negative when b is before a.
func DaysBetween(a, b time.Time) int {
	loc := a.Location()
	from := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bb := b.In(loc)
	to := time.Date(bb.Year(), bb.Month(), bb.Day(), 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

// DaysIn returns the number of days in month m of year y.
func DaysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths adds n months to t, clamping the day to the end of the target
// month (Mar 31 - 1 month = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + n
	ty := y + floorDiv(total, 12)
	tm := time.Month(total - floorDiv(total, 12)*12 + 1)
	if last := DaysIn(ty, tm); d > last {
		d = last
	}
	return time.Date(ty, tm, d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// AddYears adds n years to t with the same clamping as AddMonths, so Feb 29
// becomes Feb 28 in a non-leap year.
func AddYears(t time.Time, n int) time.Time {
	return AddMonths(t, 12*n)
}

// Shift applies the future-shift rule: if t is not in the future relative to
// now at the given granularity, it is advanced by exactly one year.
func Shift(t, now time.Time, g Granularity) time.Time {
	if IsStale(t, now, g) {
		return AddYears(t, 1)
	}
	return t
}

// IsStale reports whether t is not in the future relative to now.
func IsStale(t, now time.Time, g Granularity) bool {
	switch g {
	case ByInstant:
		return t.Before(now)
	default:
		return !StartOfDay(t).After(StartOfDay(now.In(t.Location())))
	}
}

// ShiftDay is Shift at day granularity.
func ShiftDay(t, now time.Time) time.Time {
	return Shift(t, now, ByDay)
}

// ShiftInstant is Shift at instant granularity.
func ShiftInstant(t, now time.Time) time.Time {
	return Shift(t, now, ByInstant)
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
