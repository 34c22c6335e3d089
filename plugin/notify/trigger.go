package notify

import (
	"fmt"
	"time"

	"github.com/cgallello/remembered/internal/calendar"
)

// Recurrence controls whether a reminder repeats every year.
type Recurrence string

const (
	RecurrenceNone   Recurrence = "none"
	RecurrenceAnnual Recurrence = "annual"
)

// ParseRecurrence converts a stored recurrence name. Empty means none.
func ParseRecurrence(s string) (Recurrence, error) {
	switch Recurrence(s) {
	case "", RecurrenceNone:
		return RecurrenceNone, nil
	case RecurrenceAnnual:
		return RecurrenceAnnual, nil
	default:
		return "", fmt.Errorf("unknown recurrence %q", s)
	}
}

// AlertTime is the local clock time alerts fire at.
type AlertTime struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// DefaultAlertTime is 09:00.
var DefaultAlertTime = AlertTime{Hour: 9, Minute: 0}

// Validate checks the clock range.
func (a AlertTime) Validate() error {
	if a.Hour < 0 || a.Hour > 23 {
		return fmt.Errorf("alert hour %d out of range 0-23", a.Hour)
	}
	if a.Minute < 0 || a.Minute > 59 {
		return fmt.Errorf("alert minute %d out of range 0-59", a.Minute)
	}
	return nil
}

func (a AlertTime) String() string {
	return fmt.Sprintf("%02d:%02d", a.Hour, a.Minute)
}

// Input is everything Schedule needs to know about one record.
type Input struct {
	Date       *time.Time
	Recurrence Recurrence
	Intervals  []Interval
	Enabled    bool
	At         AlertTime
}

// Trigger is one alert to register.
type Trigger struct {
	Interval  Interval  `json:"interval"`
	At        time.Time `json:"at"`
	Repeating bool      `json:"repeating"`
}

// TriggerID identifies the alert for a record and interval.
func TriggerID(uid string, interval Interval) string {
	return uid + "-" + string(interval)
}

// Schedule computes the triggers for one record, in catalog order. It
// returns nothing when notifications are disabled or the date is absent.
// Triggers that are not strictly after now are dropped, except that annual
// records move a past trigger to the following year first.
func Schedule(in Input, now time.Time) []Trigger {
	if !in.Enabled || in.Date == nil {
		return nil
	}

	selected := make(map[Interval]bool, len(in.Intervals))
	for _, interval := range in.Intervals {
		selected[interval] = true
	}

	base := calendar.AtClock(*in.Date, in.At.Hour, in.At.Minute)
	repeating := in.Recurrence == RecurrenceAnnual

	var triggers []Trigger
	for _, interval := range Intervals() {
		if !selected[interval] {
			continue
		}
		at := interval.Before(base)
		if repeating {
			at = calendar.ShiftInstant(at, now)
		}
		if !at.After(now) {
			continue
		}
		triggers = append(triggers, Trigger{Interval: interval, At: at, Repeating: repeating})
	}
	return triggers
}
