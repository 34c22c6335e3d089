package notify

import (
	"context"
	"fmt"
	"time"
)

// Alert is a trigger bound to a record, as handed to an AlertScheduler.
type Alert struct {
	ID        string    `json:"id"`
	RecordUID string    `json:"record_uid"`
	Interval  Interval  `json:"interval"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	At        time.Time `json:"at"`
	Repeating bool      `json:"repeating"`
}

// NewAlert builds the alert for one trigger of a record.
func NewAlert(uid, title string, trigger Trigger) Alert {
	return Alert{
		ID:        TriggerID(uid, trigger.Interval),
		RecordUID: uid,
		Interval:  trigger.Interval,
		Title:     title,
		Body:      AlertBody(title, trigger.Interval),
		At:        trigger.At,
		Repeating: trigger.Repeating,
	}
}

// AlertBody is the text shown when an alert fires.
func AlertBody(title string, interval Interval) string {
	return fmt.Sprintf("Reminder: %s is happening %s.", title, interval.Friendly())
}

// AlertScheduler registers alerts with whatever delivers them at the right
// time. Add replaces an alert with the same ID. Remove ignores unknown IDs.
type AlertScheduler interface {
	Add(ctx context.Context, alert Alert) error
	Remove(ctx context.Context, ids ...string) error
	Pending(ctx context.Context) ([]Alert, error)
}

// Notifier delivers a fired alert to the user.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, alert Alert) error

// Send implements Notifier.
func (f NotifierFunc) Send(ctx context.Context, alert Alert) error {
	return f(ctx, alert)
}
