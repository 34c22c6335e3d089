package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// ErrNotFound is returned when a row to update or delete does not exist.
var ErrNotFound = errors.New("not found")

// Reminder is the object representing a captured reminder.
type Reminder struct {
	ID        int32
	UID       string
	CreatedTs int64
	UpdatedTs int64

	RawInput string
	Title    string
	// Date is unix seconds; nil until a date is known.
	Date       *int64
	Type       string
	Recurrence string
	// NeedsReview is set when capture found no date.
	NeedsReview bool
	// Notes is markdown.
	Notes string

	NotificationEnabled   bool
	NotificationIntervals []string

	ContactID          string
	ContactDisplayName string
}

// DateTime returns Date as a time in loc.
func (r *Reminder) DateTime(loc *time.Location) *time.Time {
	if r.Date == nil {
		return nil
	}
	t := time.Unix(*r.Date, 0).In(loc)
	return &t
}

// FindReminder is the find condition for reminder.
type FindReminder struct {
	ID  *int32
	UID *string

	Type                *string
	NotificationEnabled *bool
	NeedsReview         *bool
	// DateAfter keeps reminders with a date at or after this unix time.
	DateAfter *int64
	// HasDate filters on whether a date is set.
	HasDate *bool

	// Pagination
	Limit  *int
	Offset *int
}

// UpdateReminder is the update request for reminder. Nil fields are left
// unchanged; ClearDate removes the date.
type UpdateReminder struct {
	ID        int32
	UpdatedTs *int64

	Title                 *string
	Date                  *int64
	ClearDate             bool
	Type                  *string
	Recurrence            *string
	NeedsReview           *bool
	Notes                 *string
	NotificationEnabled   *bool
	NotificationIntervals *[]string
	ContactID             *string
	ContactDisplayName    *string
}

// DeleteReminder is the delete request for reminder.
type DeleteReminder struct {
	ID int32
}

// CreateReminder creates a new reminder.
func (s *Store) CreateReminder(ctx context.Context, create *Reminder) (*Reminder, error) {
	return s.driver.CreateReminder(ctx, create)
}

// ListReminders lists reminders with filter, ordered by date with undated
// reminders last.
func (s *Store) ListReminders(ctx context.Context, find *FindReminder) ([]*Reminder, error) {
	return s.driver.ListReminders(ctx, find)
}

// GetReminder gets a reminder. It returns nil when nothing matches.
func (s *Store) GetReminder(ctx context.Context, find *FindReminder) (*Reminder, error) {
	list, err := s.driver.ListReminders(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateReminder updates a reminder and returns the stored row.
func (s *Store) UpdateReminder(ctx context.Context, update *UpdateReminder) (*Reminder, error) {
	if update.UpdatedTs == nil {
		now := time.Now().Unix()
		update.UpdatedTs = &now
	}
	if err := s.driver.UpdateReminder(ctx, update); err != nil {
		return nil, err
	}
	reminder, err := s.GetReminder(ctx, &FindReminder{ID: &update.ID})
	if err != nil {
		return nil, err
	}
	if reminder == nil {
		return nil, errors.Wrapf(ErrNotFound, "reminder %d", update.ID)
	}
	return reminder, nil
}

// DeleteReminder deletes a reminder.
func (s *Store) DeleteReminder(ctx context.Context, delete *DeleteReminder) error {
	return s.driver.DeleteReminder(ctx, delete)
}

// EncodeIntervals renders interval names for a TEXT column.
func EncodeIntervals(intervals []string) (string, error) {
	if intervals == nil {
		intervals = []string{}
	}
	b, err := json.Marshal(intervals)
	if err != nil {
		return "", errors.Wrap(err, "failed to encode notification intervals")
	}
	return string(b), nil
}

// DecodeIntervals parses a TEXT column written by EncodeIntervals.
func DecodeIntervals(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var intervals []string
	if err := json.Unmarshal([]byte(raw), &intervals); err != nil {
		return nil, errors.Wrap(err, "failed to decode notification intervals")
	}
	return intervals, nil
}
