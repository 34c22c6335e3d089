package reminder

import (
	"context"
	"time"

	"github.com/cgallello/remembered/store"
)

// Store is the interface for store operations needed by the reminder service.
type Store interface {
	CreateReminder(ctx context.Context, create *store.Reminder) (*store.Reminder, error)
	ListReminders(ctx context.Context, find *store.FindReminder) ([]*store.Reminder, error)
	GetReminder(ctx context.Context, find *store.FindReminder) (*store.Reminder, error)
	UpdateReminder(ctx context.Context, update *store.UpdateReminder) (*store.Reminder, error)
	DeleteReminder(ctx context.Context, delete *store.DeleteReminder) error
	UpsertSetting(ctx context.Context, upsert *store.Setting) (*store.Setting, error)
	GetSetting(ctx context.Context, name string) (*store.Setting, error)
}

// Entitlement reports the purchase state.
type Entitlement interface {
	IsPro(ctx context.Context) (bool, error)
}

// PermissionRequester asks the user to allow notifications.
type PermissionRequester interface {
	RequestPermission(ctx context.Context) (bool, error)
}

// Clock returns the current time.
type Clock func() time.Time

// StaticEntitlement is an Entitlement with a fixed answer.
type StaticEntitlement bool

// IsPro implements Entitlement.
func (e StaticEntitlement) IsPro(context.Context) (bool, error) {
	return bool(e), nil
}

// StaticPermission is a PermissionRequester with a fixed answer.
type StaticPermission bool

// RequestPermission implements PermissionRequester.
func (p StaticPermission) RequestPermission(context.Context) (bool, error) {
	return bool(p), nil
}

// CaptureRequest is the input of a quick capture.
type CaptureRequest struct {
	Text string
	// ContactName and ContactID are set when the user picked a contact.
	ContactName string
	ContactID   string
}

// UpdateRequest changes a reminder. Nil fields are left unchanged.
type UpdateRequest struct {
	Title      *string
	Date       *time.Time
	ClearDate  bool
	Type       *string
	Recurrence *string
	Notes      *string
	Intervals  *[]string
}

// ListRequest filters List.
type ListRequest struct {
	Type        *string
	NeedsReview *bool
	// Upcoming keeps reminders dated today or later.
	Upcoming bool
	Limit    *int
	Offset   *int
}
