package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// Reminder model related methods.
	CreateReminder(ctx context.Context, create *Reminder) (*Reminder, error)
	ListReminders(ctx context.Context, find *FindReminder) ([]*Reminder, error)
	UpdateReminder(ctx context.Context, update *UpdateReminder) error
	DeleteReminder(ctx context.Context, delete *DeleteReminder) error

	// Setting model related methods.
	UpsertSetting(ctx context.Context, upsert *Setting) (*Setting, error)
	ListSettings(ctx context.Context, find *FindSetting) ([]*Setting, error)
	DeleteSetting(ctx context.Context, delete *DeleteSetting) error
}
