package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Record is the part of a reminder the manager schedules from.
type Record struct {
	UID        string
	Title      string
	Date       *time.Time
	Recurrence Recurrence
	Intervals  []Interval
	Enabled    bool
}

// Manager keeps an AlertScheduler in sync with records. Every change is a
// full reschedule: all identifiers a record could own are removed before the
// current triggers are registered.
type Manager struct {
	scheduler AlertScheduler
	now       func() time.Time
	logger    *slog.Logger
	mu        sync.Mutex
}

// NewManager creates a manager over scheduler. A nil clock means time.Now.
func NewManager(scheduler AlertScheduler, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{
		scheduler: scheduler,
		now:       now,
		logger:    slog.Default(),
	}
}

// SetLogger sets a custom logger.
func (m *Manager) SetLogger(logger *slog.Logger) {
	m.logger = logger
}

// Scheduler returns the underlying registry.
func (m *Manager) Scheduler() AlertScheduler {
	return m.scheduler
}

// Triggers computes the triggers of record without touching the registry.
func (m *Manager) Triggers(record Record, at AlertTime) []Trigger {
	return Schedule(Input{
		Date:       record.Date,
		Recurrence: record.Recurrence,
		Intervals:  record.Intervals,
		Enabled:    record.Enabled,
		At:         at,
	}, m.now())
}

// Reschedule cancels every alert of record and registers its current
// triggers. Registration failures do not stop the remaining intervals; they
// are joined into the returned error. The alerts that were registered are
// returned either way.
func (m *Manager) Reschedule(ctx context.Context, record Record, at AlertTime) ([]Alert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.cancelLocked(ctx, record.UID); err != nil {
		return nil, err
	}

	triggers := m.Triggers(record, at)
	alerts := make([]Alert, 0, len(triggers))
	var errs []error
	for _, trigger := range triggers {
		alert := NewAlert(record.UID, record.Title, trigger)
		if err := m.scheduler.Add(ctx, alert); err != nil {
			m.logger.Warn("failed to register alert",
				"record_uid", record.UID,
				"interval", trigger.Interval,
				"error", err,
			)
			errs = append(errs, fmt.Errorf("register %s: %w", alert.ID, err))
			continue
		}
		alerts = append(alerts, alert)
	}

	m.logger.Debug("rescheduled reminder",
		"record_uid", record.UID,
		"registered", len(alerts),
		"failed", len(errs),
	)
	return alerts, errors.Join(errs...)
}

// Cancel removes every alert record uid could own.
func (m *Manager) Cancel(ctx context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancelLocked(ctx, uid)
}

func (m *Manager) cancelLocked(ctx context.Context, uid string) error {
	ids := make([]string, 0, len(catalog))
	for _, interval := range Intervals() {
		ids = append(ids, TriggerID(uid, interval))
	}
	if err := m.scheduler.Remove(ctx, ids...); err != nil {
		return fmt.Errorf("failed to cancel alerts for %s: %w", uid, err)
	}
	return nil
}
