package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// CronScheduler is an AlertScheduler backed by robfig/cron. Every alert is a
// cron entry matching minute, hour, day and month. Repeating alerts fire every
// year; one-shot alerts fire only in the year of their trigger and then
// remove themselves.
type CronScheduler struct {
	cron     *cron.Cron
	notifier Notifier
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger

	mu      sync.Mutex
	alerts  map[string]Alert
	entries map[string]cron.EntryID
	running bool
}

// CronOption configures a CronScheduler.
type CronOption func(*CronScheduler)

// WithCronLocation sets the timezone alert clock times are matched in.
func WithCronLocation(loc *time.Location) CronOption {
	return func(s *CronScheduler) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithCronClock sets the clock used for the one-shot year check.
func WithCronClock(now func() time.Time) CronOption {
	return func(s *CronScheduler) {
		if now != nil {
			s.now = now
		}
	}
}

// NewCronScheduler creates a cron-backed registry that delivers through
// notifier.
func NewCronScheduler(notifier Notifier, opts ...CronOption) *CronScheduler {
	s := &CronScheduler{
		notifier: notifier,
		location: time.Local,
		now:      time.Now,
		logger:   slog.Default(),
		alerts:   make(map[string]Alert),
		entries:  make(map[string]cron.EntryID),
	}
	for _, opt := range opts {
		opt(s)
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	s.cron = cron.New(
		cron.WithParser(parser),
		cron.WithLocation(s.location),
		cron.WithChain(cron.Recover(cron.DefaultLogger)),
	)
	return s
}

// SetLogger sets a custom logger.
func (s *CronScheduler) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// Start begins matching entries. It stops when ctx is cancelled.
func (s *CronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	s.cron.Start()
	s.logger.Info("alert registry started", "location", s.location.String(), "alerts", s.count())

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
	return nil
}

// Stop waits for running deliveries and stops matching entries.
func (s *CronScheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info("alert registry stopped")
}

// IsRunning returns whether the registry is matching entries.
func (s *CronScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Add implements AlertScheduler.
func (s *CronScheduler) Add(ctx context.Context, alert Alert) error {
	if alert.ID == "" {
		return fmt.Errorf("alert has no id")
	}
	if alert.At.IsZero() {
		return fmt.Errorf("alert %s has no fire time", alert.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(alert.ID)

	id := alert.ID
	entryID, err := s.cron.AddFunc(s.spec(alert.At), func() {
		s.Fire(context.Background(), id)
	})
	if err != nil {
		return fmt.Errorf("failed to register alert %s: %w", alert.ID, err)
	}
	s.alerts[alert.ID] = alert
	s.entries[alert.ID] = entryID

	s.logger.Debug("alert registered",
		"alert_id", alert.ID,
		"at", alert.At,
		"repeating", alert.Repeating,
	)
	return nil
}

// Remove implements AlertScheduler.
func (s *CronScheduler) Remove(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.removeLocked(id)
	}
	return nil
}

// Pending implements AlertScheduler. Alerts are ordered by fire time.
func (s *CronScheduler) Pending(ctx context.Context) ([]Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedAlerts(s.alerts), nil
}

// Fire delivers the alert registered under id. It is what the cron entry
// runs; one-shot alerts outside their year are ignored and one-shot alerts
// that fire are unregistered.
func (s *CronScheduler) Fire(ctx context.Context, id string) {
	s.mu.Lock()
	alert, ok := s.alerts[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	if !alert.Repeating {
		if alert.At.In(s.location).Year() != s.now().In(s.location).Year() {
			s.mu.Unlock()
			s.logger.Debug("one-shot alert skipped outside its year", "alert_id", id, "at", alert.At)
			return
		}
		s.removeLocked(id)
	}
	s.mu.Unlock()

	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, alert); err != nil {
		s.logger.Error("failed to deliver alert", "alert_id", id, "error", err)
		return
	}
	s.logger.Info("alert delivered", "alert_id", id, "record_uid", alert.RecordUID, "interval", alert.Interval)
}

func (s *CronScheduler) removeLocked(id string) {
	if entryID, ok := s.entries[id]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, id)
	}
	delete(s.alerts, id)
}

func (s *CronScheduler) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

// spec renders "minute hour day month *" for t in the registry's location.
func (s *CronScheduler) spec(t time.Time) string {
	t = t.In(s.location)
	return fmt.Sprintf("%d %d %d %d *", t.Minute(), t.Hour(), t.Day(), int(t.Month()))
}
