// Package reminder provides reminder management on top of the parser, the
// store and the notification manager.
//
// Key features:
//   - Quick capture with sticky default type and contact prefix
//   - Entitlement and permission gates for notifications
//   - Full reschedule of alerts on every change
//
// Pure computations (parsing, trigger math) always run before collaborator
// calls (store, entitlement, permission, alert registry).
package reminder

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/cgallello/remembered/internal/calendar"
	"github.com/cgallello/remembered/plugin/notify"
	"github.com/cgallello/remembered/plugin/parse"
	apperrors "github.com/cgallello/remembered/server/internal/errors"
	"github.com/cgallello/remembered/store"
)

// DefaultConcurrency bounds RescheduleAll.
const DefaultConcurrency = 4

// Outcome is a saved reminder together with the alerts registered for it.
type Outcome struct {
	Reminder *store.Reminder
	Alerts   []notify.Alert
	// AlertErr is set when the reminder was saved but its alerts were not
	// (all) registered. The save itself is not undone.
	AlertErr error
}

// Service implements reminder operations.
type Service struct {
	store       Store
	parser      *parse.Parser
	manager     *notify.Manager
	entitlement Entitlement
	permission  PermissionRequester
	now         Clock
	location    *time.Location
	defaultAt   notify.AlertTime
	concurrency int
	logger      *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock sets the source of "now".
func WithClock(now Clock) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLocation sets the user's timezone.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithEntitlement sets the purchase state collaborator.
func WithEntitlement(e Entitlement) Option {
	return func(s *Service) {
		if e != nil {
			s.entitlement = e
		}
	}
}

// WithPermission sets the notification permission collaborator.
func WithPermission(p PermissionRequester) Option {
	return func(s *Service) {
		if p != nil {
			s.permission = p
		}
	}
}

// WithDefaultAlertTime sets the alert time used until the user picks one.
func WithDefaultAlertTime(at notify.AlertTime) Option {
	return func(s *Service) {
		s.defaultAt = at
	}
}

// WithConcurrency bounds the number of parallel reschedules in RescheduleAll.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithParser replaces the parser built from the clock and location.
func WithParser(p *parse.Parser) Option {
	return func(s *Service) {
		s.parser = p
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService creates a new reminder service.
func NewService(st Store, manager *notify.Manager, opts ...Option) *Service {
	s := &Service{
		store:       st,
		manager:     manager,
		entitlement: StaticEntitlement(false),
		permission:  StaticPermission(true),
		now:         time.Now,
		location:    time.Local,
		defaultAt:   notify.DefaultAlertTime,
		concurrency: DefaultConcurrency,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.parser == nil {
		s.parser = parse.NewParser(parse.WithClock(s.now), parse.WithLocation(s.location))
	}
	return s
}

// Location returns the user's timezone.
func (s *Service) Location() *time.Location {
	return s.location
}

// Now returns the current time in the user's timezone.
func (s *Service) Now() time.Time {
	return s.now().In(s.location)
}

// Parse runs the parser without saving anything.
func (s *Service) Parse(text string) parse.Result {
	return s.parser.Parse(text)
}

// PredictType parses text and returns the type a capture would be saved
// with. sticky overrides the stored sticky default when not empty.
func (s *Service) PredictType(ctx context.Context, text string, sticky parse.Category) (parse.Result, parse.Category, error) {
	result := s.parser.Parse(text)
	if sticky == "" {
		var err error
		if sticky, err = s.StickyType(ctx); err != nil {
			return result, result.Type, err
		}
	}
	return result, parse.ResolveType(result.Type, sticky), nil
}

// StickyType returns the last specific type chosen at capture, or
// CategoryOther when there is none.
func (s *Service) StickyType(ctx context.Context) (parse.Category, error) {
	setting, err := s.store.GetSetting(ctx, store.SettingLastUsedType)
	if err != nil {
		return parse.CategoryOther, apperrors.PersistenceFailed("failed to read last used type", err)
	}
	if setting == nil {
		return parse.CategoryOther, nil
	}
	category, ok := parse.ParseCategory(setting.Value)
	if !ok {
		return parse.CategoryOther, nil
	}
	return category, nil
}

// Capture parses text, saves it as a new reminder and, for Pro users,
// requests notification permission and schedules its alerts.
func (s *Service) Capture(ctx context.Context, req CaptureRequest) (*Outcome, error) {
	text := strings.TrimSpace(req.Text)
	contact := strings.TrimSpace(req.ContactName)
	if text == "" && contact == "" {
		return nil, apperrors.InvalidArgument("text is required")
	}

	full := text
	if contact != "" {
		full = strings.TrimSpace(contact + " " + text)
	}
	result := s.parser.Parse(full)

	sticky, err := s.StickyType(ctx)
	if err != nil {
		s.logger.Warn("failed to read sticky type, using none", "error", err)
	}
	finalType := parse.ResolveType(result.Type, sticky)

	title := result.Title
	if contact != "" {
		title = contact
	}

	pro, err := s.entitlement.IsPro(ctx)
	if err != nil {
		s.logger.Warn("failed to read entitlement, treating as free", "error", err)
		pro = false
	}

	create := &store.Reminder{
		UID:                   shortuuid.New(),
		RawInput:              full,
		Title:                 title,
		Date:                  unixPtr(result.Date),
		Type:                  string(finalType),
		Recurrence:            string(notify.RecurrenceNone),
		NeedsReview:           !result.HasDate(),
		NotificationEnabled:   pro,
		NotificationIntervals: notify.Strings(notify.DefaultIntervals()),
		ContactID:             strings.TrimSpace(req.ContactID),
		ContactDisplayName:    contact,
	}
	saved, err := s.store.CreateReminder(ctx, create)
	if err != nil {
		return nil, apperrors.PersistenceFailed("failed to save reminder", err)
	}

	if finalType != parse.CategoryOther {
		if _, err := s.store.UpsertSetting(ctx, &store.Setting{
			Name:  store.SettingLastUsedType,
			Value: string(finalType),
		}); err != nil {
			s.logger.Warn("failed to store last used type", "type", finalType, "error", err)
		}
	}

	out := &Outcome{Reminder: saved}
	if pro {
		if err := s.requestPermission(ctx); err != nil {
			out.AlertErr = err
		} else {
			out.Alerts, out.AlertErr = s.reschedule(ctx, saved)
		}
	}

	s.logger.Info("captured reminder",
		"uid", saved.UID,
		"type", saved.Type,
		"has_date", saved.Date != nil,
		"alerts", len(out.Alerts),
	)
	return out, nil
}

// Get returns the reminder with uid.
func (s *Service) Get(ctx context.Context, uid string) (*store.Reminder, error) {
	if strings.TrimSpace(uid) == "" {
		return nil, apperrors.InvalidArgument("uid is required")
	}
	r, err := s.store.GetReminder(ctx, &store.FindReminder{UID: &uid})
	if err != nil {
		return nil, apperrors.PersistenceFailed("failed to get reminder", err)
	}
	if r == nil {
		return nil, apperrors.NotFound("reminder " + uid)
	}
	return r, nil
}

// List returns reminders ordered by date, undated last.
func (s *Service) List(ctx context.Context, req ListRequest) ([]*store.Reminder, error) {
	find := &store.FindReminder{
		NeedsReview: req.NeedsReview,
		Limit:       req.Limit,
		Offset:      req.Offset,
	}
	if req.Type != nil {
		category, ok := parse.ParseCategory(*req.Type)
		if !ok {
			return nil, apperrors.InvalidArgument("unknown type " + *req.Type)
		}
		typ := string(category)
		find.Type = &typ
	}
	if req.Upcoming {
		start := calendar.StartOfDay(s.Now()).Unix()
		find.DateAfter = &start
	}
	list, err := s.store.ListReminders(ctx, find)
	if err != nil {
		return nil, apperrors.PersistenceFailed("failed to list reminders", err)
	}
	return list, nil
}

// Update applies req to the reminder with uid and reschedules its alerts.
func (s *Service) Update(ctx context.Context, uid string, req UpdateRequest) (*Outcome, error) {
	current, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	update := &store.UpdateReminder{ID: current.ID}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperrors.InvalidArgument("title must not be empty")
		}
		update.Title = &title
	}
	if req.Type != nil {
		category, ok := parse.ParseCategory(*req.Type)
		if !ok {
			return nil, apperrors.InvalidArgument("unknown type " + *req.Type)
		}
		typ := string(category)
		update.Type = &typ
	}
	if req.Recurrence != nil {
		recurrence, err := notify.ParseRecurrence(*req.Recurrence)
		if err != nil {
			return nil, apperrors.InvalidArgument(err.Error())
		}
		value := string(recurrence)
		update.Recurrence = &value
	}
	if req.Intervals != nil {
		intervals, err := notify.ParseIntervals(*req.Intervals)
		if err != nil {
			return nil, apperrors.InvalidArgument(err.Error())
		}
		names := notify.Strings(intervals)
		update.NotificationIntervals = &names
	}
	if req.Notes != nil {
		update.Notes = req.Notes
	}
	switch {
	case req.ClearDate:
		update.ClearDate = true
		update.NeedsReview = boolPtr(true)
	case req.Date != nil:
		update.Date = unixPtr(req.Date)
		update.NeedsReview = boolPtr(false)
	}

	updated, err := s.store.UpdateReminder(ctx, update)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("reminder " + uid)
		}
		return nil, apperrors.PersistenceFailed("failed to update reminder", err)
	}

	out := &Outcome{Reminder: updated}
	out.Alerts, out.AlertErr = s.reschedule(ctx, updated)
	return out, nil
}

// Delete cancels the alerts of the reminder with uid and deletes it.
func (s *Service) Delete(ctx context.Context, uid string) error {
	current, err := s.Get(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.manager.Cancel(ctx, current.UID); err != nil {
		return apperrors.Unavailable("failed to cancel alerts", err)
	}
	if err := s.store.DeleteReminder(ctx, &store.DeleteReminder{ID: current.ID}); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperrors.NotFound("reminder " + uid)
		}
		return apperrors.PersistenceFailed("failed to delete reminder", err)
	}
	s.logger.Info("deleted reminder", "uid", uid)
	return nil
}

func unixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ts := t.Unix()
	return &ts
}

func boolPtr(b bool) *bool {
	return &b
}
