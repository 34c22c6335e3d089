package reminder

import (
	"context"
	stderrors "errors"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/cgallello/remembered/plugin/notify"
	apperrors "github.com/cgallello/remembered/server/internal/errors"
	"github.com/cgallello/remembered/store"
)

// SetNotifications turns alerts of the reminder with uid on or off.
// Turning them on needs Pro and a granted permission; when the permission is
// refused the flag stays off.
func (s *Service) SetNotifications(ctx context.Context, uid string, enabled bool) (*Outcome, error) {
	current, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}

	if enabled {
		pro, err := s.entitlement.IsPro(ctx)
		if err != nil {
			return nil, apperrors.Unavailable("failed to read entitlement", err)
		}
		if !pro {
			return nil, apperrors.NotEntitled("notifications require Pro")
		}
		if err := s.requestPermission(ctx); err != nil {
			if current.NotificationEnabled {
				if _, offErr := s.setEnabled(ctx, current, false); offErr != nil {
					s.logger.Warn("failed to turn notifications off", "uid", uid, "error", offErr)
				}
			}
			return nil, err
		}
	}

	return s.setEnabled(ctx, current, enabled)
}

func (s *Service) setEnabled(ctx context.Context, current *store.Reminder, enabled bool) (*Outcome, error) {
	updated, err := s.store.UpdateReminder(ctx, &store.UpdateReminder{
		ID:                  current.ID,
		NotificationEnabled: &enabled,
	})
	if err != nil {
		return nil, apperrors.PersistenceFailed("failed to update reminder", err)
	}
	out := &Outcome{Reminder: updated}
	out.Alerts, out.AlertErr = s.reschedule(ctx, updated)
	return out, nil
}

// Reschedule recomputes and registers the alerts of the reminder with uid.
func (s *Service) Reschedule(ctx context.Context, uid string) (*Outcome, error) {
	current, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	out := &Outcome{Reminder: current}
	out.Alerts, out.AlertErr = s.reschedule(ctx, current)
	return out, nil
}

// RescheduleAll reschedules every reminder and returns how many alerts are
// registered. Failures do not stop the other reminders.
func (s *Service) RescheduleAll(ctx context.Context) (int, error) {
	list, err := s.store.ListReminders(ctx, &store.FindReminder{})
	if err != nil {
		return 0, apperrors.PersistenceFailed("failed to list reminders", err)
	}
	at, err := s.AlertTime(ctx)
	if err != nil {
		return 0, err
	}
	pro, err := s.entitlement.IsPro(ctx)
	if err != nil {
		return 0, apperrors.Unavailable("failed to read entitlement", err)
	}

	var (
		mu    sync.Mutex
		total int
		errs  []error
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, r := range list {
		g.Go(func() error {
			alerts, err := s.rescheduleAt(gctx, r, at, pro)
			mu.Lock()
			defer mu.Unlock()
			total += len(alerts)
			if err != nil {
				errs = append(errs, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("rescheduled all reminders", "reminders", len(list), "alerts", total, "failed", len(errs))
	if len(errs) > 0 {
		return total, apperrors.AlertRegistrationFailed("failed to register some alerts", stderrors.Join(errs...))
	}
	return total, nil
}

// AlertTime returns the configured alert time.
func (s *Service) AlertTime(ctx context.Context) (notify.AlertTime, error) {
	setting, err := s.store.GetSetting(ctx, store.SettingNotificationTime)
	if err != nil {
		return s.defaultAt, apperrors.PersistenceFailed("failed to read notification time", err)
	}
	if setting == nil {
		return s.defaultAt, nil
	}
	hour, minute, err := store.ParseClock(setting.Value)
	if err != nil {
		s.logger.Warn("ignoring invalid notification time", "value", setting.Value, "error", err)
		return s.defaultAt, nil
	}
	return notify.AlertTime{Hour: hour, Minute: minute}, nil
}

// SetAlertTime stores the alert time and reschedules every reminder.
func (s *Service) SetAlertTime(ctx context.Context, at notify.AlertTime) (int, error) {
	if err := at.Validate(); err != nil {
		return 0, apperrors.InvalidArgument(err.Error())
	}
	if _, err := s.store.UpsertSetting(ctx, &store.Setting{
		Name:  store.SettingNotificationTime,
		Value: store.FormatClock(at.Hour, at.Minute),
	}); err != nil {
		return 0, apperrors.PersistenceFailed("failed to store notification time", err)
	}
	return s.RescheduleAll(ctx)
}

// Triggers previews the triggers of the reminder with uid.
func (s *Service) Triggers(ctx context.Context, uid string) ([]notify.Trigger, error) {
	current, err := s.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	at, err := s.AlertTime(ctx)
	if err != nil {
		return nil, err
	}
	return s.manager.Triggers(s.record(current), at), nil
}

// PendingAlerts lists the alerts currently registered.
func (s *Service) PendingAlerts(ctx context.Context) ([]notify.Alert, error) {
	alerts, err := s.manager.Scheduler().Pending(ctx)
	if err != nil {
		return nil, apperrors.Unavailable("failed to list alerts", err)
	}
	return alerts, nil
}

func (s *Service) requestPermission(ctx context.Context) error {
	granted, err := s.permission.RequestPermission(ctx)
	if err != nil {
		return apperrors.Unavailable("failed to request notification permission", err)
	}
	if !granted {
		return apperrors.PermissionDenied("notifications are not allowed")
	}
	return nil
}

func (s *Service) reschedule(ctx context.Context, r *store.Reminder) ([]notify.Alert, error) {
	at, err := s.AlertTime(ctx)
	if err != nil {
		s.logger.Warn("using default alert time", "error", err)
	}
	pro, err := s.entitlement.IsPro(ctx)
	if err != nil {
		return nil, apperrors.Unavailable("failed to read entitlement", err).WithContext("uid", r.UID)
	}
	return s.rescheduleAt(ctx, r, at, pro)
}

// rescheduleAt registers the alerts of r. Without Pro every alert of r is
// cancelled and nothing is registered, whatever the stored flag says.
func (s *Service) rescheduleAt(ctx context.Context, r *store.Reminder, at notify.AlertTime, pro bool) ([]notify.Alert, error) {
	if !pro {
		if err := s.manager.Cancel(ctx, r.UID); err != nil {
			return nil, apperrors.AlertRegistrationFailed("failed to cancel alerts", err).WithContext("uid", r.UID)
		}
		return nil, nil
	}
	alerts, err := s.manager.Reschedule(ctx, s.record(r), at)
	if err != nil {
		return alerts, apperrors.AlertRegistrationFailed("failed to register alerts", err).WithContext("uid", r.UID)
	}
	return alerts, nil
}

// record converts a stored reminder for the notification manager. Unknown
// stored values fall back to no recurrence and are dropped from intervals.
func (s *Service) record(r *store.Reminder) notify.Record {
	recurrence, err := notify.ParseRecurrence(r.Recurrence)
	if err != nil {
		s.logger.Warn("unknown recurrence, using none", "uid", r.UID, "recurrence", r.Recurrence)
		recurrence = notify.RecurrenceNone
	}
	intervals := make([]notify.Interval, 0, len(r.NotificationIntervals))
	for _, name := range r.NotificationIntervals {
		interval, err := notify.ParseInterval(name)
		if err != nil {
			s.logger.Warn("dropping unknown interval", "uid", r.UID, "interval", name)
			continue
		}
		intervals = append(intervals, interval)
	}
	return notify.Record{
		UID:        r.UID,
		Title:      r.Title,
		Date:       r.DateTime(s.location),
		Recurrence: recurrence,
		Intervals:  intervals,
		Enabled:    r.NotificationEnabled,
	}
}
