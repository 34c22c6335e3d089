package reminder

import (
	"fmt"
	"time"

	"github.com/cgallello/remembered/internal/calendar"
	"github.com/cgallello/remembered/store"
)

// DaysUntil returns the number of calendar days from now to date, measured
// in now's location. ok is false when date is nil.
func DaysUntil(date *time.Time, now time.Time) (days int, ok bool) {
	if date == nil {
		return 0, false
	}
	return calendar.DaysBetween(now, *date), true
}

// Countdown renders a day count for display.
func Countdown(days int) string {
	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0:
		return fmt.Sprintf("%d days", days)
	default:
		return fmt.Sprintf("%d days past", -days)
	}
}

// AddDateDefault is the date offered when the user adds a date to an undated
// reminder: the same day next year, at noon.
func AddDateDefault(now time.Time) time.Time {
	return calendar.AtClock(calendar.AddYears(now, 1), 12, 0)
}

// DaysUntil returns the days until r's date, relative to the service clock.
func (s *Service) DaysUntil(r *store.Reminder) (int, bool) {
	return DaysUntil(r.DateTime(s.location), s.Now())
}

// Countdown returns r's countdown string, or "" when it has no date.
func (s *Service) Countdown(r *store.Reminder) string {
	days, ok := s.DaysUntil(r)
	if !ok {
		return ""
	}
	return Countdown(days)
}

// AddDateDefault returns the default date for r relative to the service clock.
func (s *Service) AddDateDefault() time.Time {
	return AddDateDefault(s.Now())
}
