package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cgallello/remembered/plugin/notify"
)

// NotificationTime is the body of the notification-time endpoints.
type NotificationTime struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	Time   string `json:"time"`
	// Alerts is the number of alerts registered after a change.
	Alerts *int `json:"alerts,omitempty"`
}

// GetNotificationTime returns the time of day alerts fire at.
// GET /api/v1/settings/notification-time
func (s *APIV1Service) GetNotificationTime(c echo.Context) error {
	at, err := s.Reminder.AlertTime(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, &NotificationTime{Hour: at.Hour, Minute: at.Minute, Time: at.String()})
}

// SetNotificationTime changes the alert time and reschedules every reminder.
// PUT /api/v1/settings/notification-time
func (s *APIV1Service) SetNotificationTime(c echo.Context) error {
	var req NotificationTime
	if err := c.Bind(&req); err != nil {
		return s.bindError(c, err)
	}
	at := notify.AlertTime{Hour: req.Hour, Minute: req.Minute}
	total, err := s.Reminder.SetAlertTime(c.Request().Context(), at)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, &NotificationTime{Hour: at.Hour, Minute: at.Minute, Time: at.String(), Alerts: &total})
}

// ListAlerts lists the alerts currently registered, soonest first.
// GET /api/v1/alerts
func (s *APIV1Service) ListAlerts(c echo.Context) error {
	alerts, err := s.Reminder.PendingAlerts(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	if alerts == nil {
		alerts = []notify.Alert{}
	}
	return c.JSON(http.StatusOK, map[string]any{"alerts": alerts})
}
