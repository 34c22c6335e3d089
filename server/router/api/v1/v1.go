package v1

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/cgallello/remembered/internal/calendar"
	"github.com/cgallello/remembered/internal/profile"
	apperrors "github.com/cgallello/remembered/server/internal/errors"
	"github.com/cgallello/remembered/server/internal/observability"
	"github.com/cgallello/remembered/server/service/reminder"
)

// APIV1Service serves the JSON API.
type APIV1Service struct {
	Profile  *profile.Profile
	Reminder *reminder.Service
	Metrics  *observability.Metrics

	logger *slog.Logger
}

// NewAPIV1Service creates the API over a reminder service.
func NewAPIV1Service(profile *profile.Profile, svc *reminder.Service) *APIV1Service {
	return &APIV1Service{
		Profile:  profile,
		Reminder: svc,
		Metrics:  observability.GlobalMetrics(),
		logger:   slog.Default(),
	}
}

// SetLogger sets a custom logger.
func (s *APIV1Service) SetLogger(logger *slog.Logger) {
	s.logger = logger
}

// RegisterRoutes registers the API handlers with the given Echo instance.
func (s *APIV1Service) RegisterRoutes(echoServer *echo.Echo) {
	echoServer.GET("/healthz", s.Healthz)

	g := echoServer.Group("/api/v1")
	g.Use(middleware.CORS())

	g.GET("/healthz", s.Healthz)
	g.POST("/parse", s.Parse)

	g.POST("/reminders", s.CaptureReminder)
	g.GET("/reminders", s.ListReminders)
	g.GET("/reminders/:uid", s.GetReminder)
	g.PATCH("/reminders/:uid", s.UpdateReminder)
	g.DELETE("/reminders/:uid", s.DeleteReminder)
	g.GET("/reminders/:uid/triggers", s.ListTriggers)
	g.POST("/reminders/:uid/notifications", s.SetNotifications)

	g.GET("/settings/notification-time", s.GetNotificationTime)
	g.PUT("/settings/notification-time", s.SetNotificationTime)

	g.GET("/alerts", s.ListAlerts)
	g.GET("/feed.atom", s.Feed)
	g.GET("/system/metrics", s.GetMetricsOverview)
}

// Healthz reports liveness.
// GET /healthz
func (s *APIV1Service) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "ok",
		"version": s.Profile.Version,
		"mode":    s.Profile.Mode,
	})
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      apperrors.ErrorCode `json:"code"`
	Message   string              `json:"message"`
	Retryable bool                `json:"retryable"`
}

func newErrorResponse(err error) *ErrorResponse {
	resp := &ErrorResponse{
		Code:      apperrors.GetCodeFromError(err, "INTERNAL"),
		Message:   err.Error(),
		Retryable: apperrors.Retryable(err),
	}
	if e, ok := apperrors.As(err); ok {
		resp.Message = e.Message
	}
	return resp
}

func (s *APIV1Service) writeError(c echo.Context, err error) error {
	status := apperrors.HTTPStatus(err)
	logger := observability.LoggerFrom(c.Request().Context(), s.logger)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", observability.LogFieldErrorCode, apperrors.GetCodeFromError(err, ""), "error", err)
	} else {
		logger.Debug("request rejected", observability.LogFieldErrorCode, apperrors.GetCodeFromError(err, ""), "error", err)
	}
	return c.JSON(status, newErrorResponse(err))
}

// bindError turns a malformed body into an INVALID_ARGUMENT response.
func (s *APIV1Service) bindError(c echo.Context, err error) error {
	return s.writeError(c, apperrors.Wrap(err, apperrors.ErrCodeInvalidArgument, "malformed request body"))
}

// parseDate accepts a calendar day ("2026-12-25", read as noon in loc) or an
// RFC 3339 timestamp.
func parseDate(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(time.DateOnly, value, loc); err == nil {
		return calendar.AtClock(t, 12, 0), nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, apperrors.InvalidArgument("date must be YYYY-MM-DD or RFC 3339")
	}
	return t.In(loc), nil
}
