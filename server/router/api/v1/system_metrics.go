package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cgallello/remembered/server/internal/observability"
)

// MetricsOverviewResponse represents the overview response of system metrics.
type MetricsOverviewResponse struct {
	TotalRequests int64                             `json:"total_requests"`
	SuccessRate   float64                           `json:"success_rate"`
	ErrorCount    int64                             `json:"error_count"`
	AlertsFired   int64                             `json:"alerts_fired"`
	PendingAlerts int                               `json:"pending_alerts"`
	Operations    []observability.OperationSnapshot `json:"operations"`
}

// GetMetricsOverview returns the in-process request metrics.
// GET /api/v1/system/metrics
func (s *APIV1Service) GetMetricsOverview(c echo.Context) error {
	snap := s.Metrics.Snapshot()
	pending, err := s.Reminder.PendingAlerts(c.Request().Context())
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, MetricsOverviewResponse{
		TotalRequests: snap.RequestTotal,
		SuccessRate:   snap.SuccessRate(),
		ErrorCount:    snap.RequestFailed,
		AlertsFired:   snap.AlertsFired,
		PendingAlerts: len(pending),
		Operations:    snap.Operations,
	})
}
