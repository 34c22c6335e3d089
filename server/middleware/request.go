package middleware

import (
	"log/slog"

	"github.com/labstack/echo/v4"

	"github.com/cgallello/remembered/server/internal/observability"
)

// HeaderRequestID carries the request id in and out.
const HeaderRequestID = "X-Request-Id"

// RequestContext attaches an observability.RequestContext to every request,
// records it in metrics and logs its outcome.
func RequestContext(logger *slog.Logger, metrics *observability.Metrics) echo.MiddlewareFunc {
	if metrics == nil {
		metrics = observability.GlobalMetrics()
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			operation := req.Method + " " + c.Path()
			reqCtx := observability.NewRequestContextWithID(logger, req.Header.Get(HeaderRequestID), operation)
			c.SetRequest(req.WithContext(observability.WithRequestContext(req.Context(), reqCtx)))
			c.Response().Header().Set(HeaderRequestID, reqCtx.RequestID)

			metrics.RecordRequest(operation)
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			status := c.Response().Status
			metrics.RecordDuration(operation, reqCtx.Duration())
			attrs := []slog.Attr{
				slog.Int(observability.LogFieldStatus, status),
				slog.Int64(observability.LogFieldDuration, reqCtx.DurationMs()),
			}
			if status >= 500 {
				metrics.RecordFailure(operation)
				reqCtx.Error("request failed", err, attrs...)
			} else {
				reqCtx.Debug("request served", attrs...)
			}
			return nil
		}
	}
}
