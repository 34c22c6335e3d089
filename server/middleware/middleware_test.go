package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgallello/remembered/server/internal/observability"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(1, 2)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	assert.True(t, rl.Allow("b"), "keys are limited independently")
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	rl := NewRateLimiter(0.001, 1)
	require.True(t, rl.Allow("a"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, rl.Wait(ctx, "a"))
}

func TestRateLimiter_Middleware(t *testing.T) {
	e := echo.New()
	e.Use(NewRateLimiter(1, 1).Middleware())
	e.GET("/", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), "RATE_LIMIT_EXCEEDED")
}

func TestRequestContext(t *testing.T) {
	metrics := observability.NewMetrics(10)
	e := echo.New()
	e.Use(RequestContext(nil, metrics))

	var seen string
	e.GET("/ok", func(c echo.Context) error {
		reqCtx, ok := observability.FromContext(c.Request().Context())
		require.True(t, ok)
		seen = reqCtx.RequestID
		return c.NoContent(http.StatusOK)
	})
	e.GET("/fail", func(c echo.Context) error {
		return echo.NewHTTPError(http.StatusInternalServerError, "boom")
	})

	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "req-1", seen)
	assert.Equal(t, "req-1", rec.Header().Get(HeaderRequestID))

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	snap := metrics.Snapshot()
	assert.Equal(t, int64(2), snap.RequestTotal)
	assert.Equal(t, int64(1), snap.RequestFailed)
}
