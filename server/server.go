package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/cgallello/remembered/internal/profile"
	"github.com/cgallello/remembered/plugin/notify"
	"github.com/cgallello/remembered/server/internal/observability"
	"github.com/cgallello/remembered/server/middleware"
	apiv1 "github.com/cgallello/remembered/server/router/api/v1"
	"github.com/cgallello/remembered/server/service/reminder"
	"github.com/cgallello/remembered/store"
)

// Server runs the HTTP API and the alert registry.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer *echo.Echo
	alerts     *notify.CronScheduler
	dispatcher *notify.Dispatcher
	reminder   *reminder.Service
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewServer wires the store, the alert registry and the API.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	loc, err := profile.Location()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load timezone")
	}

	s := &Server{
		Profile:    profile,
		Store:      store,
		dispatcher: notify.NewDispatcher(),
		metrics:    observability.GlobalMetrics(),
		logger:     slog.Default(),
	}

	s.dispatcher.Register(notify.NewLogSender())
	if profile.WebhookURL != "" {
		s.dispatcher.Register(notify.NewWebhookSender(notify.WebhookConfig{
			URL:    profile.WebhookURL,
			Secret: profile.WebhookSecret,
		}))
	}

	s.alerts = notify.NewCronScheduler(notify.NotifierFunc(s.deliver), notify.WithCronLocation(loc))
	manager := notify.NewManager(s.alerts, nil)
	s.reminder = reminder.NewService(store, manager,
		reminder.WithLocation(loc),
		reminder.WithEntitlement(reminder.StaticEntitlement(profile.Pro)),
		reminder.WithDefaultAlertTime(notify.AlertTime{
			Hour:   profile.NotificationHour,
			Minute: profile.NotificationMinute,
		}),
	)

	echoServer := echo.New()
	echoServer.Debug = profile.IsDev()
	echoServer.HideBanner = true
	echoServer.HidePort = true
	echoServer.Use(echomiddleware.Recover())
	echoServer.Use(middleware.RequestContext(s.logger, s.metrics))
	if profile.RateLimit > 0 {
		echoServer.Use(middleware.NewRateLimiter(profile.RateLimit, 0).Middleware())
	}
	s.echoServer = echoServer

	apiv1.NewAPIV1Service(profile, s.reminder).RegisterRoutes(echoServer)

	return s, nil
}

// Start starts the alert registry, re-registers every stored reminder and
// begins serving HTTP. It returns once the listener is running.
func (s *Server) Start(ctx context.Context) error {
	if err := s.alerts.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start alert registry")
	}

	total, err := s.reminder.RescheduleAll(ctx)
	if err != nil {
		s.logger.Warn("some alerts could not be registered at startup", "error", err)
	}
	s.logger.Info("alerts registered", "count", total, "channels", s.dispatcher.Channels())

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	go func() {
		if err := s.echoServer.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("failed to start echo server", "error", err)
		}
	}()
	return nil
}

// Shutdown stops serving, stops the alert registry and closes the store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		s.logger.Error("failed to shutdown server", "error", err)
	}
	s.alerts.Stop()
	if err := s.Store.Close(); err != nil {
		s.logger.Error("failed to close database", "error", err)
	}
	s.logger.Info("server stopped properly")
}

// deliver sends a fired alert through every channel. Only delivered alerts
// are counted as fired.
func (s *Server) deliver(ctx context.Context, alert notify.Alert) error {
	if err := s.dispatcher.Send(ctx, alert); err != nil {
		return err
	}
	s.metrics.RecordAlertFired()
	return nil
}

// Handler exposes the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.echoServer
}
