package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Sender delivers an alert over one channel.
type Sender interface {
	Send(ctx context.Context, alert Alert) error
	Name() string
}

// Dispatcher is a Notifier that fans an alert out to every registered sender.
type Dispatcher struct {
	senders map[string]Sender
	logger  *slog.Logger
	mu      sync.RWMutex
}

// NewDispatcher creates a dispatcher with no senders.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		senders: make(map[string]Sender),
		logger:  slog.Default(),
	}
}

// Register adds or replaces a sender under its name.
func (d *Dispatcher) Register(sender Sender) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.senders[sender.Name()] = sender
	d.logger.Info("registered notification channel", "sender", sender.Name())
}

// Channels returns the registered sender names, sorted.
func (d *Dispatcher) Channels() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	names := make([]string, 0, len(d.senders))
	for name := range d.senders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Send implements Notifier. Every sender is tried; failures are joined.
func (d *Dispatcher) Send(ctx context.Context, alert Alert) error {
	d.mu.RLock()
	senders := make([]Sender, 0, len(d.senders))
	for _, sender := range d.senders {
		senders = append(senders, sender)
	}
	d.mu.RUnlock()

	if len(senders) == 0 {
		return fmt.Errorf("no notification channel registered")
	}

	var errs []error
	for _, sender := range senders {
		if err := sender.Send(ctx, alert); err != nil {
			d.logger.Warn("failed to send via channel",
				"alert_id", alert.ID,
				"channel", sender.Name(),
				"error", err,
			)
			errs = append(errs, fmt.Errorf("%s: %w", sender.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// LogSender writes alerts to a structured logger.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a log sender on slog.Default.
func NewLogSender() *LogSender {
	return &LogSender{logger: slog.Default()}
}

// Send writes the alert body.
func (s *LogSender) Send(ctx context.Context, alert Alert) error {
	s.logger.InfoContext(ctx, alert.Body,
		"alert_id", alert.ID,
		"record_uid", alert.RecordUID,
		"interval", alert.Interval,
	)
	return nil
}

// Name returns the sender name.
func (s *LogSender) Name() string {
	return "log"
}

// WebhookConfig holds webhook configuration.
type WebhookConfig struct {
	URL     string
	Secret  string
	Timeout time.Duration
	Headers map[string]string
}

// WebhookSender posts alerts as JSON.
type WebhookSender struct {
	config     WebhookConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// WebhookPayload is the webhook request body.
type WebhookPayload struct {
	Event      string    `json:"event"`
	DeliveryID string    `json:"delivery_id"`
	Alert      Alert     `json:"alert"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewWebhookSender creates a webhook sender. Timeout defaults to 10s.
func NewWebhookSender(config WebhookConfig) *WebhookSender {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &WebhookSender{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger: slog.Default(),
	}
}

// Send posts the alert to the configured URL.
func (s *WebhookSender) Send(ctx context.Context, alert Alert) error {
	payload := WebhookPayload{
		Event:      "reminder.alert",
		DeliveryID: uuid.NewString(),
		Alert:      alert,
		Timestamp:  time.Now(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.config.Secret != "" {
		req.Header.Set("X-Webhook-Secret", s.config.Secret)
	}
	for k, v := range s.config.Headers {
		req.Header.Set(k, v)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Error("webhook request failed", "url", s.config.URL, "error", err)
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		s.logger.Error("webhook returned error",
			"url", s.config.URL,
			"status", resp.StatusCode,
			"response", string(respBody),
		)
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	s.logger.Debug("webhook notification sent",
		"alert_id", alert.ID,
		"delivery_id", payload.DeliveryID,
		"status", resp.StatusCode,
	)
	return nil
}

// Name returns the sender name.
func (s *WebhookSender) Name() string {
	return "webhook"
}
