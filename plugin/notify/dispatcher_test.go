package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAlert() Alert {
	return NewAlert("r", "Stef", Trigger{Interval: IntervalOneDay, At: time.Date(2026, 12, 24, 9, 0, 0, 0, time.UTC)})
}

func TestWebhookSender_Send(t *testing.T) {
	var got WebhookPayload
	var secret string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secret = r.Header.Get("X-Webhook-Secret")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	sender := NewWebhookSender(WebhookConfig{URL: server.URL, Secret: "s3cret"})
	require.NoError(t, sender.Send(context.Background(), testAlert()))

	assert.Equal(t, "s3cret", secret)
	assert.Equal(t, "reminder.alert", got.Event)
	assert.NotEmpty(t, got.DeliveryID)
	assert.Equal(t, "r-oneDay", got.Alert.ID)
	assert.Equal(t, "Reminder: Stef is happening tomorrow.", got.Alert.Body)
	assert.Equal(t, "webhook", sender.Name())
}

func TestWebhookSender_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer server.Close()

	err := NewWebhookSender(WebhookConfig{URL: server.URL}).Send(context.Background(), testAlert())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

type failingSender struct{}

func (failingSender) Send(context.Context, Alert) error { return assert.AnError }
func (failingSender) Name() string                      { return "failing" }

func TestDispatcher_Send(t *testing.T) {
	ctx := context.Background()
	d := NewDispatcher()

	assert.Error(t, d.Send(ctx, testAlert()), "no senders")

	d.Register(NewLogSender())
	require.NoError(t, d.Send(ctx, testAlert()))

	d.Register(failingSender{})
	assert.Equal(t, []string{"failing", "log"}, d.Channels())
	err := d.Send(ctx, testAlert())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "failing")
}

func TestNotifierFunc(t *testing.T) {
	var got Alert
	n := NotifierFunc(func(_ context.Context, alert Alert) error {
		got = alert
		return nil
	})
	require.NoError(t, n.Send(context.Background(), testAlert()))
	assert.Equal(t, "r-oneDay", got.ID)
}
