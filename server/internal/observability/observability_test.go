package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestContext_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reqCtx := NewRequestContext(logger, "capture")
	require.NotEmpty(t, reqCtx.RequestID)

	reqCtx.Info("saved", slog.String(LogFieldReminderUID, "abc"))
	reqCtx.Error("failed", errors.New("boom"))

	out := buf.String()
	assert.Contains(t, out, "request_id="+reqCtx.RequestID)
	assert.Contains(t, out, "operation=capture")
	assert.Contains(t, out, "reminder_uid=abc")
	assert.Contains(t, out, "error=boom")
}

func TestRequestContext_FromContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	reqCtx := NewRequestContextWithID(nil, "", "list")
	assert.NotEmpty(t, reqCtx.RequestID)

	ctx := WithRequestContext(context.Background(), reqCtx)
	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, reqCtx, got)
	assert.NotNil(t, LoggerFrom(ctx, nil))
	assert.NotNil(t, LoggerFrom(context.Background(), nil))
}

func TestMetrics_Snapshot(t *testing.T) {
	m := NewMetrics(2)
	m.RecordRequest("capture")
	m.RecordRequest("capture")
	m.RecordFailure("capture")
	m.RecordRequest("list")
	m.RecordDuration("capture", 40*time.Millisecond)
	m.RecordDuration("capture", 20*time.Millisecond)
	m.RecordDuration("list", 5*time.Millisecond)
	m.RecordAlertFired()

	snap := m.Snapshot()
	assert.Equal(t, int64(3), snap.RequestTotal)
	assert.Equal(t, int64(1), snap.RequestFailed)
	assert.Equal(t, int64(1), snap.AlertsFired)
	assert.Equal(t, 2, snap.DurationCount)
	require.Len(t, snap.Operations, 2)
	assert.Equal(t, "capture", snap.Operations[0].Operation)
	assert.Equal(t, int64(30), snap.Operations[0].AverageDuration)
	assert.InDelta(t, 66.66, snap.SuccessRate(), 0.1)

	m.Reset()
	assert.Equal(t, 100.0, m.Snapshot().SuccessRate())
}
