package observability

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Metrics collects request counters per operation.
type Metrics struct {
	mu sync.Mutex

	requestTotal  atomic.Int64
	requestFailed atomic.Int64
	alertsFired   atomic.Int64

	operations map[string]*OperationMetrics

	durations    []time.Duration
	maxDurations int
}

// OperationMetrics represents metrics for a single operation.
type OperationMetrics struct {
	executionCount atomic.Int64
	totalDuration  atomic.Int64 // milliseconds
	errorCount     atomic.Int64
}

// NewMetrics creates a new metrics collector.
func NewMetrics(maxDurations int) *Metrics {
	if maxDurations <= 0 {
		maxDurations = 1000
	}
	return &Metrics{
		operations:   make(map[string]*OperationMetrics),
		durations:    make([]time.Duration, 0, maxDurations),
		maxDurations: maxDurations,
	}
}

var globalMetrics = NewMetrics(1000)

// GlobalMetrics returns the global metrics instance.
func GlobalMetrics() *Metrics {
	return globalMetrics
}

// RecordRequest records a request.
func (m *Metrics) RecordRequest(operation string) {
	m.requestTotal.Add(1)
	m.operation(operation).executionCount.Add(1)
}

// RecordFailure records a failed request.
func (m *Metrics) RecordFailure(operation string) {
	m.requestFailed.Add(1)
	m.operation(operation).errorCount.Add(1)
}

// RecordDuration records a request duration.
func (m *Metrics) RecordDuration(operation string, duration time.Duration) {
	om := m.operation(operation)
	om.totalDuration.Add(duration.Milliseconds())

	m.mu.Lock()
	if len(m.durations) >= m.maxDurations {
		m.durations = m.durations[1:]
	}
	m.durations = append(m.durations, duration)
	m.mu.Unlock()
}

// RecordAlertFired records a delivered alert.
func (m *Metrics) RecordAlertFired() {
	m.alertsFired.Add(1)
}

// GetRequestTotal returns the total number of requests.
func (m *Metrics) GetRequestTotal() int64 {
	return m.requestTotal.Load()
}

// GetRequestFailed returns the total number of failed requests.
func (m *Metrics) GetRequestFailed() int64 {
	return m.requestFailed.Load()
}

func (m *Metrics) operation(name string) *OperationMetrics {
	m.mu.Lock()
	defer m.mu.Unlock()

	om, ok := m.operations[name]
	if !ok {
		om = &OperationMetrics{}
		m.operations[name] = om
	}
	return om
}

// Reset resets all metrics.
func (m *Metrics) Reset() {
	m.requestTotal.Store(0)
	m.requestFailed.Store(0)
	m.alertsFired.Store(0)

	m.mu.Lock()
	m.operations = make(map[string]*OperationMetrics)
	m.durations = make([]time.Duration, 0, m.maxDurations)
	m.mu.Unlock()
}

// Snapshot returns a snapshot of current metrics.
func (m *Metrics) Snapshot() *MetricsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	ops := make([]OperationSnapshot, 0, len(m.operations))
	for name, om := range m.operations {
		snap := OperationSnapshot{
			Operation:      name,
			ExecutionCount: om.executionCount.Load(),
			TotalDuration:  om.totalDuration.Load(),
			ErrorCount:     om.errorCount.Load(),
		}
		if snap.ExecutionCount > 0 {
			snap.AverageDuration = snap.TotalDuration / snap.ExecutionCount
		}
		ops = append(ops, snap)
	}
	sort.Slice(ops, func(i, j int) bool { return ops[i].Operation < ops[j].Operation })

	return &MetricsSnapshot{
		RequestTotal:  m.requestTotal.Load(),
		RequestFailed: m.requestFailed.Load(),
		AlertsFired:   m.alertsFired.Load(),
		Operations:    ops,
		DurationCount: len(m.durations),
	}
}

// MetricsSnapshot represents a point-in-time snapshot of metrics.
type MetricsSnapshot struct {
	RequestTotal  int64               `json:"request_total"`
	RequestFailed int64               `json:"request_failed"`
	AlertsFired   int64               `json:"alerts_fired"`
	Operations    []OperationSnapshot `json:"operations"`
	DurationCount int                 `json:"duration_count"`
}

// OperationSnapshot represents metrics for a single operation.
type OperationSnapshot struct {
	Operation       string `json:"operation"`
	ExecutionCount  int64  `json:"execution_count"`
	TotalDuration   int64  `json:"total_duration_ms"`
	ErrorCount      int64  `json:"error_count"`
	AverageDuration int64  `json:"average_duration_ms"`
}

// SuccessRate returns the success rate as a percentage (0-100).
func (s *MetricsSnapshot) SuccessRate() float64 {
	if s.RequestTotal == 0 {
		return 100.0
	}
	return float64(s.RequestTotal-s.RequestFailed) / float64(s.RequestTotal) * 100.0
}
