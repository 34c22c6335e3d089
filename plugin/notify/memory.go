package notify

import (
	"context"
	"sort"
	"sync"
)

// MemoryAlertScheduler keeps alerts in a map. It never fires them and is
// meant for tests and previews.
type MemoryAlertScheduler struct {
	alerts map[string]Alert
	// FailAdd, when set, is returned by Add for matching alerts.
	FailAdd func(Alert) error
	mu      sync.Mutex
}

// NewMemoryAlertScheduler creates an empty in-memory registry.
func NewMemoryAlertScheduler() *MemoryAlertScheduler {
	return &MemoryAlertScheduler{
		alerts: make(map[string]Alert),
	}
}

// Add implements AlertScheduler.
func (s *MemoryAlertScheduler) Add(ctx context.Context, alert Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailAdd != nil {
		if err := s.FailAdd(alert); err != nil {
			return err
		}
	}
	s.alerts[alert.ID] = alert
	return nil
}

// Remove implements AlertScheduler.
func (s *MemoryAlertScheduler) Remove(ctx context.Context, ids ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.alerts, id)
	}
	return nil
}

// Pending implements AlertScheduler. Alerts are ordered by fire time.
func (s *MemoryAlertScheduler) Pending(ctx context.Context) ([]Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedAlerts(s.alerts), nil
}

// Get returns the alert registered under id.
func (s *MemoryAlertScheduler) Get(id string) (Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	alert, ok := s.alerts[id]
	return alert, ok
}

// Len returns the number of registered alerts.
func (s *MemoryAlertScheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.alerts)
}

func sortedAlerts(alerts map[string]Alert) []Alert {
	out := make([]Alert, 0, len(alerts))
	for _, alert := range alerts {
		out = append(out, alert)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].At.Equal(out[j].At) {
			return out[i].ID < out[j].ID
		}
		return out[i].At.Before(out[j].At)
	})
	return out
}

// MockNotifier records sent alerts.
type MockNotifier struct {
	sent    []Alert
	failErr error
	mu      sync.Mutex
}

// NewMockNotifier creates a new mock notifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

// Send implements Notifier.
func (n *MockNotifier) Send(ctx context.Context, alert Alert) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failErr != nil {
		return n.failErr
	}
	n.sent = append(n.sent, alert)
	return nil
}

// SetFail makes every following Send fail. A nil err restores delivery.
func (n *MockNotifier) SetFail(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failErr = err
}

// Sent returns a copy of the delivered alerts.
func (n *MockNotifier) Sent() []Alert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Alert{}, n.sent...)
}

// GetSentCount returns the number of delivered alerts.
func (n *MockNotifier) GetSentCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.sent)
}
