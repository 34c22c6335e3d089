package reminder

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/cgallello/remembered/store"
)

// MockStore is an in-memory implementation of the Store interface for testing.
type MockStore struct {
	mu        sync.Mutex
	reminders []*store.Reminder
	settings  map[string]string
	nextID    int32

	failCreate error
	failUpdate error
}

func NewMockStore() *MockStore {
	return &MockStore{settings: make(map[string]string)}
}

func (m *MockStore) CreateReminder(ctx context.Context, create *store.Reminder) (*store.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return nil, m.failCreate
	}
	for _, r := range m.reminders {
		if r.UID == create.UID {
			return nil, errors.New("duplicate uid")
		}
	}
	m.nextID++
	saved := *create
	saved.ID = m.nextID
	saved.CreatedTs = time.Now().Unix()
	saved.UpdatedTs = saved.CreatedTs
	m.reminders = append(m.reminders, &saved)
	out := saved
	return &out, nil
}

func (m *MockStore) ListReminders(ctx context.Context, find *store.FindReminder) ([]*store.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]*store.Reminder, 0)
	for _, r := range m.reminders {
		if find.ID != nil && r.ID != *find.ID {
			continue
		}
		if find.UID != nil && r.UID != *find.UID {
			continue
		}
		if find.Type != nil && r.Type != *find.Type {
			continue
		}
		if find.NeedsReview != nil && r.NeedsReview != *find.NeedsReview {
			continue
		}
		if find.NotificationEnabled != nil && r.NotificationEnabled != *find.NotificationEnabled {
			continue
		}
		if find.HasDate != nil && (r.Date != nil) != *find.HasDate {
			continue
		}
		if find.DateAfter != nil && (r.Date == nil || *r.Date < *find.DateAfter) {
			continue
		}
		copied := *r
		result = append(result, &copied)
	}

	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].Date, result[j].Date
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})

	if find.Offset != nil {
		if *find.Offset >= len(result) {
			return nil, nil
		}
		result = result[*find.Offset:]
	}
	if find.Limit != nil && *find.Limit < len(result) {
		result = result[:*find.Limit]
	}
	return result, nil
}

func (m *MockStore) GetReminder(ctx context.Context, find *store.FindReminder) (*store.Reminder, error) {
	list, err := m.ListReminders(ctx, find)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return list[0], nil
}

func (m *MockStore) UpdateReminder(ctx context.Context, update *store.UpdateReminder) (*store.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate != nil {
		return nil, m.failUpdate
	}
	for _, r := range m.reminders {
		if r.ID != update.ID {
			continue
		}
		if update.Title != nil {
			r.Title = *update.Title
		}
		if update.ClearDate {
			r.Date = nil
		} else if update.Date != nil {
			date := *update.Date
			r.Date = &date
		}
		if update.Type != nil {
			r.Type = *update.Type
		}
		if update.Recurrence != nil {
			r.Recurrence = *update.Recurrence
		}
		if update.NeedsReview != nil {
			r.NeedsReview = *update.NeedsReview
		}
		if update.Notes != nil {
			r.Notes = *update.Notes
		}
		if update.NotificationEnabled != nil {
			r.NotificationEnabled = *update.NotificationEnabled
		}
		if update.NotificationIntervals != nil {
			r.NotificationIntervals = append([]string(nil), (*update.NotificationIntervals)...)
		}
		r.UpdatedTs = time.Now().Unix()
		out := *r
		return &out, nil
	}
	return nil, store.ErrNotFound
}

func (m *MockStore) DeleteReminder(ctx context.Context, delete *store.DeleteReminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, r := range m.reminders {
		if r.ID == delete.ID {
			m.reminders = append(m.reminders[:i], m.reminders[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (m *MockStore) UpsertSetting(ctx context.Context, upsert *store.Setting) (*store.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[upsert.Name] = upsert.Value
	out := *upsert
	return &out, nil
}

func (m *MockStore) GetSetting(ctx context.Context, name string) (*store.Setting, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.settings[name]
	if !ok {
		return nil, nil
	}
	return &store.Setting{Name: name, Value: value}, nil
}
