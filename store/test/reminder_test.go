package test

import (
	"context"
	"errors"
	"testing"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgallello/remembered/store"
)

func createReminder(ctx context.Context, t *testing.T, ts *store.Store, uid string, date *int64) *store.Reminder {
	t.Helper()
	reminder, err := ts.CreateReminder(ctx, &store.Reminder{
		UID:                   uid,
		RawInput:              uid + " birthday",
		Title:                 uid,
		Date:                  date,
		Type:                  "birthday",
		Recurrence:            "annual",
		NeedsReview:           date == nil,
		NotificationIntervals: []string{"oneWeek", "dayOf"},
	})
	require.NoError(t, err)
	return reminder
}

func TestReminderStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	created := createReminder(ctx, t, ts, "stef", pointer.ToInt64(1817726400))
	require.NotZero(t, created.ID)
	assert.NotZero(t, created.CreatedTs)

	got, err := ts.GetReminder(ctx, &store.FindReminder{UID: pointer.ToString("stef")})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "stef birthday", got.RawInput)
	assert.Equal(t, int64(1817726400), *got.Date)
	assert.Equal(t, []string{"oneWeek", "dayOf"}, got.NotificationIntervals)
	assert.False(t, got.NotificationEnabled)
	assert.False(t, got.NeedsReview)

	updated, err := ts.UpdateReminder(ctx, &store.UpdateReminder{
		ID:                    created.ID,
		Title:                 pointer.ToString("Stefanie"),
		NotificationEnabled:   pointer.ToBool(true),
		NotificationIntervals: &[]string{"oneMonth"},
		Notes:                 pointer.ToString("*cake*"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Stefanie", updated.Title)
	assert.True(t, updated.NotificationEnabled)
	assert.Equal(t, []string{"oneMonth"}, updated.NotificationIntervals)
	assert.Equal(t, "*cake*", updated.Notes)
	assert.Equal(t, int64(1817726400), *updated.Date)

	updated, err = ts.UpdateReminder(ctx, &store.UpdateReminder{ID: created.ID, ClearDate: true, NeedsReview: pointer.ToBool(true)})
	require.NoError(t, err)
	assert.Nil(t, updated.Date)
	assert.True(t, updated.NeedsReview)

	require.NoError(t, ts.DeleteReminder(ctx, &store.DeleteReminder{ID: created.ID}))
	got, err = ts.GetReminder(ctx, &store.FindReminder{ID: &created.ID})
	require.NoError(t, err)
	assert.Nil(t, got)

	err = ts.DeleteReminder(ctx, &store.DeleteReminder{ID: created.ID})
	assert.True(t, errors.Is(err, store.ErrNotFound))
	_, err = ts.UpdateReminder(ctx, &store.UpdateReminder{ID: created.ID, Title: pointer.ToString("gone")})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestReminderStore_ListOrderAndFilters(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	createReminder(ctx, t, ts, "undated", nil)
	createReminder(ctx, t, ts, "later", pointer.ToInt64(2000000000))
	createReminder(ctx, t, ts, "sooner", pointer.ToInt64(1900000000))

	list, err := ts.ListReminders(ctx, &store.FindReminder{})
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "sooner", list[0].UID)
	assert.Equal(t, "later", list[1].UID)
	assert.Equal(t, "undated", list[2].UID)

	list, err = ts.ListReminders(ctx, &store.FindReminder{HasDate: pointer.ToBool(false)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].NeedsReview)

	list, err = ts.ListReminders(ctx, &store.FindReminder{DateAfter: pointer.ToInt64(1950000000)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "later", list[0].UID)

	list, err = ts.ListReminders(ctx, &store.FindReminder{Limit: pointer.ToInt(1), Offset: pointer.ToInt(1)})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "later", list[0].UID)

	list, err = ts.ListReminders(ctx, &store.FindReminder{Type: pointer.ToString("medical")})
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestReminderStore_DuplicateUID(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	createReminder(ctx, t, ts, "dup", nil)
	_, err := ts.CreateReminder(ctx, &store.Reminder{UID: "dup", Title: "again", Type: "other", Recurrence: "none"})
	assert.Error(t, err)
}
