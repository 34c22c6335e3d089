package test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/AlekSi/pointer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgallello/remembered/store"
)

func TestSettingStore(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	setting, err := ts.GetSetting(ctx, store.SettingLastUsedType)
	require.NoError(t, err)
	assert.Nil(t, setting)

	_, err = ts.UpsertSetting(ctx, &store.Setting{Name: store.SettingLastUsedType, Value: "birthday"})
	require.NoError(t, err)
	_, err = ts.UpsertSetting(ctx, &store.Setting{Name: store.SettingLastUsedType, Value: "medical"})
	require.NoError(t, err)

	setting, err = ts.GetSetting(ctx, store.SettingLastUsedType)
	require.NoError(t, err)
	require.NotNil(t, setting)
	assert.Equal(t, "medical", setting.Value)
	assert.NotZero(t, setting.UpdatedTs)

	require.NoError(t, ts.DeleteSetting(ctx, &store.DeleteSetting{Name: store.SettingLastUsedType}))
	setting, err = ts.GetSetting(ctx, store.SettingLastUsedType)
	require.NoError(t, err)
	assert.Nil(t, setting)
}

func TestMigrate_RecordsSchemaVersionAndIsRepeatable(t *testing.T) {
	ctx := context.Background()
	ts := NewTestingStore(ctx, t)

	setting, err := ts.GetSetting(ctx, store.SettingSchemaVersion)
	require.NoError(t, err)
	require.NotNil(t, setting)
	assert.Equal(t, "0", setting.Value)

	require.NoError(t, ts.Migrate(ctx))
}

func TestMigrate_DemoModeSeeds(t *testing.T) {
	if getDriverFromEnv() != "sqlite" {
		t.Skip("seed data only ships for sqlite")
	}
	ctx := context.Background()
	p := getTestingProfile(t)
	p.Mode = "demo"
	p.DSN = filepath.Join(p.Data, "remembered_demo.db")
	ts := newTestingStoreWithProfile(ctx, t, p)

	list, err := ts.ListReminders(ctx, &store.FindReminder{})
	require.NoError(t, err)
	assert.Len(t, list, 3)

	review, err := ts.ListReminders(ctx, &store.FindReminder{NeedsReview: pointer.ToBool(true)})
	require.NoError(t, err)
	require.Len(t, review, 1)
	assert.Equal(t, "checkup", review[0].Title)
}
