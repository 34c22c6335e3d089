package profile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileValidate(t *testing.T) {
	dir := t.TempDir()

	p := &Profile{Mode: "weird", Data: dir, Timezone: "UTC", NotificationHour: 9}
	require.NoError(t, p.Validate())
	assert.Equal(t, "demo", p.Mode)
	assert.Equal(t, "sqlite", p.Driver)
	assert.Equal(t, filepath.Join(dir, "remembered_demo.db"), p.DSN)
	assert.True(t, p.IsDev())

	loc, err := p.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestProfileValidate_Errors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		profile Profile
	}{
		{"unknown driver", Profile{Data: dir, Driver: "mysql"}},
		{"postgres without dsn", Profile{Data: dir, Driver: "postgres"}},
		{"hour out of range", Profile{Data: dir, NotificationHour: 24}},
		{"minute out of range", Profile{Data: dir, NotificationMinute: 60}},
		{"bad timezone", Profile{Data: dir, Timezone: "Mars/Olympus"}},
		{"missing data dir", Profile{Data: filepath.Join(dir, "missing")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.profile
			assert.Error(t, p.Validate())
		})
	}
}
