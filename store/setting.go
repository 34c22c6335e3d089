package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	// SettingLastUsedType holds the sticky default reminder type.
	SettingLastUsedType = "last_used_type"
	// SettingNotificationTime holds the alert clock time as "HH:MM".
	SettingNotificationTime = "notification_time"
	// SettingSchemaVersion holds the applied migration number.
	SettingSchemaVersion = "schema_version"
)

// Setting is a named value.
type Setting struct {
	Name      string
	Value     string
	UpdatedTs int64
}

// FindSetting is the find condition for setting.
type FindSetting struct {
	Name *string
}

// DeleteSetting is the delete request for setting.
type DeleteSetting struct {
	Name string
}

// UpsertSetting creates or replaces a setting.
func (s *Store) UpsertSetting(ctx context.Context, upsert *Setting) (*Setting, error) {
	return s.driver.UpsertSetting(ctx, upsert)
}

// ListSettings lists settings.
func (s *Store) ListSettings(ctx context.Context, find *FindSetting) ([]*Setting, error) {
	return s.driver.ListSettings(ctx, find)
}

// GetSetting gets a setting by name. It returns nil when it is not set.
func (s *Store) GetSetting(ctx context.Context, name string) (*Setting, error) {
	list, err := s.driver.ListSettings(ctx, &FindSetting{Name: &name})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// DeleteSetting deletes a setting.
func (s *Store) DeleteSetting(ctx context.Context, delete *DeleteSetting) error {
	return s.driver.DeleteSetting(ctx, delete)
}

// FormatClock renders hour and minute as "HH:MM".
func FormatClock(hour, minute int) string {
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ParseClock parses "HH:MM".
func ParseClock(value string) (hour, minute int, err error) {
	h, m, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, 0, errors.Errorf("invalid clock value %q", value)
	}
	if hour, err = strconv.Atoi(h); err != nil {
		return 0, 0, errors.Wrapf(err, "invalid hour in %q", value)
	}
	if minute, err = strconv.Atoi(m); err != nil {
		return 0, 0, errors.Wrapf(err, "invalid minute in %q", value)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, errors.Errorf("clock value %q out of range", value)
	}
	return hour, minute, nil
}
