package store

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cgallello/remembered/internal/profile"
)

func TestSplitSQL(t *testing.T) {
	script := `-- reminder
CREATE TABLE a (x TEXT DEFAULT 'a;b'); -- trailing
INSERT INTO a VALUES ('--not a comment');

SELECT 1`
	got := splitSQL(script)
	require.Len(t, got, 3)
	assert.Equal(t, "CREATE TABLE a (x TEXT DEFAULT 'a;b')", got[0])
	assert.Equal(t, "INSERT INTO a VALUES ('--not a comment')", got[1])
	assert.Equal(t, "SELECT 1", got[2])
}

func TestSplitSQL_LatestSchemas(t *testing.T) {
	for _, driver := range []string{"sqlite", "postgres"} {
		raw, err := embeddedMigrations.ReadFile("migration/" + driver + "/" + LatestSchemaFileName)
		require.NoError(t, err, driver)
		assert.Len(t, splitSQL(string(raw)), 3, driver)
	}
}

func TestListMigrations(t *testing.T) {
	original := migrationFS
	t.Cleanup(func() { migrationFS = original })

	migrationFS = fstest.MapFS{
		"migration/sqlite/LATEST.sql":           {Data: []byte("SELECT 1;")},
		"migration/sqlite/10__add_index.sql":    {Data: []byte("SELECT 1;")},
		"migration/sqlite/2__add_column.sql":    {Data: []byte("SELECT 1;")},
		"migration/postgres/1__other_driver.sql": {Data: []byte("SELECT 1;")},
	}
	s := &Store{profile: &profile.Profile{Driver: "sqlite"}}

	got, err := s.listMigrations()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].version)
	assert.Equal(t, 10, got[1].version)

	migrationFS = fstest.MapFS{
		"migration/sqlite/add_index.sql": {Data: []byte("SELECT 1;")},
	}
	_, err = s.listMigrations()
	assert.Error(t, err)
}

func TestClock(t *testing.T) {
	hour, minute, err := ParseClock(" 07:05 ")
	require.NoError(t, err)
	assert.Equal(t, 7, hour)
	assert.Equal(t, 5, minute)
	assert.Equal(t, "07:05", FormatClock(hour, minute))

	for _, bad := range []string{"", "7", "24:00", "09:60", "aa:bb"} {
		_, _, err := ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestIntervalsEncoding(t *testing.T) {
	raw, err := EncodeIntervals(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)

	raw, err = EncodeIntervals([]string{"oneWeek", "dayOf"})
	require.NoError(t, err)
	got, err := DecodeIntervals(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"oneWeek", "dayOf"}, got)

	got, err = DecodeIntervals("")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = DecodeIntervals("{")
	assert.Error(t, err)
}
