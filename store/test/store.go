package test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cgallello/remembered/internal/profile"
	"github.com/cgallello/remembered/store"
	"github.com/cgallello/remembered/store/db"
)

func getDriverFromEnv() string {
	if driver := os.Getenv("DRIVER"); driver != "" {
		return driver
	}
	return "sqlite"
}

// getPostgresDSN returns POSTGRES_TEST_DSN and skips the test when it is unset.
func getPostgresDSN(t *testing.T) string {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	return dsn
}

func getTestingProfile(t *testing.T) *profile.Profile {
	dir := t.TempDir()
	p := &profile.Profile{
		Mode:   "dev",
		Data:   dir,
		Driver: getDriverFromEnv(),
	}
	switch p.Driver {
	case "postgres":
		p.DSN = getPostgresDSN(t)
	default:
		p.DSN = filepath.Join(dir, "remembered_test.db")
	}
	return p
}

// NewTestingStore opens a migrated store on a fresh database.
func NewTestingStore(ctx context.Context, t *testing.T) *store.Store {
	t.Helper()
	return newTestingStoreWithProfile(ctx, t, getTestingProfile(t))
}

func newTestingStoreWithProfile(ctx context.Context, t *testing.T, p *profile.Profile) *store.Store {
	t.Helper()
	driver, err := db.NewDBDriver(p)
	if err != nil {
		t.Fatalf("failed to create db driver: %v", err)
	}
	if p.Driver == "postgres" {
		resetPostgres(ctx, t, driver)
	}

	ts := store.New(driver, p)
	if err := ts.Migrate(ctx); err != nil {
		t.Fatalf("failed to migrate db: %v", err)
	}
	t.Cleanup(func() {
		_ = ts.Close()
	})
	return ts
}

// resetPostgres drops the tables so every test starts from LATEST.sql.
func resetPostgres(ctx context.Context, t *testing.T, driver store.Driver) {
	for _, table := range []string{"reminder", "setting"} {
		if _, err := driver.GetDB().ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			t.Fatalf("failed to reset %s: %v", table, err)
		}
	}
}
