package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Migration files live in migration/{driver}/. LATEST.sql is the full schema
// for fresh databases; NN__description.sql files upgrade older ones and NN is
// the schema version the file brings the database to. The applied version is
// kept in the schema_version setting.

//go:embed migration
var embeddedMigrations embed.FS

//go:embed seed
var embeddedSeeds embed.FS

var (
	migrationFS fs.FS = embeddedMigrations
	seedFS      fs.FS = embeddedSeeds
)

const (
	// MigrateFileNameSplit is the split character between the patch version and the description in the migration file name.
	// For example, "1__create_table.sql".
	MigrateFileNameSplit = "__"
	// LatestSchemaFileName is the name of the latest schema file.
	LatestSchemaFileName = "LATEST.sql"

	modeDemo = "demo"
)

type migration struct {
	version int
	path    string
}

// Migrate brings the database schema to the latest version and seeds demo
// data in demo mode.
func (s *Store) Migrate(ctx context.Context) error {
	initialized, err := s.driver.IsInitialized(ctx)
	if err != nil {
		return errors.Wrap(err, "failed to check if database is initialized")
	}

	migrations, err := s.listMigrations()
	if err != nil {
		return err
	}
	target := 0
	if len(migrations) > 0 {
		target = migrations[len(migrations)-1].version
	}

	if !initialized {
		if err := s.applyLatestSchema(ctx); err != nil {
			return errors.Wrap(err, "failed to apply latest schema")
		}
		if err := s.setSchemaVersion(ctx, target); err != nil {
			return err
		}
		if s.profile.Mode == modeDemo {
			if err := s.seed(ctx); err != nil {
				return errors.Wrap(err, "failed to seed")
			}
		}
		return nil
	}

	current, err := s.schemaVersion(ctx)
	if err != nil {
		return err
	}
	if current > target {
		slog.Error("cannot downgrade schema version",
			slog.Int("databaseVersion", current),
			slog.Int("currentVersion", target),
		)
		return errors.Errorf("cannot downgrade schema version from %d to %d", current, target)
	}
	if current == target {
		return nil
	}
	if err := s.applyMigrations(ctx, migrations, current); err != nil {
		return errors.Wrap(err, "failed to apply migrations")
	}
	return s.setSchemaVersion(ctx, target)
}

func (s *Store) getMigrationBasePath() string {
	return fmt.Sprintf("migration/%s/", s.profile.Driver)
}

func (s *Store) listMigrations() ([]migration, error) {
	paths, err := fs.Glob(migrationFS, s.getMigrationBasePath()+"*.sql")
	if err != nil {
		return nil, errors.Wrap(err, "failed to read migration files")
	}
	migrations := make([]migration, 0, len(paths))
	for _, p := range paths {
		name := path.Base(p)
		if name == LatestSchemaFileName {
			continue
		}
		raw, _, ok := strings.Cut(name, MigrateFileNameSplit)
		if !ok {
			return nil, errors.Errorf("invalid migration filename format (missing %s): %s", MigrateFileNameSplit, name)
		}
		version, err := strconv.Atoi(raw)
		if err != nil {
			return nil, errors.Errorf("migration filename must start with a number: %s", name)
		}
		migrations = append(migrations, migration{version: version, path: p})
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].version < migrations[j].version })
	return migrations, nil
}

func (s *Store) applyLatestSchema(ctx context.Context) error {
	filePath := s.getMigrationBasePath() + LatestSchemaFileName
	bytes, err := fs.ReadFile(migrationFS, filePath)
	if err != nil {
		return errors.Wrapf(err, "failed to read latest schema file %s", filePath)
	}
	slog.Info("initializing new database with latest schema", slog.String("file", filePath))
	return s.runInTx(ctx, string(bytes))
}

// applyMigrations applies every migration newer than current in a single transaction.
func (s *Store) applyMigrations(ctx context.Context, migrations []migration, current int) error {
	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()

	applied := 0
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		slog.Info("applying migration", slog.String("file", m.path), slog.Int("version", m.version))
		bytes, err := fs.ReadFile(migrationFS, m.path)
		if err != nil {
			return errors.Wrapf(err, "failed to read migration file: %s", m.path)
		}
		if err := s.execute(ctx, tx, string(bytes)); err != nil {
			return errors.Wrapf(err, "failed to execute migration %s", m.path)
		}
		applied++
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit migration transaction")
	}
	slog.Info("migration completed", slog.Int("migrationsApplied", applied))
	return nil
}

// seed loads demo reminders. Only SQLite ships seed files.
func (s *Store) seed(ctx context.Context) error {
	filenames, err := fs.Glob(seedFS, fmt.Sprintf("seed/%s/*.sql", s.profile.Driver))
	if err != nil {
		return errors.Wrap(err, "failed to read seed files")
	}
	if len(filenames) == 0 {
		slog.Warn("no seed files for driver, skipping", slog.String("driver", s.profile.Driver))
		return nil
	}
	sort.Strings(filenames)
	for _, filename := range filenames {
		bytes, err := fs.ReadFile(seedFS, filename)
		if err != nil {
			return errors.Wrapf(err, "failed to read seed file, filename=%s", filename)
		}
		if err := s.runInTx(ctx, string(bytes)); err != nil {
			return errors.Wrapf(err, "seed error: %s", filename)
		}
	}
	return nil
}

func (s *Store) runInTx(ctx context.Context, stmt string) error {
	tx, err := s.driver.GetDB().BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to start transaction")
	}
	defer tx.Rollback()
	if err := s.execute(ctx, tx, stmt); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) schemaVersion(ctx context.Context) (int, error) {
	setting, err := s.GetSetting(ctx, SettingSchemaVersion)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get schema version")
	}
	if setting == nil || setting.Value == "" {
		return 0, nil
	}
	version, err := strconv.Atoi(setting.Value)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid schema version %q", setting.Value)
	}
	return version, nil
}

func (s *Store) setSchemaVersion(ctx context.Context, version int) error {
	if _, err := s.UpsertSetting(ctx, &Setting{
		Name:      SettingSchemaVersion,
		Value:     strconv.Itoa(version),
		UpdatedTs: time.Now().Unix(),
	}); err != nil {
		return errors.Wrap(err, "failed to update current schema version")
	}
	return nil
}

// execute runs a SQL script inside tx. PostgreSQL does not accept several
// statements in one ExecContext call, so scripts are split for it.
func (s *Store) execute(ctx context.Context, tx *sql.Tx, stmt string) error {
	if s.profile.Driver != "postgres" {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "failed to execute statement")
		}
		return nil
	}
	for i, part := range splitSQL(stmt) {
		if _, err := tx.ExecContext(ctx, part); err != nil {
			return errors.Wrapf(err, "failed to execute statement %d: %s", i+1, part)
		}
	}
	return nil
}

// splitSQL splits a script on semicolons outside single-quoted strings and
// drops "--" comments.
func splitSQL(script string) []string {
	var statements []string
	var current strings.Builder
	inQuote := false

	flush := func() {
		if stmt := strings.TrimSpace(current.String()); stmt != "" {
			statements = append(statements, stmt)
		}
		current.Reset()
	}

	for _, line := range strings.Split(script, "\n") {
		for i := 0; i < len(line); i++ {
			ch := line[i]
			if !inQuote && ch == '-' && i+1 < len(line) && line[i+1] == '-' {
				break
			}
			if ch == '\'' {
				inQuote = !inQuote
			}
			if ch == ';' && !inQuote {
				flush()
				continue
			}
			current.WriteByte(ch)
		}
		current.WriteByte('\n')
	}
	flush()
	return statements
}
