package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cgallello/remembered/store"
)

func (d *DB) UpsertSetting(ctx context.Context, upsert *store.Setting) (*store.Setting, error) {
	if upsert.UpdatedTs == 0 {
		upsert.UpdatedTs = time.Now().Unix()
	}

	stmt := `INSERT INTO setting (name, value, updated_ts)
		VALUES (` + placeholders(3) + `)
		ON CONFLICT (name) DO UPDATE SET
			value = EXCLUDED.value,
			updated_ts = EXCLUDED.updated_ts`
	if _, err := d.db.ExecContext(ctx, stmt, upsert.Name, upsert.Value, upsert.UpdatedTs); err != nil {
		return nil, fmt.Errorf("failed to upsert setting: %w", err)
	}

	return upsert, nil
}

func (d *DB) ListSettings(ctx context.Context, find *store.FindSetting) ([]*store.Setting, error) {
	where, args := []string{"1 = 1"}, []any{}
	if v := find.Name; v != nil {
		where, args = append(where, "name = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `SELECT name, value, updated_ts FROM setting WHERE ` + strings.Join(where, " AND ") + ` ORDER BY name`
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Setting, 0)
	for rows.Next() {
		setting := &store.Setting{}
		if err := rows.Scan(&setting.Name, &setting.Value, &setting.UpdatedTs); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		list = append(list, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate settings: %w", err)
	}

	return list, nil
}

func (d *DB) DeleteSetting(ctx context.Context, delete *store.DeleteSetting) error {
	if _, err := d.db.ExecContext(ctx, `DELETE FROM setting WHERE name = `+placeholder(1), delete.Name); err != nil {
		return fmt.Errorf("failed to delete setting: %w", err)
	}
	return nil
}
