package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/cgallello/remembered/store"
)

const reminderColumns = `id, uid, created_ts, updated_ts,
	raw_input, title, date_ts, type, recurrence, needs_review, notes,
	notification_enabled, notification_intervals, contact_id, contact_display_name`

func (d *DB) CreateReminder(ctx context.Context, create *store.Reminder) (*store.Reminder, error) {
	intervals, err := store.EncodeIntervals(create.NotificationIntervals)
	if err != nil {
		return nil, err
	}

	fields := []string{
		"uid", "raw_input", "title", "date_ts", "type", "recurrence", "needs_review", "notes",
		"notification_enabled", "notification_intervals", "contact_id", "contact_display_name",
	}
	placeholderValues := []any{
		create.UID, create.RawInput, create.Title, create.Date, create.Type, create.Recurrence, create.NeedsReview, create.Notes,
		create.NotificationEnabled, intervals, create.ContactID, create.ContactDisplayName,
	}

	// Add optional timestamps
	if create.CreatedTs != 0 {
		fields = append(fields, "created_ts")
		placeholderValues = append(placeholderValues, create.CreatedTs)
	}
	if create.UpdatedTs != 0 {
		fields = append(fields, "updated_ts")
		placeholderValues = append(placeholderValues, create.UpdatedTs)
	}

	stmt := `INSERT INTO reminder (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(placeholderValues)) + `)
		RETURNING id, created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, placeholderValues...).Scan(
		&create.ID,
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create reminder: %w", err)
	}

	return create, nil
}

func (d *DB) ListReminders(ctx context.Context, find *store.FindReminder) ([]*store.Reminder, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "reminder.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "reminder.uid = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Type; v != nil {
		where, args = append(where, "reminder.type = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.NotificationEnabled; v != nil {
		where, args = append(where, "reminder.notification_enabled = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.NeedsReview; v != nil {
		where, args = append(where, "reminder.needs_review = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DateAfter; v != nil {
		where, args = append(where, "reminder.date_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.HasDate; v != nil {
		if *v {
			where = append(where, "reminder.date_ts IS NOT NULL")
		} else {
			where = append(where, "reminder.date_ts IS NULL")
		}
	}

	// Undated reminders sort last.
	orderBy := "ORDER BY reminder.date_ts IS NULL, reminder.date_ts ASC, reminder.id ASC"

	query := `SELECT ` + reminderColumns + ` FROM reminder WHERE ` + strings.Join(where, " AND ") + ` ` + orderBy
	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer rows.Close()

	list := make([]*store.Reminder, 0)
	for rows.Next() {
		var reminder store.Reminder
		var date sql.NullInt64
		var intervals string
		if err := rows.Scan(
			&reminder.ID,
			&reminder.UID,
			&reminder.CreatedTs,
			&reminder.UpdatedTs,
			&reminder.RawInput,
			&reminder.Title,
			&date,
			&reminder.Type,
			&reminder.Recurrence,
			&reminder.NeedsReview,
			&reminder.Notes,
			&reminder.NotificationEnabled,
			&intervals,
			&reminder.ContactID,
			&reminder.ContactDisplayName,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		if date.Valid {
			reminder.Date = &date.Int64
		}
		if reminder.NotificationIntervals, err = store.DecodeIntervals(intervals); err != nil {
			return nil, err
		}
		list = append(list, &reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminders: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateReminder(ctx context.Context, update *store.UpdateReminder) error {
	set, args := []string{}, []any{}

	if v := update.UpdatedTs; v != nil {
		set, args = append(set, "updated_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if update.ClearDate {
		set = append(set, "date_ts = NULL")
	} else if v := update.Date; v != nil {
		set, args = append(set, "date_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Type; v != nil {
		set, args = append(set, "type = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Recurrence; v != nil {
		set, args = append(set, "recurrence = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.NeedsReview; v != nil {
		set, args = append(set, "needs_review = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Notes; v != nil {
		set, args = append(set, "notes = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.NotificationEnabled; v != nil {
		set, args = append(set, "notification_enabled = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.NotificationIntervals; v != nil {
		intervals, err := store.EncodeIntervals(*v)
		if err != nil {
			return err
		}
		set, args = append(set, "notification_intervals = "+placeholder(len(args)+1)), append(args, intervals)
	}
	if v := update.ContactID; v != nil {
		set, args = append(set, "contact_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.ContactDisplayName; v != nil {
		set, args = append(set, "contact_display_name = "+placeholder(len(args)+1)), append(args, *v)
	}

	// If no fields to update, return early
	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)

	stmt := `UPDATE reminder SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	result, err := d.db.ExecContext(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return fmt.Errorf("reminder %d: %w", update.ID, store.ErrNotFound)
	}

	return nil
}

func (d *DB) DeleteReminder(ctx context.Context, delete *store.DeleteReminder) error {
	stmt := `DELETE FROM reminder WHERE id = ` + placeholder(1)
	result, err := d.db.ExecContext(ctx, stmt, delete.ID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("reminder %d: %w", delete.ID, store.ErrNotFound)
	}

	return nil
}
