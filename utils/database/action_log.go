package database

import (
	"community-bot/model"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// LogAction records a staff action in the audit log.
func LogAction(ctx context.Context, db *sqlx.DB, entry model.ActionLog) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.Timestamp == 0 {
		entry.Timestamp = time.Now().Unix()
	}
	query := `INSERT INTO action_logs (id, action_type, staff_id, target_id, details, timestamp)
			  VALUES (:id, :action_type, :staff_id, :target_id, :details, :timestamp)`
	if _, err := db.NamedExecContext(ctx, query, entry); err != nil {
		return model.StorageErr("insert action log", err)
	}
	return nil
}

// RecentActions returns the newest audit entries, newest first.
func RecentActions(ctx context.Context, db *sqlx.DB, limit int) ([]model.ActionLog, error) {
	var logs []model.ActionLog
	query := db.Rebind(`SELECT * FROM action_logs ORDER BY timestamp DESC, id LIMIT ?`)
	if err := db.SelectContext(ctx, &logs, query, limit); err != nil {
		return nil, model.StorageErr("list action logs", err)
	}
	return logs, nil
}

// PurgeActionLogs deletes audit entries older than before and returns how many were removed.
func PurgeActionLogs(ctx context.Context, db *sqlx.DB, before time.Time) (int64, error) {
	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM action_logs WHERE timestamp < ?`), before.Unix())
	if err != nil {
		return 0, model.StorageErr("purge action logs", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to check rows affected for action log purge: %w", err)
	}
	return n, nil
}
