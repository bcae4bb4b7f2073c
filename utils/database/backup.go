package database

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

const backupPrefix = "community_backup_"

// ErrBackupUnsupported is returned for drivers that are backed up outside the bot.
var ErrBackupUnsupported = errors.New("backup is only supported for sqlite databases")

// Backup writes a consistent copy of the database into dir and returns its path.
func Backup(ctx context.Context, db *sqlx.DB, dir string, now time.Time) (string, error) {
	if db.DriverName() != DriverSQLite {
		return "", ErrBackupUnsupported
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating backup directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s%s.db", backupPrefix, now.UTC().Format("20060102_150405")))
	if _, err := os.Stat(path); err == nil {
		return "", fmt.Errorf("backup %s already exists", path)
	}

	if _, err := db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return "", fmt.Errorf("failed to write backup %s: %w", path, err)
	}
	return path, nil
}

// PruneBackups removes all but the newest keep backups from dir and returns the removed paths.
func PruneBackups(dir string, keep int) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("error reading backup directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), backupPrefix) {
			continue
		}
		names = append(names, e.Name())
	}
	if len(names) <= keep {
		return nil, nil
	}

	// Timestamped names sort chronologically.
	sort.Strings(names)
	var removed []string
	for _, name := range names[:len(names)-keep] {
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			return removed, fmt.Errorf("failed to delete old backup %s: %w", path, err)
		}
		removed = append(removed, path)
	}
	return removed, nil
}
