package database

import (
	"community-bot/model"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Init connects to the database and ensures all necessary tables are created.
func Init(driver, dsn string) (*sqlx.DB, error) {
	if driver == DriverSQLite {
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// One writer at a time; this also keeps ":memory:" databases on a single connection.
		db.SetMaxOpenConns(1)
		if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	}

	for _, stmt := range Schemas {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply schema statement %q: %w", firstLine(stmt), err)
		}
	}

	return db, nil
}

// WithTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back otherwise.
func WithTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return model.StorageErr("begin transaction", err)
	}

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return model.StorageErr("commit transaction", err)
	}
	return nil
}

// Size returns the on-disk size of the database in bytes.
func Size(ctx context.Context, db *sqlx.DB) (int64, error) {
	var size int64
	var err error
	switch db.DriverName() {
	case DriverSQLite:
		err = db.GetContext(ctx, &size, `SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()`)
	case DriverPostgres:
		err = db.GetContext(ctx, &size, `SELECT pg_database_size(current_database())`)
	default:
		return 0, fmt.Errorf("unsupported driver %s", db.DriverName())
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get database size: %w", err)
	}
	return size, nil
}

// ensureDir creates the parent directory of a file-backed SQLite DSN.
func ensureDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		return fmt.Errorf("failed to create database directory %s: %w", dir, err)
	}
	return nil
}

func firstLine(stmt string) string {
	stmt = strings.TrimSpace(stmt)
	if i := strings.IndexByte(stmt, '\n'); i >= 0 {
		return stmt[:i]
	}
	return stmt
}
