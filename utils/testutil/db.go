// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"community-bot/utils/database"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// OpenDB returns a fresh in-memory database with the schema applied.
func OpenDB(t testing.TB) *sqlx.DB {
	t.Helper()
	db, err := database.Init(database.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// OpenFileDB returns a file-backed database that allows conns concurrent
// connections, so transactions from different goroutines can overlap.
func OpenFileDB(t testing.TB, conns int) *sqlx.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Init(database.DriverSQLite, path+"?_busy_timeout=5000")
	require.NoError(t, err)
	db.SetMaxOpenConns(conns)
	t.Cleanup(func() { db.Close() })
	return db
}

// Clock is a settable time source for stores that accept a clock.
type Clock struct {
	T time.Time
}

// NewClock starts a clock at a fixed instant.
func NewClock() *Clock {
	return &Clock{T: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
