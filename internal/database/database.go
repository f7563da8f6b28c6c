// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

// Package database implements the SQLite record store for users, sleep
// records and follow edges, via database/sql and the modernc.org/sqlite
// driver (pure Go, no cgo).
//
// All timestamps are stored as unix seconds (UTC). The single-active-
// session invariant is enforced at the store by a partial unique index on
// sleep_records(user_id) WHERE wake_up_at IS NULL, so a racing second
// clock-in fails the insert instead of creating a second open session.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/tomtom215/somnus/internal/config"
	"github.com/tomtom215/somnus/internal/logging"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// DB wraps the SQL connection pool and owns schema management.
type DB struct {
	conn *sql.DB
	cfg  config.DatabaseConfig
}

// New opens (or creates) the SQLite database at cfg.Path and applies the
// schema. Use Path ":memory:" for tests.
func New(cfg config.DatabaseConfig) (*DB, error) {
	conn, err := sql.Open("sqlite", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// In-memory databases exist per connection; cap the pool at one so
	// every query sees the same database.
	if cfg.Path == ":memory:" {
		conn.SetMaxOpenConns(1)
	} else {
		conn.SetMaxOpenConns(4)
		conn.SetMaxIdleConns(4)
	}

	db := &DB{conn: conn, cfg: cfg}

	if err := db.initSchema(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Msg("Database opened")

	return db, nil
}

// dsn builds the driver DSN with pragmas applied per connection.
func dsn(cfg config.DatabaseConfig) string {
	busyMS := cfg.BusyTimeout.Milliseconds()
	if busyMS <= 0 {
		busyMS = 5000
	}
	if cfg.Path == ":memory:" {
		return fmt.Sprintf(":memory:?_pragma=busy_timeout(%d)&_pragma=foreign_keys(1)", busyMS)
	}
	return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)",
		cfg.Path, busyMS)
}

// schema is idempotent; every statement is IF NOT EXISTS.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		name       TEXT NOT NULL,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sleep_records (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id      INTEGER NOT NULL REFERENCES users(id),
		go_to_bed_at INTEGER NOT NULL,
		wake_up_at   INTEGER,
		duration     INTEGER,
		created_at   INTEGER NOT NULL,
		updated_at   INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sleep_records_user_created
		ON sleep_records(user_id, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_sleep_records_user_bed_duration
		ON sleep_records(user_id, go_to_bed_at, duration)`,
	// One open session per user, enforced by the store itself.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_sleep_records_one_active
		ON sleep_records(user_id) WHERE wake_up_at IS NULL`,
	`CREATE TABLE IF NOT EXISTS user_followings (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		follower_id INTEGER NOT NULL REFERENCES users(id),
		followed_id INTEGER NOT NULL REFERENCES users(id),
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL,
		UNIQUE(follower_id, followed_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_user_followings_follower
		ON user_followings(follower_id)`,
	`CREATE INDEX IF NOT EXISTS idx_user_followings_followed
		ON user_followings(followed_id)`,
}

func (db *DB) initSchema(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.conn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// IsUniqueViolation reports whether err is a SQLite unique constraint
// failure. The driver has no exported error codes for this, so match on
// the stable constraint message.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// unixNow returns the current time truncated to whole seconds, UTC.
func unixNow() time.Time {
	return time.Unix(time.Now().Unix(), 0).UTC()
}
