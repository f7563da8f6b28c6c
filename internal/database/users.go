// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/somnus/internal/metrics"
	"github.com/tomtom215/somnus/internal/models"
)

// GetUser fetches a user by id. Returns ErrNotFound if the user does not
// exist.
func (db *DB) GetUser(ctx context.Context, id int64) (*models.User, error) {
	start := time.Now()

	var u models.User
	var created, updated int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, created_at, updated_at FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Name, &created, &updated)
	metrics.RecordDBQuery("select", "users", time.Since(start), err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user %d: %w", id, err)
	}

	u.CreatedAt = time.Unix(created, 0).UTC()
	u.UpdatedAt = time.Unix(updated, 0).UTC()
	return &u, nil
}

// CreateUser inserts a user. Used by seeding and tests; the API has no
// user provisioning endpoints.
func (db *DB) CreateUser(ctx context.Context, name string) (*models.User, error) {
	start := time.Now()
	now := unixNow()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO users (name, created_at, updated_at) VALUES (?, ?, ?)`,
		name, now.Unix(), now.Unix())
	metrics.RecordDBQuery("insert", "users", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read user id: %w", err)
	}

	return &models.User{
		ID:        id,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
