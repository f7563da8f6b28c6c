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
)

// FollowingIDs returns the ids of users the given user follows, oldest
// edge first. An empty slice means the user follows no one.
func (db *DB) FollowingIDs(ctx context.Context, followerID int64) ([]int64, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT followed_id FROM user_followings WHERE follower_id = ? ORDER BY id ASC`,
		followerID)
	metrics.RecordDBQuery("select", "user_followings", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query followings for user %d: %w", followerID, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan following id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate following ids: %w", err)
	}
	return ids, nil
}

// FollowingExists reports whether a follower -> followed edge exists.
func (db *DB) FollowingExists(ctx context.Context, followerID, followedID int64) (bool, error) {
	start := time.Now()

	var one int
	err := db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM user_followings WHERE follower_id = ? AND followed_id = ?`,
		followerID, followedID).Scan(&one)
	metrics.RecordDBQuery("select", "user_followings", time.Since(start), err)

	if err == nil {
		return true, nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return false, fmt.Errorf("failed to query following edge: %w", err)
}

// CreateFollowing inserts a follow edge. A unique violation means the edge
// already exists; callers detect it with IsUniqueViolation.
func (db *DB) CreateFollowing(ctx context.Context, followerID, followedID int64) error {
	start := time.Now()
	now := unixNow().Unix()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO user_followings (follower_id, followed_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`,
		followerID, followedID, now, now)
	metrics.RecordDBQuery("insert", "user_followings", time.Since(start), err)
	return err
}

// DeleteFollowing removes a follow edge. Returns false when no edge
// existed.
func (db *DB) DeleteFollowing(ctx context.Context, followerID, followedID int64) (bool, error) {
	start := time.Now()

	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM user_followings WHERE follower_id = ? AND followed_id = ?`,
		followerID, followedID)
	metrics.RecordDBQuery("delete", "user_followings", time.Since(start), err)
	if err != nil {
		return false, fmt.Errorf("failed to delete following edge: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected > 0, nil
}
