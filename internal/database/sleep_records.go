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
	"strings"
	"time"

	"github.com/tomtom215/somnus/internal/metrics"
	"github.com/tomtom215/somnus/internal/models"
)

// ErrInvalidDuration is returned when completing a session with a
// non-positive duration.
var ErrInvalidDuration = errors.New("duration must be positive")

const sleepRecordColumns = `id, user_id, go_to_bed_at, wake_up_at, duration, created_at, updated_at`

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSleepRecord(s scanner) (*models.SleepRecord, error) {
	var r models.SleepRecord
	var bed, created, updated int64
	var wake, duration sql.NullInt64

	if err := s.Scan(&r.ID, &r.UserID, &bed, &wake, &duration, &created, &updated); err != nil {
		return nil, err
	}

	r.GoToBedAt = time.Unix(bed, 0).UTC()
	r.CreatedAt = time.Unix(created, 0).UTC()
	r.UpdatedAt = time.Unix(updated, 0).UTC()
	if wake.Valid {
		t := time.Unix(wake.Int64, 0).UTC()
		r.WakeUpAt = &t
	}
	if duration.Valid {
		d := duration.Int64
		r.Duration = &d
	}
	return &r, nil
}

// ActiveSession returns the user's open session (wake_up_at IS NULL), or
// ErrNotFound when there is none. The partial unique index guarantees at
// most one row matches.
func (db *DB) ActiveSession(ctx context.Context, userID int64) (*models.SleepRecord, error) {
	start := time.Now()

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+sleepRecordColumns+` FROM sleep_records
		 WHERE user_id = ? AND wake_up_at IS NULL`, userID)
	rec, err := scanSleepRecord(row)
	metrics.RecordDBQuery("select", "sleep_records", time.Since(start), err)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query active session for user %d: %w", userID, err)
	}
	return rec, nil
}

// CreateSleepRecord opens a new session. A unique index violation means
// the user already has an active session; callers detect it with
// IsUniqueViolation.
func (db *DB) CreateSleepRecord(ctx context.Context, userID int64, goToBedAt time.Time) (*models.SleepRecord, error) {
	start := time.Now()
	now := unixNow()
	bed := goToBedAt.Unix()

	res, err := db.conn.ExecContext(ctx,
		`INSERT INTO sleep_records (user_id, go_to_bed_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?)`,
		userID, bed, now.Unix(), now.Unix())
	metrics.RecordDBQuery("insert", "sleep_records", time.Since(start), err)
	if err != nil {
		return nil, err
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read sleep record id: %w", err)
	}

	return &models.SleepRecord{
		ID:        id,
		UserID:    userID,
		GoToBedAt: time.Unix(bed, 0).UTC(),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CompleteSleepRecord sets wake_up_at and duration on an open session.
// Returns ErrNotFound if the session no longer exists or is already
// completed, ErrInvalidDuration for non-positive durations.
func (db *DB) CompleteSleepRecord(ctx context.Context, id int64, wakeUpAt time.Time, durationSeconds int64) (*models.SleepRecord, error) {
	if durationSeconds <= 0 {
		return nil, ErrInvalidDuration
	}

	start := time.Now()
	now := unixNow()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE sleep_records
		 SET wake_up_at = ?, duration = ?, updated_at = ?
		 WHERE id = ? AND wake_up_at IS NULL`,
		wakeUpAt.Unix(), durationSeconds, now.Unix(), id)
	metrics.RecordDBQuery("update", "sleep_records", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to complete sleep record %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	row := db.conn.QueryRowContext(ctx,
		`SELECT `+sleepRecordColumns+` FROM sleep_records WHERE id = ?`, id)
	rec, err := scanSleepRecord(row)
	if err != nil {
		return nil, fmt.Errorf("failed to reload sleep record %d: %w", id, err)
	}
	return rec, nil
}

// SleepRecordsByCursor returns the user's records ordered created_at DESC,
// restricted to id < cursor when cursor is non-nil. Fetches limit+1 rows
// to compute hasMore without a count query.
func (db *DB) SleepRecordsByCursor(ctx context.Context, userID int64, cursor *int64, limit int) ([]models.SleepRecord, bool, error) {
	start := time.Now()

	query := `SELECT ` + sleepRecordColumns + ` FROM sleep_records WHERE user_id = ?`
	args := []interface{}{userID}
	if cursor != nil {
		query += ` AND id < ?`
		args = append(args, *cursor)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit+1)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "sleep_records", time.Since(start), err)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query sleep records for user %d: %w", userID, err)
	}
	defer rows.Close()

	records, err := collectSleepRecords(rows)
	if err != nil {
		return nil, false, err
	}

	hasMore := len(records) > limit
	if hasMore {
		records = records[:limit]
	}
	return records, hasMore, nil
}

// SleepRecordsByPage returns one page of the user's records ordered
// created_at DESC, plus the total count for page arithmetic.
func (db *DB) SleepRecordsByPage(ctx context.Context, userID int64, page, limit int) ([]models.SleepRecord, int, error) {
	start := time.Now()

	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sleep_records WHERE user_id = ?`, userID).Scan(&total)
	if err != nil {
		metrics.RecordDBQuery("select", "sleep_records", time.Since(start), err)
		return nil, 0, fmt.Errorf("failed to count sleep records for user %d: %w", userID, err)
	}

	offset := (page - 1) * limit
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+sleepRecordColumns+` FROM sleep_records
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`, userID, limit, offset)
	metrics.RecordDBQuery("select", "sleep_records", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query sleep records for user %d: %w", userID, err)
	}
	defer rows.Close()

	records, err := collectSleepRecords(rows)
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// CompletedSessionsInRange returns the user's completed sessions with
// go_to_bed_at inside [from, to], ordered by bedtime ascending. This is
// the statistics engine's input query.
func (db *DB) CompletedSessionsInRange(ctx context.Context, userID int64, from, to time.Time) ([]models.SleepRecord, error) {
	start := time.Now()

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+sleepRecordColumns+` FROM sleep_records
		 WHERE user_id = ? AND duration > 0 AND go_to_bed_at BETWEEN ? AND ?
		 ORDER BY go_to_bed_at ASC`,
		userID, from.Unix(), to.Unix())
	metrics.RecordDBQuery("select", "sleep_records", time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query completed sessions for user %d: %w", userID, err)
	}
	defer rows.Close()

	return collectSleepRecords(rows)
}

// FriendSleepRow pairs a completed record with its owner's name for the
// friends feed.
type FriendSleepRow struct {
	Record   models.SleepRecord
	UserName string
}

// FriendsSleepRecords returns completed sessions from the given users with
// go_to_bed_at inside [from, to], longest sleep first, offset paginated.
func (db *DB) FriendsSleepRecords(ctx context.Context, userIDs []int64, from, to time.Time, page, limit int) ([]FriendSleepRow, int, error) {
	if len(userIDs) == 0 {
		return nil, 0, nil
	}

	start := time.Now()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(userIDs)), ",")
	args := make([]interface{}, 0, len(userIDs)+4)
	for _, id := range userIDs {
		args = append(args, id)
	}
	args = append(args, from.Unix(), to.Unix())

	var total int
	countQuery := `SELECT COUNT(*) FROM sleep_records
		 WHERE user_id IN (` + placeholders + `)
		 AND duration > 0 AND go_to_bed_at BETWEEN ? AND ?`
	err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total)
	if err != nil {
		metrics.RecordDBQuery("select", "sleep_records", time.Since(start), err)
		return nil, 0, fmt.Errorf("failed to count friends sleep records: %w", err)
	}

	query := `SELECT sr.id, sr.user_id, sr.go_to_bed_at, sr.wake_up_at, sr.duration,
		 sr.created_at, sr.updated_at, u.name
		 FROM sleep_records sr
		 JOIN users u ON u.id = sr.user_id
		 WHERE sr.user_id IN (` + placeholders + `)
		 AND sr.duration > 0 AND sr.go_to_bed_at BETWEEN ? AND ?
		 ORDER BY sr.duration DESC, sr.id ASC
		 LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)

	rows, err := db.conn.QueryContext(ctx, query, args...)
	metrics.RecordDBQuery("select", "sleep_records", time.Since(start), err)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query friends sleep records: %w", err)
	}
	defer rows.Close()

	var out []FriendSleepRow
	for rows.Next() {
		var r models.SleepRecord
		var name string
		var bed, created, updated int64
		var wake, duration sql.NullInt64

		if err := rows.Scan(&r.ID, &r.UserID, &bed, &wake, &duration, &created, &updated, &name); err != nil {
			return nil, 0, fmt.Errorf("failed to scan friends sleep record: %w", err)
		}

		r.GoToBedAt = time.Unix(bed, 0).UTC()
		r.CreatedAt = time.Unix(created, 0).UTC()
		r.UpdatedAt = time.Unix(updated, 0).UTC()
		if wake.Valid {
			t := time.Unix(wake.Int64, 0).UTC()
			r.WakeUpAt = &t
		}
		if duration.Valid {
			d := duration.Int64
			r.Duration = &d
		}
		out = append(out, FriendSleepRow{Record: r, UserName: name})
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate friends sleep records: %w", err)
	}
	return out, total, nil
}

func collectSleepRecords(rows *sql.Rows) ([]models.SleepRecord, error) {
	var out []models.SleepRecord
	for rows.Next() {
		rec, err := scanSleepRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sleep record: %w", err)
		}
		out = append(out, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sleep records: %w", err)
	}
	return out, nil
}
