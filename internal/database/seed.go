// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/tomtom215/somnus/internal/logging"
)

// SeedMockData inserts demo users, completed sleep records over the last
// two weeks and a small follow graph. Development only; no-op when users
// already exist.
func (db *DB) SeedMockData(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		logging.Debug().Int("users", count).Msg("Skipping mock data seed, users exist")
		return nil
	}

	names := []string{"Alice", "Bob", "Carol", "Dave"}
	users := make([]int64, 0, len(names))
	for _, name := range names {
		u, err := db.CreateUser(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to seed user %s: %w", name, err)
		}
		users = append(users, u.ID)
	}

	// Two weeks of completed sessions per user, bedtimes around 23:00,
	// durations varying between 6 and 9 hours.
	now := time.Now().UTC()
	for i, userID := range users {
		for day := 1; day <= 14; day++ {
			bed := now.AddDate(0, 0, -day).Truncate(24 * time.Hour).
				Add(23 * time.Hour).Add(time.Duration(i*17+day*11) * time.Minute)
			durationHours := 6 + (i+day)%4
			wake := bed.Add(time.Duration(durationHours) * time.Hour)

			rec, err := db.CreateSleepRecord(ctx, userID, bed)
			if err != nil {
				return fmt.Errorf("failed to seed sleep record: %w", err)
			}
			if _, err := db.CompleteSleepRecord(ctx, rec.ID, wake, int64(durationHours)*3600); err != nil {
				return fmt.Errorf("failed to complete seeded record: %w", err)
			}
		}
	}

	// Alice follows everyone; Bob and Carol follow Alice.
	edges := [][2]int64{
		{users[0], users[1]},
		{users[0], users[2]},
		{users[0], users[3]},
		{users[1], users[0]},
		{users[2], users[0]},
	}
	for _, e := range edges {
		if err := db.CreateFollowing(ctx, e[0], e[1]); err != nil {
			return fmt.Errorf("failed to seed following edge: %w", err)
		}
	}

	logging.Info().
		Int("users", len(users)).
		Msg("Seeded mock data")
	return nil
}
