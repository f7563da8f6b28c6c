// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/somnus/internal/config"
)

// setupTestDB creates an in-memory database with the schema applied.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(config.DatabaseConfig{
		Path:        ":memory:",
		BusyTimeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestGetUser(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	created, err := db.CreateUser(ctx, "Alice")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	got, err := db.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser failed: %v", err)
	}
	if got.Name != "Alice" {
		t.Errorf("user name = %q, want Alice", got.Name)
	}

	if _, err := db.GetUser(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetUser(9999) error = %v, want ErrNotFound", err)
	}
}

func TestActiveSessionLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user, err := db.CreateUser(ctx, "Alice")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, err := db.ActiveSession(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("ActiveSession before clock in = %v, want ErrNotFound", err)
	}

	bed := time.Now().UTC().Add(-8 * time.Hour).Truncate(time.Second)
	rec, err := db.CreateSleepRecord(ctx, user.ID, bed)
	if err != nil {
		t.Fatalf("CreateSleepRecord failed: %v", err)
	}
	if rec.Completed() {
		t.Error("new record should not be completed")
	}

	active, err := db.ActiveSession(ctx, user.ID)
	if err != nil {
		t.Fatalf("ActiveSession failed: %v", err)
	}
	if active.ID != rec.ID {
		t.Errorf("active session id = %d, want %d", active.ID, rec.ID)
	}
	if !active.GoToBedAt.Equal(bed) {
		t.Errorf("go_to_bed_at = %v, want %v", active.GoToBedAt, bed)
	}

	wake := bed.Add(8 * time.Hour)
	completed, err := db.CompleteSleepRecord(ctx, rec.ID, wake, int64(8*3600))
	if err != nil {
		t.Fatalf("CompleteSleepRecord failed: %v", err)
	}
	if !completed.Completed() {
		t.Error("completed record should report Completed")
	}
	if completed.DurationSeconds() != 8*3600 {
		t.Errorf("duration = %d, want %d", completed.DurationSeconds(), 8*3600)
	}

	if _, err := db.ActiveSession(ctx, user.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("ActiveSession after clock out = %v, want ErrNotFound", err)
	}
}

func TestSingleActiveSessionEnforced(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user, err := db.CreateUser(ctx, "Alice")
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	if _, err := db.CreateSleepRecord(ctx, user.ID, time.Now().UTC()); err != nil {
		t.Fatalf("first CreateSleepRecord failed: %v", err)
	}

	_, err = db.CreateSleepRecord(ctx, user.ID, time.Now().UTC())
	if err == nil {
		t.Fatal("second active session insert should fail")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("expected unique violation, got %v", err)
	}
}

func TestCompleteSleepRecordValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user, _ := db.CreateUser(ctx, "Alice")
	rec, err := db.CreateSleepRecord(ctx, user.ID, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("CreateSleepRecord failed: %v", err)
	}

	if _, err := db.CompleteSleepRecord(ctx, rec.ID, time.Now().UTC(), 0); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("zero duration error = %v, want ErrInvalidDuration", err)
	}

	if _, err := db.CompleteSleepRecord(ctx, 9999, time.Now().UTC(), 3600); !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown record error = %v, want ErrNotFound", err)
	}

	// Completing twice fails: the row no longer matches wake_up_at IS NULL.
	if _, err := db.CompleteSleepRecord(ctx, rec.ID, time.Now().UTC(), 3600); err != nil {
		t.Fatalf("first complete failed: %v", err)
	}
	if _, err := db.CompleteSleepRecord(ctx, rec.ID, time.Now().UTC(), 3600); !errors.Is(err, ErrNotFound) {
		t.Errorf("second complete error = %v, want ErrNotFound", err)
	}
}

// seedCompleted inserts a completed session and returns its id.
func seedCompleted(t *testing.T, db *DB, userID int64, bed time.Time, duration time.Duration) int64 {
	t.Helper()
	ctx := context.Background()

	rec, err := db.CreateSleepRecord(ctx, userID, bed)
	if err != nil {
		t.Fatalf("CreateSleepRecord failed: %v", err)
	}
	if _, err := db.CompleteSleepRecord(ctx, rec.ID, bed.Add(duration), int64(duration.Seconds())); err != nil {
		t.Fatalf("CompleteSleepRecord failed: %v", err)
	}
	return rec.ID
}

func TestSleepRecordsByCursor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user, _ := db.CreateUser(ctx, "Alice")
	base := time.Now().UTC().Add(-10 * 24 * time.Hour)
	var ids []int64
	for i := 0; i < 5; i++ {
		ids = append(ids, seedCompleted(t, db, user.ID, base.Add(time.Duration(i)*24*time.Hour), 8*time.Hour))
	}

	// First page, no cursor.
	records, hasMore, err := db.SleepRecordsByCursor(ctx, user.ID, nil, 2)
	if err != nil {
		t.Fatalf("SleepRecordsByCursor failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("page size = %d, want 2", len(records))
	}
	if !hasMore {
		t.Error("hasMore = false, want true")
	}

	// A cursor only admits records with strictly smaller ids.
	cursor := ids[2]
	records, _, err = db.SleepRecordsByCursor(ctx, user.ID, &cursor, 10)
	if err != nil {
		t.Fatalf("SleepRecordsByCursor with cursor failed: %v", err)
	}
	for _, rec := range records {
		if rec.ID >= cursor {
			t.Errorf("record id %d >= cursor %d", rec.ID, cursor)
		}
	}
	if len(records) != 2 {
		t.Errorf("records below cursor = %d, want 2", len(records))
	}

	// Exact page boundary: no extra row, hasMore false.
	records, hasMore, err = db.SleepRecordsByCursor(ctx, user.ID, nil, 5)
	if err != nil {
		t.Fatalf("SleepRecordsByCursor failed: %v", err)
	}
	if len(records) != 5 || hasMore {
		t.Errorf("got %d records, hasMore=%v; want 5, false", len(records), hasMore)
	}
}

func TestSleepRecordsByPage(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user, _ := db.CreateUser(ctx, "Alice")
	base := time.Now().UTC().Add(-10 * 24 * time.Hour)
	for i := 0; i < 5; i++ {
		seedCompleted(t, db, user.ID, base.Add(time.Duration(i)*24*time.Hour), 8*time.Hour)
	}

	records, total, err := db.SleepRecordsByPage(ctx, user.ID, 2, 2)
	if err != nil {
		t.Fatalf("SleepRecordsByPage failed: %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	if len(records) != 2 {
		t.Errorf("page size = %d, want 2", len(records))
	}

	// Past the end.
	records, total, err = db.SleepRecordsByPage(ctx, user.ID, 4, 2)
	if err != nil {
		t.Fatalf("SleepRecordsByPage failed: %v", err)
	}
	if len(records) != 0 || total != 5 {
		t.Errorf("got %d records, total %d; want 0, 5", len(records), total)
	}
}

func TestCompletedSessionsInRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	user, _ := db.CreateUser(ctx, "Alice")
	now := time.Now().UTC().Truncate(time.Second)

	inRange := seedCompleted(t, db, user.ID, now.Add(-48*time.Hour), 8*time.Hour)
	seedCompleted(t, db, user.ID, now.Add(-10*24*time.Hour), 7*time.Hour)
	// Active session must be excluded even inside the window.
	if _, err := db.CreateSleepRecord(ctx, user.ID, now.Add(-time.Hour)); err != nil {
		t.Fatalf("CreateSleepRecord failed: %v", err)
	}

	records, err := db.CompletedSessionsInRange(ctx, user.ID, now.Add(-72*time.Hour), now)
	if err != nil {
		t.Fatalf("CompletedSessionsInRange failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records in range = %d, want 1", len(records))
	}
	if records[0].ID != inRange {
		t.Errorf("record id = %d, want %d", records[0].ID, inRange)
	}
}

func TestFriendsSleepRecordsOrdering(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	bob, _ := db.CreateUser(ctx, "Bob")
	carol, _ := db.CreateUser(ctx, "Carol")

	weekStart := time.Date(2026, 8, 17, 0, 0, 0, 0, time.UTC)
	weekEnd := weekStart.AddDate(0, 0, 7).Add(-time.Second)

	seedCompleted(t, db, bob.ID, weekStart.Add(22*time.Hour), 6*time.Hour)
	seedCompleted(t, db, carol.ID, weekStart.Add(46*time.Hour), 9*time.Hour)
	// Outside the week window.
	seedCompleted(t, db, bob.ID, weekStart.AddDate(0, 0, 8), 10*time.Hour)

	rows, total, err := db.FriendsSleepRecords(ctx, []int64{bob.ID, carol.ID}, weekStart, weekEnd, 1, 10)
	if err != nil {
		t.Fatalf("FriendsSleepRecords failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}

	// Longest sleep first.
	if rows[0].UserName != "Carol" || rows[0].Record.DurationSeconds() != 9*3600 {
		t.Errorf("first row = %s/%d, want Carol/9h", rows[0].UserName, rows[0].Record.DurationSeconds())
	}
	if rows[1].UserName != "Bob" || rows[1].Record.DurationSeconds() != 6*3600 {
		t.Errorf("second row = %s/%d, want Bob/6h", rows[1].UserName, rows[1].Record.DurationSeconds())
	}
}

func TestFriendsSleepRecordsEmptyIDs(t *testing.T) {
	db := setupTestDB(t)

	rows, total, err := db.FriendsSleepRecords(context.Background(), nil, time.Now(), time.Now(), 1, 10)
	if err != nil {
		t.Fatalf("FriendsSleepRecords failed: %v", err)
	}
	if rows != nil || total != 0 {
		t.Errorf("got %v, %d; want nil, 0", rows, total)
	}
}

func TestFollowings(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	alice, _ := db.CreateUser(ctx, "Alice")
	bob, _ := db.CreateUser(ctx, "Bob")

	ids, err := db.FollowingIDs(ctx, alice.ID)
	if err != nil {
		t.Fatalf("FollowingIDs failed: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("following ids = %v, want empty", ids)
	}

	if err := db.CreateFollowing(ctx, alice.ID, bob.ID); err != nil {
		t.Fatalf("CreateFollowing failed: %v", err)
	}

	exists, err := db.FollowingExists(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("FollowingExists failed: %v", err)
	}
	if !exists {
		t.Error("edge should exist after CreateFollowing")
	}

	// Duplicate edge violates the unique constraint.
	if err := db.CreateFollowing(ctx, alice.ID, bob.ID); !IsUniqueViolation(err) {
		t.Errorf("duplicate edge error = %v, want unique violation", err)
	}

	ids, _ = db.FollowingIDs(ctx, alice.ID)
	if len(ids) != 1 || ids[0] != bob.ID {
		t.Errorf("following ids = %v, want [%d]", ids, bob.ID)
	}

	deleted, err := db.DeleteFollowing(ctx, alice.ID, bob.ID)
	if err != nil {
		t.Fatalf("DeleteFollowing failed: %v", err)
	}
	if !deleted {
		t.Error("DeleteFollowing should report the edge was removed")
	}

	deleted, _ = db.DeleteFollowing(ctx, alice.ID, bob.ID)
	if deleted {
		t.Error("deleting a missing edge should report false")
	}
}

func TestSeedMockData(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SeedMockData(ctx); err != nil {
		t.Fatalf("SeedMockData failed: %v", err)
	}

	user, err := db.GetUser(ctx, 1)
	if err != nil {
		t.Fatalf("seeded user missing: %v", err)
	}
	if user.Name == "" {
		t.Error("seeded user has empty name")
	}

	// Seeding twice must not duplicate data.
	if err := db.SeedMockData(ctx); err != nil {
		t.Fatalf("second SeedMockData failed: %v", err)
	}
	ids, err := db.FollowingIDs(ctx, 1)
	if err != nil {
		t.Fatalf("FollowingIDs failed: %v", err)
	}
	if len(ids) != 3 {
		t.Errorf("seeded following count = %d, want 3", len(ids))
	}
}
