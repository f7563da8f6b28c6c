// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package clock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tomtom215/somnus/internal/database"
	"github.com/tomtom215/somnus/internal/models"
)

// fakeStore is an in-memory Store enforcing the one-active-session rule
// the same way the SQLite partial unique index does.
type fakeStore struct {
	mu      sync.Mutex
	nextID  int64
	records map[int64]*models.SleepRecord
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[int64]*models.SleepRecord)}
}

func (f *fakeStore) ActiveSession(_ context.Context, userID int64) (*models.SleepRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.UserID == userID && r.WakeUpAt == nil {
			cp := *r
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeStore) CreateSleepRecord(_ context.Context, userID int64, goToBedAt time.Time) (*models.SleepRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.UserID == userID && r.WakeUpAt == nil {
			return nil, errors.New("constraint failed: UNIQUE constraint failed: sleep_records.user_id")
		}
	}
	f.nextID++
	now := time.Now().UTC()
	rec := &models.SleepRecord{
		ID:        f.nextID,
		UserID:    userID,
		GoToBedAt: goToBedAt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	f.records[rec.ID] = rec
	cp := *rec
	return &cp, nil
}

func (f *fakeStore) CompleteSleepRecord(_ context.Context, id int64, wakeUpAt time.Time, durationSeconds int64) (*models.SleepRecord, error) {
	if durationSeconds <= 0 {
		return nil, database.ErrInvalidDuration
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok || rec.WakeUpAt != nil {
		return nil, database.ErrNotFound
	}
	rec.WakeUpAt = &wakeUpAt
	rec.Duration = &durationSeconds
	rec.UpdatedAt = time.Now().UTC()
	cp := *rec
	return &cp, nil
}

// fixed test clock: 2026-08-31 12:00:00 UTC
var testNow = time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

func newTestService(store Store) *Service {
	return NewService(store).WithNow(func() time.Time { return testNow })
}

func TestClockInDefaultsToNow(t *testing.T) {
	svc := newTestService(newFakeStore())

	rec, err := svc.ClockIn(context.Background(), 1, "")
	if err != nil {
		t.Fatalf("ClockIn failed: %v", err)
	}
	if !rec.GoToBedAt.Equal(testNow) {
		t.Errorf("go_to_bed_at = %v, want %v", rec.GoToBedAt, testNow)
	}
	if rec.Completed() {
		t.Error("new session should be active")
	}
}

func TestClockInConflict(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	first, err := svc.ClockIn(ctx, 1, "")
	if err != nil {
		t.Fatalf("first ClockIn failed: %v", err)
	}

	_, err = svc.ClockIn(ctx, 1, "")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("second ClockIn error = %v, want ConflictError", err)
	}
	if conflict.SessionID != first.ID {
		t.Errorf("conflict session id = %d, want %d", conflict.SessionID, first.ID)
	}
	if !conflict.GoToBedAt.Equal(first.GoToBedAt) {
		t.Errorf("conflict go_to_bed_at = %v, want %v", conflict.GoToBedAt, first.GoToBedAt)
	}
}

func TestClockInBedTimeValidation(t *testing.T) {
	tests := []struct {
		name      string
		goToBedAt string
		wantMsg   string
	}{
		{
			name:      "future bedtime rejected",
			goToBedAt: testNow.Add(time.Hour).Format(time.RFC3339),
			wantMsg:   "Bedtime cannot be in the future",
		},
		{
			name:      "31 days ago rejected",
			goToBedAt: testNow.AddDate(0, 0, -31).Format(time.RFC3339),
			wantMsg:   "Bedtime cannot be more than 30 days ago",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeStore())
			_, err := svc.ClockIn(context.Background(), 1, tt.goToBedAt)

			var bedErr *BedTimeError
			if !errors.As(err, &bedErr) {
				t.Fatalf("error = %v, want BedTimeError", err)
			}
			if bedErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", bedErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestClockInBedTimeBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		goToBedAt string
	}{
		{"bedtime equal to now accepted", testNow.Format(time.RFC3339)},
		{"exactly 30 days ago accepted", testNow.Add(-30 * 24 * time.Hour).Format(time.RFC3339)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeStore())
			if _, err := svc.ClockIn(context.Background(), 1, tt.goToBedAt); err != nil {
				t.Errorf("ClockIn(%q) failed: %v", tt.goToBedAt, err)
			}
		})
	}
}

func TestClockInInvalidTimestamp(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.ClockIn(context.Background(), 1, "not-a-timestamp")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
	if parseErr.Example != "2025-09-13T22:30:00Z" {
		t.Errorf("example = %q, want clock-in example", parseErr.Example)
	}
}

func TestClockOutNoActiveSession(t *testing.T) {
	svc := newTestService(newFakeStore())

	_, err := svc.ClockOut(context.Background(), 1, "")
	if !errors.Is(err, ErrNoActiveSession) {
		t.Errorf("error = %v, want ErrNoActiveSession", err)
	}
}

func TestClockOutCompletesSession(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	bed := testNow.Add(-8 * time.Hour)
	if _, err := svc.ClockIn(ctx, 1, bed.Format(time.RFC3339)); err != nil {
		t.Fatalf("ClockIn failed: %v", err)
	}

	rec, err := svc.ClockOut(ctx, 1, "")
	if err != nil {
		t.Fatalf("ClockOut failed: %v", err)
	}
	if !rec.Completed() {
		t.Fatal("session should be completed")
	}
	if rec.DurationSeconds() != int64(8*3600) {
		t.Errorf("duration = %d, want %d", rec.DurationSeconds(), 8*3600)
	}
	if !rec.WakeUpAt.Equal(testNow) {
		t.Errorf("wake_up_at = %v, want %v", rec.WakeUpAt, testNow)
	}
}

func TestClockOutWakeTimeValidation(t *testing.T) {
	bed := testNow.Add(-8 * time.Hour)

	tests := []struct {
		name     string
		wakeUpAt string
		wantMsg  string
	}{
		{
			name:     "future wake time rejected",
			wakeUpAt: testNow.Add(time.Hour).Format(time.RFC3339),
			wantMsg:  "Wake up time cannot be in the future",
		},
		{
			name:     "wake equal to bedtime rejected",
			wakeUpAt: bed.Format(time.RFC3339),
			wantMsg:  "Wake up time must be after bedtime (" + bed.Format(time.RFC3339) + ")",
		},
		{
			name:     "wake before bedtime rejected",
			wakeUpAt: bed.Add(-time.Hour).Format(time.RFC3339),
			wantMsg:  "Wake up time must be after bedtime (" + bed.Format(time.RFC3339) + ")",
		},
		{
			name:     "59 second sleep rejected",
			wakeUpAt: bed.Add(59 * time.Second).Format(time.RFC3339),
			wantMsg:  "Sleep duration must be at least 1 minute",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newFakeStore())
			ctx := context.Background()
			if _, err := svc.ClockIn(ctx, 1, bed.Format(time.RFC3339)); err != nil {
				t.Fatalf("ClockIn failed: %v", err)
			}

			_, err := svc.ClockOut(ctx, 1, tt.wakeUpAt)
			var wakeErr *WakeTimeError
			if !errors.As(err, &wakeErr) {
				t.Fatalf("error = %v, want WakeTimeError", err)
			}
			if wakeErr.Message != tt.wantMsg {
				t.Errorf("message = %q, want %q", wakeErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestClockOutDurationBoundaries(t *testing.T) {
	ctx := context.Background()

	// Exactly 24 hours is rejected.
	svc := newTestService(newFakeStore())
	bed := testNow.Add(-25 * time.Hour)
	if _, err := svc.ClockIn(ctx, 1, bed.Format(time.RFC3339)); err != nil {
		t.Fatalf("ClockIn failed: %v", err)
	}
	_, err := svc.ClockOut(ctx, 1, bed.Add(24*time.Hour).Format(time.RFC3339))
	var wakeErr *WakeTimeError
	if !errors.As(err, &wakeErr) || wakeErr.Message != "Sleep duration cannot exceed 24 hours" {
		t.Errorf("24h clock out error = %v, want 24h limit message", err)
	}

	// One second under 24 hours is accepted.
	if _, err := svc.ClockOut(ctx, 1, bed.Add(24*time.Hour-time.Second).Format(time.RFC3339)); err != nil {
		t.Errorf("23h59m59s clock out failed: %v", err)
	}

	// Exactly one minute is accepted.
	svc = newTestService(newFakeStore())
	bed = testNow.Add(-time.Hour)
	if _, err := svc.ClockIn(ctx, 1, bed.Format(time.RFC3339)); err != nil {
		t.Fatalf("ClockIn failed: %v", err)
	}
	rec, err := svc.ClockOut(ctx, 1, bed.Add(time.Minute).Format(time.RFC3339))
	if err != nil {
		t.Fatalf("60s clock out failed: %v", err)
	}
	if rec.DurationSeconds() != 60 {
		t.Errorf("duration = %d, want 60", rec.DurationSeconds())
	}
}

func TestClockOutInvalidTimestamp(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	if _, err := svc.ClockIn(ctx, 1, ""); err != nil {
		t.Fatalf("ClockIn failed: %v", err)
	}

	_, err := svc.ClockOut(ctx, 1, "yesterday evening")
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("error = %v, want ParseError", err)
	}
	if parseErr.Example != "2025-09-14T06:30:00Z" {
		t.Errorf("example = %q, want clock-out example", parseErr.Example)
	}
}

func TestConcurrentClockInSingleWinner(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store)
	ctx := context.Background()

	const attempts = 10
	var wg sync.WaitGroup
	results := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.ClockIn(ctx, 1, "")
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
			continue
		}
		var conflict *ConflictError
		if !errors.As(err, &conflict) {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if winners != 1 {
		t.Errorf("winners = %d, want exactly 1", winners)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr bool
	}{
		{
			name:  "rfc3339 utc",
			input: "2026-08-30T22:30:00Z",
			want:  time.Date(2026, 8, 30, 22, 30, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339 with offset",
			input: "2026-08-31T00:30:00+02:00",
			want:  time.Date(2026, 8, 30, 22, 30, 0, 0, time.UTC),
		},
		{
			name:  "no zone treated as utc",
			input: "2026-08-30T22:30:00",
			want:  time.Date(2026, 8, 30, 22, 30, 0, 0, time.UTC),
		},
		{
			name:  "date only",
			input: "2026-08-30",
			want:  time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		},
		{name: "garbage", input: "not a time", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTimestamp(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) failed: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
