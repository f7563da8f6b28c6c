// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

// Package clock implements the sleep session state machine: clock in opens
// a session, clock out completes it. Every validation happens before any
// mutation, and the store's partial unique index backstops the
// single-active-session invariant under concurrent clock-ins.
package clock

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/somnus/internal/database"
	"github.com/tomtom215/somnus/internal/logging"
	"github.com/tomtom215/somnus/internal/models"
)

const (
	// maxBedTimeAge is how far in the past a supplied bedtime may lie.
	maxBedTimeAge = 30 * 24 * time.Hour

	// maxSleepDuration and minSleepDuration bound a supplied wake time.
	// A 24h duration is rejected; exactly 1 minute is accepted.
	maxSleepDuration = 24 * time.Hour
	minSleepDuration = time.Minute

	clockInExample  = "2025-09-13T22:30:00Z"
	clockOutExample = "2025-09-14T06:30:00Z"
)

// Store is the persistence capability the state machine needs.
type Store interface {
	ActiveSession(ctx context.Context, userID int64) (*models.SleepRecord, error)
	CreateSleepRecord(ctx context.Context, userID int64, goToBedAt time.Time) (*models.SleepRecord, error)
	CompleteSleepRecord(ctx context.Context, id int64, wakeUpAt time.Time, durationSeconds int64) (*models.SleepRecord, error)
}

// Service runs clock in/out transitions against a Store.
type Service struct {
	store Store
	now   func() time.Time
}

// NewService creates a clock service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// WithNow overrides the time source. Tests only.
func (s *Service) WithNow(now func() time.Time) *Service {
	s.now = now
	return s
}

// ClockIn opens a sleep session for the user. goToBedAt is the raw client
// value; empty means "now". Returns *ConflictError when a session is
// already open, *ParseError or *BedTimeError for bad input.
func (s *Service) ClockIn(ctx context.Context, userID int64, goToBedAt string) (*models.SleepRecord, error) {
	active, err := s.store.ActiveSession(ctx, userID)
	if err != nil && !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}
	if active != nil {
		return nil, &ConflictError{SessionID: active.ID, GoToBedAt: active.GoToBedAt}
	}

	now := s.now().Truncate(time.Second).UTC()
	bedTime := now
	if goToBedAt != "" {
		parsed, err := ParseTimestamp(goToBedAt)
		if err != nil {
			return nil, &ParseError{Example: clockInExample}
		}
		if parsed.After(now) {
			return nil, &BedTimeError{Message: "Bedtime cannot be in the future"}
		}
		if parsed.Before(now.Add(-maxBedTimeAge)) {
			return nil, &BedTimeError{Message: "Bedtime cannot be more than 30 days ago"}
		}
		bedTime = parsed
	}

	rec, err := s.store.CreateSleepRecord(ctx, userID, bedTime)
	if err != nil {
		// A racing clock-in hit the partial unique index first. Report
		// the winner's session as the conflict.
		if database.IsUniqueViolation(err) {
			if winner, aerr := s.store.ActiveSession(ctx, userID); aerr == nil {
				return nil, &ConflictError{SessionID: winner.ID, GoToBedAt: winner.GoToBedAt}
			}
			return nil, &ConflictError{}
		}
		return nil, &SaveError{Details: []string{"Could not save sleep record"}, Err: err}
	}

	logging.Info().
		Int64("user_id", userID).
		Int64("sleep_record_id", rec.ID).
		Time("go_to_bed_at", rec.GoToBedAt).
		Msg("Clock in")
	return rec, nil
}

// ClockOut completes the user's open session. wakeUpAt is the raw client
// value; empty means "now". Supplied values are validated against the
// session's bedtime; an omitted value is taken as-is, matching the
// upstream behavior.
func (s *Service) ClockOut(ctx context.Context, userID int64, wakeUpAt string) (*models.SleepRecord, error) {
	active, err := s.store.ActiveSession(ctx, userID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, ErrNoActiveSession
	}
	if err != nil {
		return nil, err
	}

	now := s.now().Truncate(time.Second).UTC()
	wakeTime := now
	if wakeUpAt != "" {
		parsed, err := ParseTimestamp(wakeUpAt)
		if err != nil {
			return nil, &ParseError{Example: clockOutExample}
		}
		if parsed.After(now) {
			return nil, &WakeTimeError{Message: "Wake up time cannot be in the future"}
		}
		if !parsed.After(active.GoToBedAt) {
			return nil, &WakeTimeError{
				Message: "Wake up time must be after bedtime (" + active.GoToBedAt.Format(time.RFC3339) + ")",
			}
		}
		duration := parsed.Sub(active.GoToBedAt)
		if duration >= maxSleepDuration {
			return nil, &WakeTimeError{Message: "Sleep duration cannot exceed 24 hours"}
		}
		if duration < minSleepDuration {
			return nil, &WakeTimeError{Message: "Sleep duration must be at least 1 minute"}
		}
		wakeTime = parsed
	}

	durationSeconds := wakeTime.Unix() - active.GoToBedAt.Unix()

	rec, err := s.store.CompleteSleepRecord(ctx, active.ID, wakeTime, durationSeconds)
	if err != nil {
		if errors.Is(err, database.ErrInvalidDuration) {
			return nil, &SaveError{Details: []string{"Duration must be greater than 0"}, Err: err}
		}
		// The session vanished between the check and the update; a
		// concurrent clock-out already completed it.
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNoActiveSession
		}
		return nil, &SaveError{Details: []string{"Could not save sleep record"}, Err: err}
	}

	logging.Info().
		Int64("user_id", userID).
		Int64("sleep_record_id", rec.ID).
		Int64("duration_seconds", durationSeconds).
		Msg("Clock out")
	return rec, nil
}
