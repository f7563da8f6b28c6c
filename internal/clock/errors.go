// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package clock

import (
	"errors"
	"time"
)

// ErrNoActiveSession is returned by ClockOut when the user has no open
// session to complete.
var ErrNoActiveSession = errors.New("no active sleep session found")

// ConflictError is returned by ClockIn when the user already has an open
// session. It carries the conflicting session for the error payload.
type ConflictError struct {
	SessionID int64
	GoToBedAt time.Time
}

func (e *ConflictError) Error() string {
	return "user already has an active sleep session"
}

// ParseError is returned when a supplied timestamp is not ISO 8601.
// Example is echoed in the client-facing message.
type ParseError struct {
	Example string
}

func (e *ParseError) Error() string {
	return "invalid timestamp format"
}

// BedTimeError rejects an out-of-range bedtime (future, or older than 30
// days).
type BedTimeError struct {
	Message string
}

func (e *BedTimeError) Error() string {
	return e.Message
}

// WakeTimeError rejects an invalid wake time (future, not after bedtime,
// or yielding an out-of-range duration).
type WakeTimeError struct {
	Message string
}

func (e *WakeTimeError) Error() string {
	return e.Message
}

// SaveError wraps a store failure during clock in/out. Details feed the
// error payload's details list.
type SaveError struct {
	Details []string
	Err     error
}

func (e *SaveError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return "failed to save sleep record"
}

func (e *SaveError) Unwrap() error {
	return e.Err
}
