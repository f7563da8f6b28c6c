// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package models

import (
	"fmt"
	"math"
	"time"
)

// SleepRecord is one sleep session. An active session has WakeUpAt and
// Duration nil; completing the session sets both.
type SleepRecord struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	GoToBedAt time.Time  `json:"go_to_bed_at"`
	WakeUpAt  *time.Time `json:"wake_up_at"`
	Duration  *int64     `json:"duration"` // seconds, nil while active
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Completed reports whether the session has been clocked out.
func (r *SleepRecord) Completed() bool {
	return r.WakeUpAt != nil
}

// DurationSeconds returns the recorded duration, or 0 for active sessions.
func (r *SleepRecord) DurationSeconds() int64 {
	if r.Duration == nil {
		return 0
	}
	return *r.Duration
}

// DurationHours returns the duration in hours rounded to two decimals.
func (r *SleepRecord) DurationHours() float64 {
	return RoundHours(r.DurationSeconds())
}

// RoundHours converts seconds to hours rounded to two decimal places.
func RoundHours(seconds int64) float64 {
	return math.Round(float64(seconds)/3600.0*100) / 100
}

// FormatDuration renders seconds as "Xh Ym", e.g. 27000 -> "7h 30m".
func FormatDuration(seconds int64) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return fmt.Sprintf("%dh %dm", hours, minutes)
}
