// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package models

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    string
	}{
		{"seven and a half hours", 27000, "7h 30m"},
		{"exact hours", 28800, "8h 0m"},
		{"under an hour", 1800, "0h 30m"},
		{"one minute", 60, "0h 1m"},
		{"seconds truncate", 3719, "1h 1m"},
		{"zero", 0, "0h 0m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestRoundHours(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    float64
	}{
		{"seven and a half hours", 27000, 7.5},
		{"five hours", 18000, 5.0},
		{"rounds to two decimals", 27010, 7.5},
		{"one minute", 60, 0.02},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RoundHours(tt.seconds); got != tt.want {
				t.Errorf("RoundHours(%d) = %v, want %v", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestSleepRecordCompleted(t *testing.T) {
	rec := SleepRecord{ID: 1, UserID: 1, GoToBedAt: time.Now()}
	if rec.Completed() {
		t.Error("record without wake_up_at should not be completed")
	}
	if rec.DurationSeconds() != 0 {
		t.Errorf("active record duration = %d, want 0", rec.DurationSeconds())
	}

	wake := rec.GoToBedAt.Add(8 * time.Hour)
	dur := int64(8 * 3600)
	rec.WakeUpAt = &wake
	rec.Duration = &dur

	if !rec.Completed() {
		t.Error("record with wake_up_at should be completed")
	}
	if got := rec.DurationHours(); got != 8.0 {
		t.Errorf("DurationHours() = %v, want 8.0", got)
	}
}
