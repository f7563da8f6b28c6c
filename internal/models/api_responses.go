// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package models

import "time"

// ErrorResponse is the uniform error payload. Message and Details are
// optional; ActiveSession is set only on clock-in conflicts.
type ErrorResponse struct {
	Error         string             `json:"error"`
	Message       string             `json:"message,omitempty"`
	Details       []string           `json:"details,omitempty"`
	ActiveSession *ActiveSessionInfo `json:"active_session,omitempty"`
}

// ActiveSessionInfo identifies the session blocking a clock-in.
type ActiveSessionInfo struct {
	ID        int64     `json:"id"`
	GoToBedAt time.Time `json:"go_to_bed_at"`
}

// ClockInRecord is the sleep record subset returned on clock-in.
// No updated_at on this path.
type ClockInRecord struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	GoToBedAt time.Time  `json:"go_to_bed_at"`
	WakeUpAt  *time.Time `json:"wake_up_at"`
	Duration  *int64     `json:"duration"`
	CreatedAt time.Time  `json:"created_at"`
}

// ClockInResponse is the 201 payload for a successful clock-in.
type ClockInResponse struct {
	Message     string        `json:"message"`
	SleepRecord ClockInRecord `json:"sleep_record"`
}

// ClockOutRecord is the completed record returned on clock-out, with the
// derived duration_hours field.
type ClockOutRecord struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	GoToBedAt     time.Time  `json:"go_to_bed_at"`
	WakeUpAt      *time.Time `json:"wake_up_at"`
	Duration      *int64     `json:"duration"`
	DurationHours float64    `json:"duration_hours"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// ClockOutResponse is the 200 payload for a successful clock-out.
type ClockOutResponse struct {
	Message     string         `json:"message"`
	SleepRecord ClockOutRecord `json:"sleep_record"`
}

// CursorPagination describes a cursor-paginated page. NextCursor is the
// id of the last returned record, nil when the page is empty.
type CursorPagination struct {
	Type       string `json:"type"`
	HasMore    bool   `json:"has_more"`
	NextCursor *int64 `json:"next_cursor"`
	Limit      int    `json:"limit"`
}

// OffsetPagination describes a page/limit-paginated page. Type is
// "traditional" where emitted; the empty friends listing omits it.
type OffsetPagination struct {
	Type        string `json:"type,omitempty"`
	CurrentPage int    `json:"current_page"`
	TotalPages  int    `json:"total_pages"`
	TotalCount  int    `json:"total_count"`
	PerPage     int    `json:"per_page"`
}

// SleepRecordsCursorResponse lists a user's records with cursor pagination.
type SleepRecordsCursorResponse struct {
	SleepRecords []SleepRecord    `json:"sleep_records"`
	Pagination   CursorPagination `json:"pagination"`
}

// SleepRecordsPageResponse lists a user's records with offset pagination.
type SleepRecordsPageResponse struct {
	SleepRecords []SleepRecord    `json:"sleep_records"`
	Pagination   OffsetPagination `json:"pagination"`
}

// FriendSleepRecord is a completed session from a followed user, with
// derived duration fields and the owner embedded.
type FriendSleepRecord struct {
	ID                int64      `json:"id"`
	User              UserRef    `json:"user"`
	GoToBedAt         time.Time  `json:"go_to_bed_at"`
	WakeUpAt          *time.Time `json:"wake_up_at"`
	Duration          int64      `json:"duration"`
	DurationHours     float64    `json:"duration_hours"`
	DurationFormatted string     `json:"duration_formatted"`
	CreatedAt         time.Time  `json:"created_at"`
}

// WeekRange is the previous-week window of the friends listing, dates only.
type WeekRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// FriendsSleepRecordsResponse is the friends feed payload. FollowingCount
// is omitted when the user follows no one.
type FriendsSleepRecordsResponse struct {
	Message             string              `json:"message"`
	FriendsSleepRecords []FriendSleepRecord `json:"friends_sleep_records"`
	WeekRange           WeekRange           `json:"week_range"`
	Pagination          OffsetPagination    `json:"pagination"`
	FollowingCount      int                 `json:"following_count,omitempty"`
}

// MessageResponse is a bare confirmation payload (follow, unfollow).
type MessageResponse struct {
	Message string `json:"message"`
}

// StatisticsResponse wraps a report with cache metadata. Cached reports
// marshal field-for-field identically to freshly computed ones.
type StatisticsResponse struct {
	*StatisticsReport
	Cached bool `json:"cached"`
}

// HealthResponse is the liveness payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	UptimeSec int64  `json:"uptime_seconds"`
	Database  string `json:"database"`
}
