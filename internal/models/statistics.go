// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package models

import "time"

// StatisticsReport is the full statistics payload for one user and period.
// When the period contains no completed sessions, Statistics is nil and
// Message explains why; PeriodRange and GeneratedAt are omitted.
type StatisticsReport struct {
	UserID      int64        `json:"user_id"`
	Period      string       `json:"period"`
	PeriodRange *PeriodRange `json:"period_range,omitempty"`
	Message     string       `json:"message,omitempty"`
	Statistics  *Statistics  `json:"statistics"`
	GeneratedAt *time.Time   `json:"generated_at,omitempty"`
}

// PeriodRange holds the analyzed date window, dates only.
type PeriodRange struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// Statistics groups the three analysis sections.
type Statistics struct {
	Overview         Overview         `json:"overview"`
	DurationAnalysis DurationAnalysis `json:"duration_analysis"`
	Patterns         Patterns         `json:"patterns"`
}

// Overview holds the headline aggregate scores.
type Overview struct {
	TotalRecords         int     `json:"total_records"`
	AverageDurationHours float64 `json:"average_duration_hours"`
	SleepQualityScore    float64 `json:"sleep_quality_score"`
	SleepDebtHours       float64 `json:"sleep_debt_hours"`
	ConsistencyScore     float64 `json:"consistency_score"`
}

// SleepExtreme describes the shortest or longest session in the period.
type SleepExtreme struct {
	DurationHours float64 `json:"duration_hours"`
	Date          string  `json:"date"`
	Formatted     string  `json:"formatted"`
}

// DurationDistribution counts sessions per fixed duration bucket.
// Bounds are half-open: a 7h session lands in 7_8h, not 6_7h.
type DurationDistribution struct {
	Under6h int `json:"under_6h"`
	From6h  int `json:"6_7h"`
	From7h  int `json:"7_8h"`
	From8h  int `json:"8_9h"`
	Over9h  int `json:"over_9h"`
}

// DurationAnalysis holds extremes and the duration histogram.
type DurationAnalysis struct {
	ShortestSleep        SleepExtreme         `json:"shortest_sleep"`
	LongestSleep         SleepExtreme         `json:"longest_sleep"`
	MostCommonRange      string               `json:"most_common_range"`
	DurationDistribution DurationDistribution `json:"duration_distribution"`
}

// Patterns holds time-of-day averages and consistency scores.
type Patterns struct {
	AverageBedtime      string  `json:"average_bedtime"`
	AverageWakeTime     string  `json:"average_wake_time"`
	BedtimeConsistency  float64 `json:"bedtime_consistency"`
	WakeTimeConsistency float64 `json:"wake_time_consistency"`
}
