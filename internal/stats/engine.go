// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

// Package stats computes per-user sleep statistics over a trailing period.
// Compute is pure: it takes the already-fetched completed records and a
// reference time, so the caching layer above it can never change a score.
//
// Scoring model:
//   - consistency = max(100 - stddev(duration hours) * 20, 0), population
//     variance
//   - duration score = max(100 - |mean - 8h| * 15, 0)
//   - quality = duration score * 0.7 + consistency * 0.3
//   - time-of-day consistency = max(100 - stddev * 50, 0), where one hour
//     of standard deviation costs 50 points
//
// Time-of-day consistency has no midnight wrap-around correction: bedtimes
// of 23:30 and 00:30 average to noon. This matches the upstream scoring
// and is kept so historical scores stay comparable.
package stats

import (
	"fmt"
	"math"
	"time"

	"github.com/tomtom215/somnus/internal/models"
)

// optimalSleepHours is the duration the scoring model treats as ideal.
const optimalSleepHours = 8.0

// Window returns the analysis window for a trailing period: start of day
// periodDays ago through end of day today, in UTC.
func Window(periodDays int, now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	start := startOfDay(now.AddDate(0, 0, -periodDays))
	end := startOfDay(now).AddDate(0, 0, 1).Add(-time.Second)
	return start, end
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PreviousWeek returns the previous calendar week, Monday 00:00:00 through
// Sunday 23:59:59 UTC. This is the friends feed window.
func PreviousWeek(now time.Time) (time.Time, time.Time) {
	now = now.UTC()
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday belongs to the week that started last Monday
	}
	thisMonday := startOfDay(now).AddDate(0, 0, -(weekday - 1))
	start := thisMonday.AddDate(0, 0, -7)
	end := thisMonday.Add(-time.Second)
	return start, end
}

// Compute builds the statistics report for the given completed records.
// records must be completed sessions ordered by bedtime ascending, as
// returned by the store's period query.
func Compute(userID int64, periodDays int, records []models.SleepRecord, now time.Time) *models.StatisticsReport {
	period := fmt.Sprintf("last_%d_days", periodDays)

	if len(records) == 0 {
		return &models.StatisticsReport{
			UserID:  userID,
			Period:  period,
			Message: "No sleep records found for this period",
		}
	}

	start, end := Window(periodDays, now)

	total := len(records)
	durations := make([]float64, total)
	var totalSeconds int64
	for i, r := range records {
		durations[i] = float64(r.DurationSeconds()) / 3600.0
		totalSeconds += r.DurationSeconds()
	}
	meanHours := float64(totalSeconds) / float64(total) / 3600.0

	consistency := round1(math.Max(100-stdDev(durations)*20, 0))
	durationScore := math.Max(100-math.Abs(meanHours-optimalSleepHours)*15, 0)
	quality := round1(durationScore*0.7 + consistency*0.3)

	debtHours := round2(float64(totalSeconds-int64(optimalSleepHours*float64(total)*3600)) / 3600.0)

	shortest, longest := findExtremes(records)

	bedtimes := make([]float64, total)
	wakeTimes := make([]float64, total)
	for i, r := range records {
		bedtimes[i] = timeOfDay(r.GoToBedAt)
		wakeTimes[i] = timeOfDay(*r.WakeUpAt)
	}

	generatedAt := now.UTC().Truncate(time.Second)

	return &models.StatisticsReport{
		UserID: userID,
		Period: period,
		PeriodRange: &models.PeriodRange{
			StartDate: start.Format("2006-01-02"),
			// The upstream report prints the day before the window end.
			EndDate: end.AddDate(0, 0, -1).Format("2006-01-02"),
		},
		Statistics: &models.Statistics{
			Overview: models.Overview{
				TotalRecords:         total,
				AverageDurationHours: round2(meanHours),
				SleepQualityScore:    quality,
				SleepDebtHours:       debtHours,
				ConsistencyScore:     consistency,
			},
			DurationAnalysis: models.DurationAnalysis{
				ShortestSleep:        extreme(shortest),
				LongestSleep:         extreme(longest),
				MostCommonRange:      mostCommonRange(durations),
				DurationDistribution: distribution(durations),
			},
			Patterns: models.Patterns{
				AverageBedtime:      formatTimeOfDay(mean(bedtimes)),
				AverageWakeTime:     formatTimeOfDay(mean(wakeTimes)),
				BedtimeConsistency:  timeConsistency(bedtimes),
				WakeTimeConsistency: timeConsistency(wakeTimes),
			},
		},
		GeneratedAt: &generatedAt,
	}
}

// findExtremes returns the shortest and longest sessions. Ties keep the
// earliest shortest and the latest longest.
func findExtremes(records []models.SleepRecord) (models.SleepRecord, models.SleepRecord) {
	shortest, longest := records[0], records[0]
	for _, r := range records[1:] {
		if r.DurationSeconds() < shortest.DurationSeconds() {
			shortest = r
		}
		if r.DurationSeconds() >= longest.DurationSeconds() {
			longest = r
		}
	}
	return shortest, longest
}

func extreme(r models.SleepRecord) models.SleepExtreme {
	return models.SleepExtreme{
		DurationHours: r.DurationHours(),
		Date:          r.GoToBedAt.UTC().Format("2006-01-02"),
		Formatted:     models.FormatDuration(r.DurationSeconds()),
	}
}

// distribution buckets duration hours with half-open bounds: a 7h session
// lands in 7_8h, a 9h session in over_9h.
func distribution(durations []float64) models.DurationDistribution {
	var d models.DurationDistribution
	for _, h := range durations {
		switch {
		case h < 6:
			d.Under6h++
		case h < 7:
			d.From6h++
		case h < 8:
			d.From7h++
		case h < 9:
			d.From8h++
		default:
			d.Over9h++
		}
	}
	return d
}

// bucketLabels follow the upstream humanized names, in bucket order.
var bucketLabels = []string{"Under 6h", "6 7h", "7 8h", "8 9h", "Over 9h"}

// mostCommonRange returns the label of the fullest bucket. Ties go to the
// lower bucket.
func mostCommonRange(durations []float64) string {
	d := distribution(durations)
	counts := []int{d.Under6h, d.From6h, d.From7h, d.From8h, d.Over9h}

	best := 0
	for i, c := range counts {
		if c > counts[best] {
			best = i
		}
	}
	return bucketLabels[best]
}

// timeOfDay converts a timestamp to decimal hours, minute precision.
func timeOfDay(t time.Time) float64 {
	t = t.UTC()
	return float64(t.Hour()) + float64(t.Minute())/60.0
}

// formatTimeOfDay renders decimal hours as "HH:MM", truncating.
func formatTimeOfDay(hourDecimal float64) string {
	hour := int(hourDecimal)
	minute := int((hourDecimal - float64(hour)) * 60)
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// timeConsistency scores how tightly clustered times of day are. A single
// sample is perfectly consistent.
func timeConsistency(times []float64) float64 {
	if len(times) <= 1 {
		return 100
	}
	return round1(math.Max(100-stdDev(times)*50, 0))
}

// stdDev is the population standard deviation.
func stdDev(values []float64) float64 {
	m := mean(values)
	var sum float64
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
