// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/somnus/internal/cache"
	"github.com/tomtom215/somnus/internal/database"
	"github.com/tomtom215/somnus/internal/metrics"
	"github.com/tomtom215/somnus/internal/models"
	"github.com/tomtom215/somnus/internal/stats"
	"github.com/tomtom215/somnus/internal/validation"
)

// statisticsRequest validates the statistics period parameter.
type statisticsRequest struct {
	PeriodDays int `validate:"gte=1,lte=365"`
}

// SleepStatistics handles GET /users/{userId}/sleep_statistics. Reports
// are cached for a few minutes; only the cached flag differs between a
// hit and a fresh computation.
func (h *Handler) SleepStatistics(w http.ResponseWriter, r *http.Request) {
	userID, ok := urlParamInt64(r, "userId")
	if !ok {
		respondError(w, http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
		return
	}

	if _, err := h.userWithCache(r.Context(), userID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, models.ErrorResponse{Error: "User not found"})
			return
		}
		respondInternalError(w, r, err)
		return
	}

	periodDays := queryInt(r, "period_days", 30)
	if verr := validation.ValidateStruct(&statisticsRequest{PeriodDays: periodDays}); verr != nil {
		respondError(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid parameters",
			Details: verr.Messages(),
		})
		return
	}

	key := cache.StatsKey(userID, periodDays)
	if v, ok := h.cache.Get(key); ok {
		if report, ok := v.(*models.StatisticsReport); ok {
			metrics.RecordCacheHit("stats")
			respondJSON(w, http.StatusOK, models.StatisticsResponse{
				StatisticsReport: report,
				Cached:           true,
			})
			return
		}
	}
	metrics.RecordCacheMiss("stats")

	now := h.now()
	windowStart, windowEnd := stats.Window(periodDays, now)
	records, err := h.db.CompletedSessionsInRange(r.Context(), userID, windowStart, windowEnd)
	if err != nil {
		respondInternalError(w, r, err)
		return
	}

	report := stats.Compute(userID, periodDays, records, now)
	h.cache.SetWithTTL(key, report, h.cfg.Cache.StatsTTL)

	respondJSON(w, http.StatusOK, models.StatisticsResponse{
		StatisticsReport: report,
		Cached:           false,
	})
}
