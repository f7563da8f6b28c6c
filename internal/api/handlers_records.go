// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/tomtom215/somnus/internal/database"
	"github.com/tomtom215/somnus/internal/models"
	"github.com/tomtom215/somnus/internal/stats"
	"github.com/tomtom215/somnus/internal/validation"
)

// listRequest validates pagination parameters for record listings.
type listRequest struct {
	Page  int `validate:"min=1"`
	Limit int `validate:"min=1"`
}

// SleepRecords handles GET /users/{userId}/sleep_records. Cursor mode is
// selected by the presence of a cursor parameter; otherwise offset
// pagination applies.
func (h *Handler) SleepRecords(w http.ResponseWriter, r *http.Request) {
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

	page, limit := h.pageParams(r)
	if verr := validation.ValidateStruct(&listRequest{Page: page, Limit: limit}); verr != nil {
		respondError(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid parameters",
			Details: verr.Messages(),
		})
		return
	}

	if rawCursor := r.URL.Query().Get("cursor"); rawCursor != "" {
		cursor, err := strconv.ParseInt(rawCursor, 10, 64)
		if err != nil {
			respondError(w, http.StatusBadRequest, models.ErrorResponse{
				Error:   "Invalid parameters",
				Details: []string{"cursor must be an integer"},
			})
			return
		}
		h.sleepRecordsByCursor(w, r, userID, cursor, limit)
		return
	}

	h.sleepRecordsByPage(w, r, userID, page, limit)
}

func (h *Handler) sleepRecordsByCursor(w http.ResponseWriter, r *http.Request, userID, cursor int64, limit int) {
	records, hasMore, err := h.db.SleepRecordsByCursor(r.Context(), userID, &cursor, limit)
	if err != nil {
		respondInternalError(w, r, err)
		return
	}

	// The next cursor points at the last returned record, even on the
	// final page. Clients stop on has_more.
	var nextCursor *int64
	if len(records) > 0 {
		last := records[len(records)-1].ID
		nextCursor = &last
	}
	if records == nil {
		records = []models.SleepRecord{}
	}

	respondJSON(w, http.StatusOK, models.SleepRecordsCursorResponse{
		SleepRecords: records,
		Pagination: models.CursorPagination{
			Type:       "cursor",
			HasMore:    hasMore,
			NextCursor: nextCursor,
			Limit:      limit,
		},
	})
}

func (h *Handler) sleepRecordsByPage(w http.ResponseWriter, r *http.Request, userID int64, page, limit int) {
	records, total, err := h.db.SleepRecordsByPage(r.Context(), userID, page, limit)
	if err != nil {
		respondInternalError(w, r, err)
		return
	}
	if records == nil {
		records = []models.SleepRecord{}
	}

	respondJSON(w, http.StatusOK, models.SleepRecordsPageResponse{
		SleepRecords: records,
		Pagination: models.OffsetPagination{
			Type:        "traditional",
			CurrentPage: page,
			TotalPages:  totalPages(total, limit),
			TotalCount:  total,
			PerPage:     limit,
		},
	})
}

// FriendsSleepRecords handles GET /users/{userId}/friends_sleep_records.
// Lists completed sessions from followed users during the previous
// calendar week, longest sleep first.
func (h *Handler) FriendsSleepRecords(w http.ResponseWriter, r *http.Request) {
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

	followingIDs, err := h.followingIDsWithCache(r.Context(), userID)
	if err != nil {
		respondInternalError(w, r, err)
		return
	}

	weekStart, weekEnd := stats.PreviousWeek(h.now())
	weekRange := models.WeekRange{
		StartDate: weekStart.Format("2006-01-02"),
		EndDate:   weekEnd.Format("2006-01-02"),
	}

	page, limit := h.pageParams(r)
	if verr := validation.ValidateStruct(&listRequest{Page: page, Limit: limit}); verr != nil {
		respondError(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid parameters",
			Details: verr.Messages(),
		})
		return
	}

	if len(followingIDs) == 0 {
		respondJSON(w, http.StatusOK, models.FriendsSleepRecordsResponse{
			Message:             "User is not following anyone",
			FriendsSleepRecords: []models.FriendSleepRecord{},
			WeekRange:           weekRange,
			Pagination: models.OffsetPagination{
				CurrentPage: 1,
				TotalPages:  0,
				TotalCount:  0,
				PerPage:     limit,
			},
		})
		return
	}

	rows, total, err := h.db.FriendsSleepRecords(r.Context(), followingIDs, weekStart, weekEnd, page, limit)
	if err != nil {
		respondInternalError(w, r, err)
		return
	}

	formatted := make([]models.FriendSleepRecord, 0, len(rows))
	for _, row := range rows {
		rec := row.Record
		formatted = append(formatted, models.FriendSleepRecord{
			ID:                rec.ID,
			User:              models.UserRef{ID: rec.UserID, Name: row.UserName},
			GoToBedAt:         rec.GoToBedAt,
			WakeUpAt:          rec.WakeUpAt,
			Duration:          rec.DurationSeconds(),
			DurationHours:     rec.DurationHours(),
			DurationFormatted: models.FormatDuration(rec.DurationSeconds()),
			CreatedAt:         rec.CreatedAt,
		})
	}

	respondJSON(w, http.StatusOK, models.FriendsSleepRecordsResponse{
		Message:             "Sleep records from friends in the previous week",
		FriendsSleepRecords: formatted,
		WeekRange:           weekRange,
		Pagination: models.OffsetPagination{
			Type:        "traditional",
			CurrentPage: page,
			TotalPages:  totalPages(total, limit),
			TotalCount:  total,
			PerPage:     limit,
		},
		FollowingCount: len(followingIDs),
	})
}
