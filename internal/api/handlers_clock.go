// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/somnus/internal/clock"
	"github.com/tomtom215/somnus/internal/database"
	"github.com/tomtom215/somnus/internal/metrics"
	"github.com/tomtom215/somnus/internal/models"
)

// ClockIn handles POST /users/{userId}/clock_in. Opens a sleep session,
// optionally at a client-supplied bedtime.
func (h *Handler) ClockIn(w http.ResponseWriter, r *http.Request) {
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

	params := clockParams(r)
	rec, err := h.clock.ClockIn(r.Context(), userID, params.GoToBedAt)
	if err != nil {
		h.respondClockInError(w, r, err)
		return
	}

	metrics.RecordClockOperation("clock_in", "success")
	respondJSON(w, http.StatusCreated, models.ClockInResponse{
		Message: "Clock in successful",
		SleepRecord: models.ClockInRecord{
			ID:        rec.ID,
			UserID:    rec.UserID,
			GoToBedAt: rec.GoToBedAt,
			WakeUpAt:  rec.WakeUpAt,
			Duration:  rec.Duration,
			CreatedAt: rec.CreatedAt,
		},
	})
}

func (h *Handler) respondClockInError(w http.ResponseWriter, r *http.Request, err error) {
	var conflict *clock.ConflictError
	var parseErr *clock.ParseError
	var bedErr *clock.BedTimeError
	var saveErr *clock.SaveError

	switch {
	case errors.As(err, &conflict):
		metrics.RecordClockOperation("clock_in", "conflict")
		respondError(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Error: "User already has an active sleep session",
			ActiveSession: &models.ActiveSessionInfo{
				ID:        conflict.SessionID,
				GoToBedAt: conflict.GoToBedAt,
			},
		})
	case errors.As(err, &parseErr):
		metrics.RecordClockOperation("clock_in", "validation_error")
		respondError(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid timestamp format",
			Message: "Please use ISO 8601 format (e.g., " + parseErr.Example + ")",
		})
	case errors.As(err, &bedErr):
		metrics.RecordClockOperation("clock_in", "validation_error")
		respondError(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid bedtime",
			Message: bedErr.Message,
		})
	case errors.As(err, &saveErr):
		metrics.RecordClockOperation("clock_in", "error")
		respondError(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "Failed to clock in",
			Details: saveErr.Details,
		})
	default:
		metrics.RecordClockOperation("clock_in", "error")
		respondInternalError(w, r, err)
	}
}

// ClockOut handles PATCH /users/{userId}/clock_out. Completes the open
// sleep session, optionally at a client-supplied wake time.
func (h *Handler) ClockOut(w http.ResponseWriter, r *http.Request) {
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

	params := clockParams(r)
	rec, err := h.clock.ClockOut(r.Context(), userID, params.WakeUpAt)
	if err != nil {
		h.respondClockOutError(w, r, err)
		return
	}

	metrics.RecordClockOperation("clock_out", "success")
	respondJSON(w, http.StatusOK, models.ClockOutResponse{
		Message: "Clock out successful - woke up!",
		SleepRecord: models.ClockOutRecord{
			ID:            rec.ID,
			UserID:        rec.UserID,
			GoToBedAt:     rec.GoToBedAt,
			WakeUpAt:      rec.WakeUpAt,
			Duration:      rec.Duration,
			DurationHours: rec.DurationHours(),
			CreatedAt:     rec.CreatedAt,
			UpdatedAt:     rec.UpdatedAt,
		},
	})
}

func (h *Handler) respondClockOutError(w http.ResponseWriter, r *http.Request, err error) {
	var parseErr *clock.ParseError
	var wakeErr *clock.WakeTimeError
	var saveErr *clock.SaveError

	switch {
	case errors.Is(err, clock.ErrNoActiveSession):
		metrics.RecordClockOperation("clock_out", "conflict")
		respondError(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "No active sleep session found",
			Message: "User needs to clock in first",
		})
	case errors.As(err, &parseErr):
		metrics.RecordClockOperation("clock_out", "validation_error")
		respondError(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid timestamp format",
			Message: "Please use ISO 8601 format (e.g., " + parseErr.Example + ")",
		})
	case errors.As(err, &wakeErr):
		metrics.RecordClockOperation("clock_out", "validation_error")
		respondError(w, http.StatusBadRequest, models.ErrorResponse{
			Error:   "Invalid wake up time",
			Message: wakeErr.Message,
		})
	case errors.As(err, &saveErr):
		metrics.RecordClockOperation("clock_out", "error")
		respondError(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "Failed to clock out",
			Details: saveErr.Details,
		})
	default:
		metrics.RecordClockOperation("clock_out", "error")
		respondInternalError(w, r, err)
	}
}
