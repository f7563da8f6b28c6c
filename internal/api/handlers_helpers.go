// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/somnus/internal/logging"
	"github.com/tomtom215/somnus/internal/models"
)

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Err(err).Msg("Failed to encode response")
	}
}

// respondError writes the uniform error payload.
func respondError(w http.ResponseWriter, status int, resp models.ErrorResponse) {
	respondJSON(w, status, resp)
}

// respondInternalError logs the cause and writes a generic 500.
func respondInternalError(w http.ResponseWriter, r *http.Request, err error) {
	logging.Err(err).
		Str("request_id", logging.RequestIDFromContext(r.Context())).
		Str("path", r.URL.Path).
		Msg("Request failed")
	respondError(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
}

// urlParamInt64 parses a numeric chi URL parameter.
func urlParamInt64(r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || v < 1 {
		return 0, false
	}
	return v, true
}

// queryInt reads an integer query parameter with a default. Unparseable
// values fall back to the default, matching the upstream's to_i leniency
// for page and limit.
func queryInt(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

// pageParams extracts page and limit, applying defaults and the
// configured page size cap.
func (h *Handler) pageParams(r *http.Request) (int, int) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", h.cfg.API.DefaultPageSize)
	if limit > h.cfg.API.MaxPageSize {
		limit = h.cfg.API.MaxPageSize
	}
	return page, limit
}

// totalPages computes ceil(total / limit).
func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// clockRequest is the optional JSON body of clock in/out requests.
type clockRequest struct {
	GoToBedAt string `json:"go_to_bed_at"`
	WakeUpAt  string `json:"wake_up_at"`
}

// clockParams reads the clock timestamp parameters from the JSON body,
// falling back to query parameters. Both forms are accepted, matching the
// upstream's merged params.
func clockParams(r *http.Request) clockRequest {
	var req clockRequest
	if r.Body != nil {
		// Decode errors (empty body, malformed JSON) just mean the
		// client used query parameters instead.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.GoToBedAt == "" {
		req.GoToBedAt = r.URL.Query().Get("go_to_bed_at")
	}
	if req.WakeUpAt == "" {
		req.WakeUpAt = r.URL.Query().Get("wake_up_at")
	}
	return req
}
