// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/somnus/internal/metrics"
	"github.com/tomtom215/somnus/internal/models"
)

// Health handles GET /api/v1/health. Reports liveness plus database
// reachability; a failing ping degrades the payload but still returns 200
// so load balancers treat the process as alive.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	uptime := int64(time.Since(h.startTime).Seconds())
	metrics.AppUptime.Set(float64(uptime))

	dbStatus := "connected"
	status := "ok"
	if err := h.db.Ping(r.Context()); err != nil {
		dbStatus = "error"
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:    status,
		Version:   Version,
		UptimeSec: uptime,
		Database:  dbStatus,
	})
}
