// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

// Package middleware provides HTTP middleware shared across the API:
// request IDs for tracing and Prometheus request instrumentation.
package middleware

import (
	"net/http"

	"github.com/tomtom215/somnus/internal/logging"
)

// RequestID assigns every request a unique ID, honoring an inbound
// X-Request-ID from upstream proxies. The ID is echoed in the response
// header and stored in the context for request-scoped logging.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}

		w.Header().Set("X-Request-ID", requestID)
		ctx := logging.ContextWithRequestID(r.Context(), requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
