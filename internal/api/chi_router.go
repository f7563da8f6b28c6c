// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/somnus/internal/middleware"
)

// Router wires handlers and middleware into the HTTP surface.
type Router struct {
	handler *Handler
	chimw   *ChiMiddleware
}

// NewRouter creates a router for the given handler set.
func NewRouter(handler *Handler, chimw *ChiMiddleware) *Router {
	return &Router{handler: handler, chimw: chimw}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chimw.CORS()) // global so OPTIONS preflight is handled

	// Sleep tracking API. Paths are bare (no version prefix) to match the
	// original service's routes.
	r.Route("/users/{userId}", func(r chi.Router) {
		r.Use(router.chimw.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Post("/clock_in", router.handler.ClockIn)
		r.Patch("/clock_out", router.handler.ClockOut)
		r.Get("/sleep_records", router.handler.SleepRecords)
		r.Get("/friends_sleep_records", router.handler.FriendsSleepRecords)
		r.Get("/sleep_statistics", router.handler.SleepStatistics)
		r.Post("/follow/{followedUserId}", router.handler.Follow)
		r.Delete("/unfollow/{followedUserId}", router.handler.Unfollow)
	})

	// Operational endpoints.
	r.Get("/api/v1/health", router.handler.Health)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
