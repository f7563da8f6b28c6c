// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

// Package api provides the HTTP layer: Chi routing, request handlers and
// the middleware factories wiring CORS and rate limiting.
package api

import (
	"context"
	"time"

	"github.com/tomtom215/somnus/internal/cache"
	"github.com/tomtom215/somnus/internal/clock"
	"github.com/tomtom215/somnus/internal/config"
	"github.com/tomtom215/somnus/internal/database"
	"github.com/tomtom215/somnus/internal/metrics"
	"github.com/tomtom215/somnus/internal/models"
)

// Version is the reported application version.
const Version = "1.0.0"

// Handler carries the dependencies shared by all HTTP handlers.
type Handler struct {
	db        *database.DB
	cache     *cache.Cache
	clock     *clock.Service
	cfg       *config.Config
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates the API handler set.
func NewHandler(db *database.DB, c *cache.Cache, clockSvc *clock.Service, cfg *config.Config) *Handler {
	return &Handler{
		db:        db,
		cache:     c,
		clock:     clockSvc,
		cfg:       cfg,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// userWithCache resolves a user through the read-through cache. The cache
// is advisory; a miss falls back to the store.
func (h *Handler) userWithCache(ctx context.Context, id int64) (*models.User, error) {
	key := cache.UserKey(id)
	if v, ok := h.cache.Get(key); ok {
		if u, ok := v.(*models.User); ok {
			metrics.RecordCacheHit("user")
			return u, nil
		}
	}
	metrics.RecordCacheMiss("user")

	u, err := h.db.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	h.cache.SetWithTTL(key, u, h.cfg.Cache.UserTTL)
	return u, nil
}

// followingIDsWithCache resolves the user's followed-user ids through the
// read-through cache.
func (h *Handler) followingIDsWithCache(ctx context.Context, userID int64) ([]int64, error) {
	key := cache.FollowingIDsKey(userID)
	if v, ok := h.cache.Get(key); ok {
		if ids, ok := v.([]int64); ok {
			metrics.RecordCacheHit("following")
			return ids, nil
		}
	}
	metrics.RecordCacheMiss("following")

	ids, err := h.db.FollowingIDs(ctx, userID)
	if err != nil {
		return nil, err
	}
	h.cache.SetWithTTL(key, ids, h.cfg.Cache.FollowingTTL)
	return ids, nil
}
