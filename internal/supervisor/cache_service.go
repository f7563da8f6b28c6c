// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package supervisor

import (
	"context"
	"time"

	"github.com/tomtom215/somnus/internal/cache"
	"github.com/tomtom215/somnus/internal/logging"
	"github.com/tomtom215/somnus/internal/metrics"
)

// CacheReporterService periodically exports cache statistics to the
// Prometheus gauges and the debug log.
type CacheReporterService struct {
	cache    *cache.Cache
	interval time.Duration
}

// NewCacheReporterService creates a reporter for the given cache. A zero
// interval defaults to one minute.
func NewCacheReporterService(c *cache.Cache, interval time.Duration) *CacheReporterService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheReporterService{cache: c, interval: interval}
}

// Serve implements suture.Service.
func (s *CacheReporterService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			stats := s.cache.GetStats()
			metrics.CacheEntries.Set(float64(stats.TotalKeys))
			logging.Debug().
				Int64("keys", stats.TotalKeys).
				Int64("hits", stats.Hits).
				Int64("misses", stats.Misses).
				Int64("evictions", stats.Evictions).
				Float64("hit_rate", s.cache.HitRate()).
				Msg("Cache stats")
		}
	}
}

// String identifies the service in suture log events.
func (s *CacheReporterService) String() string {
	return "cache-reporter"
}
