// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package cache

import (
	"testing"
	"time"
)

func TestCacheSetGet(t *testing.T) {
	c := New(time.Minute)

	c.Set("key1", "value1")

	got, ok := c.Get("key1")
	if !ok {
		t.Fatal("expected cache hit for key1")
	}
	if got != "value1" {
		t.Errorf("Get(key1) = %v, want value1", got)
	}

	if _, ok := c.Get("missing"); ok {
		t.Error("expected cache miss for missing key")
	}
}

func TestCacheExpiration(t *testing.T) {
	c := New(time.Minute)

	c.SetWithTTL("short", "value", 10*time.Millisecond)

	if _, ok := c.Get("short"); !ok {
		t.Fatal("entry should be present before expiry")
	}

	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("short"); ok {
		t.Error("entry should have expired")
	}
}

func TestCacheDelete(t *testing.T) {
	c := New(time.Minute)

	c.Set("key", "value")
	c.Delete("key")

	if _, ok := c.Get("key"); ok {
		t.Error("deleted entry should not be returned")
	}

	// Deleting a missing key must not panic.
	c.Delete("never-existed")
}

func TestCacheClear(t *testing.T) {
	c := New(time.Minute)

	c.Set("a", 1)
	c.Set("b", 2)
	c.Clear()

	if _, ok := c.Get("a"); ok {
		t.Error("cleared entry a should not be returned")
	}
	if stats := c.GetStats(); stats.TotalKeys != 0 {
		t.Errorf("TotalKeys after Clear = %d, want 0", stats.TotalKeys)
	}
}

func TestCacheStats(t *testing.T) {
	c := New(time.Minute)

	c.Set("key", "value")
	c.Get("key")
	c.Get("key")
	c.Get("missing")

	stats := c.GetStats()
	if stats.Hits != 2 {
		t.Errorf("Hits = %d, want 2", stats.Hits)
	}
	if stats.Misses != 1 {
		t.Errorf("Misses = %d, want 1", stats.Misses)
	}

	want := float64(2) / float64(3) * 100.0
	if got := c.HitRate(); got != want {
		t.Errorf("HitRate() = %v, want %v", got, want)
	}
}

func TestKeyBuilders(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"user", UserKey(42), "user:42"},
		{"following ids", FollowingIDsKey(42), "user:42:following_ids"},
		{"stats", StatsKey(42, 30), "stats:42:30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}
