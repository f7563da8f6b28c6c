// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

// Package models defines the domain types and API payload shapes for Somnus.
package models

import "time"

// User is an account that owns sleep records and follow edges.
// Provisioning is out of band; the API only reads users.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserRef is the compact user representation embedded in friend records.
type UserRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// UserFollowing is a directed follow edge: follower sees followed's
// entries in the friends feed. Unique per (follower, followed) pair.
type UserFollowing struct {
	ID         int64     `json:"id"`
	FollowerID int64     `json:"follower_id"`
	FollowedID int64     `json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`
}
