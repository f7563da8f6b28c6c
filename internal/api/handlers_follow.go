// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/somnus/internal/cache"
	"github.com/tomtom215/somnus/internal/database"
	"github.com/tomtom215/somnus/internal/logging"
	"github.com/tomtom215/somnus/internal/models"
)

// resolveFollowPair loads both users of a follow operation, writing the
// appropriate 404 when either is missing. Returns false when a response
// was already written.
func (h *Handler) resolveFollowPair(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	followerID, ok := urlParamInt64(r, "userId")
	if !ok {
		respondError(w, http.StatusNotFound, models.ErrorResponse{Error: "Follower user not found"})
		return 0, 0, false
	}
	followedID, ok := urlParamInt64(r, "followedUserId")
	if !ok {
		respondError(w, http.StatusNotFound, models.ErrorResponse{Error: "User to follow not found"})
		return 0, 0, false
	}

	if _, err := h.userWithCache(r.Context(), followerID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, models.ErrorResponse{Error: "Follower user not found"})
			return 0, 0, false
		}
		respondInternalError(w, r, err)
		return 0, 0, false
	}
	if _, err := h.userWithCache(r.Context(), followedID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondError(w, http.StatusNotFound, models.ErrorResponse{Error: "User to follow not found"})
			return 0, 0, false
		}
		respondInternalError(w, r, err)
		return 0, 0, false
	}
	return followerID, followedID, true
}

// Follow handles POST /users/{userId}/follow/{followedUserId}.
func (h *Handler) Follow(w http.ResponseWriter, r *http.Request) {
	followerID, followedID, ok := h.resolveFollowPair(w, r)
	if !ok {
		return
	}

	if followerID == followedID {
		respondError(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Error: "You cannot follow yourself",
		})
		return
	}

	exists, err := h.db.FollowingExists(r.Context(), followerID, followedID)
	if err != nil {
		respondInternalError(w, r, err)
		return
	}
	if exists {
		respondJSON(w, http.StatusOK, models.MessageResponse{Message: "Already following this user"})
		return
	}

	if err := h.db.CreateFollowing(r.Context(), followerID, followedID); err != nil {
		// A concurrent follow won the unique constraint race.
		if database.IsUniqueViolation(err) {
			respondJSON(w, http.StatusOK, models.MessageResponse{Message: "Already following this user"})
			return
		}
		respondError(w, http.StatusUnprocessableEntity, models.ErrorResponse{
			Error:   "Failed to follow user",
			Details: []string{"Could not save following relationship"},
		})
		return
	}

	h.cache.Delete(cache.FollowingIDsKey(followerID))
	logging.Info().
		Int64("follower_id", followerID).
		Int64("followed_id", followedID).
		Msg("Follow")

	respondJSON(w, http.StatusCreated, models.MessageResponse{Message: "Successfully followed user"})
}

// Unfollow handles DELETE /users/{userId}/unfollow/{followedUserId}.
func (h *Handler) Unfollow(w http.ResponseWriter, r *http.Request) {
	followerID, followedID, ok := h.resolveFollowPair(w, r)
	if !ok {
		return
	}

	deleted, err := h.db.DeleteFollowing(r.Context(), followerID, followedID)
	if err != nil {
		respondInternalError(w, r, err)
		return
	}
	if !deleted {
		respondError(w, http.StatusNotFound, models.ErrorResponse{
			Error: "You are not following this user",
		})
		return
	}

	h.cache.Delete(cache.FollowingIDsKey(followerID))
	logging.Info().
		Int64("follower_id", followerID).
		Int64("followed_id", followedID).
		Msg("Unfollow")

	respondJSON(w, http.StatusOK, models.MessageResponse{Message: "Successfully unfollowed user"})
}
