package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/friendpost/backend/internal/friends"
	"github.com/friendpost/backend/internal/ids"
	"github.com/friendpost/backend/internal/logging"
)

// FriendHandler exposes the friend graph transitions. Every route is behind
// the session guard.
type FriendHandler struct {
	Engine FriendGraphEngine
}

type friendActionRequest struct {
	UID         string `json:"uid"`
	FriendID    string `json:"friendID"`
	RequesterID string `json:"requesterID"`
}

func (req friendActionRequest) friend() string    { return req.FriendID }
func (req friendActionRequest) requester() string { return req.RequesterID }

// Request handles POST /users/friends/request.
func (h FriendHandler) Request(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "friend request sent successfully", friendActionRequest.friend, h.Engine.Request)
}

// Accept handles POST /users/friends/accept.
func (h FriendHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "friend request accepted successfully", friendActionRequest.requester, h.Engine.Accept)
}

// Decline handles POST /users/friends/decline.
func (h FriendHandler) Decline(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "friend request declined successfully", friendActionRequest.requester, h.Engine.Decline)
}

// Remove handles POST /users/friends/remove.
func (h FriendHandler) Remove(w http.ResponseWriter, r *http.Request) {
	h.run(w, r, "friend removed successfully", friendActionRequest.friend, h.Engine.Remove)
}

func (h FriendHandler) run(w http.ResponseWriter, r *http.Request, confirmation string, pick func(friendActionRequest) string, action func(ctx context.Context, self, other string) error) {
	ctx := r.Context()

	var req friendActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	other := pick(req)
	if req.UID == "" || other == "" {
		respondError(ctx, w, http.StatusBadRequest, "both user ids are required")
		return
	}
	if !ids.Valid(req.UID) || !ids.Valid(other) {
		respondError(ctx, w, http.StatusBadRequest, "invalid uid format")
		return
	}

	if err := action(ctx, req.UID, other); err != nil {
		h.respondOpError(w, r, err)
		return
	}

	respondJSON(ctx, w, http.StatusOK, map[string]string{"message": confirmation})
}

func (h FriendHandler) respondOpError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	switch {
	case errors.Is(err, friends.ErrSelfReference),
		errors.Is(err, friends.ErrAlreadyFriends),
		errors.Is(err, friends.ErrRequestPending),
		errors.Is(err, friends.ErrNoPendingRequest),
		errors.Is(err, friends.ErrNotFriends):
		respondError(ctx, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, friends.ErrUserNotFound):
		respondError(ctx, w, http.StatusNotFound, err.Error())
	default:
		logging.FromContext(ctx).Error("friend operation failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
	}
}
