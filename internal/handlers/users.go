package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/friendpost/backend/internal/auth"
	"github.com/friendpost/backend/internal/ids"
	"github.com/friendpost/backend/internal/logging"
	"github.com/friendpost/backend/internal/models"
	"github.com/friendpost/backend/internal/repositories"
)

// UserHandler serves public user profiles, username search and availability checks.
type UserHandler struct {
	Users UserStore
	Graph GraphStore
}

type userProfileResponse struct {
	Username       string                `json:"username"`
	Friends        []string              `json:"friends"`
	FriendRequests models.FriendRequests `json:"friendRequests"`
	Name           string                `json:"name"`
	UID            string                `json:"uid"`
}

// Get handles GET /users/{uid}.
func (h UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	uid := r.PathValue("uid")
	if !ids.Valid(uid) {
		respondError(ctx, w, http.StatusBadRequest, "invalid uid format")
		return
	}

	user, err := h.Users.FindByID(ctx, uid)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			respondError(ctx, w, http.StatusNotFound, "user not found")
			return
		}
		logging.FromContext(ctx).Error("user lookup failed", "error", err, "uid", uid)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	graph, err := h.Graph.GraphForUser(ctx, user.ID)
	if err != nil {
		logging.FromContext(ctx).Error("friend graph lookup failed", "error", err, "uid", uid)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(ctx, w, http.StatusOK, userProfileResponse{
		Username:       user.Username,
		Friends:        graph.Friends,
		FriendRequests: graph.Requests,
		Name:           user.FirstName,
		UID:            user.ID,
	})
}

type searchMatch struct {
	Name string `json:"name"`
	UID  string `json:"uid"`
}

// Find handles GET /users/find/{text}: a substring match on usernames,
// excluding the caller.
func (h UserHandler) Find(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	text := r.PathValue("text")
	if text == "" {
		respondError(ctx, w, http.StatusBadRequest, "invalid search text")
		return
	}

	identity, _ := auth.IdentityFromContext(ctx)

	users, err := h.Users.SearchByUsername(ctx, text)
	if err != nil {
		logging.FromContext(ctx).Error("user search failed", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "internal server error")
		return
	}

	matches := []searchMatch{}
	for _, user := range users {
		if user.Username == identity.Username {
			continue
		}
		matches = append(matches, searchMatch{Name: user.Username, UID: user.ID})
	}

	respondJSON(ctx, w, http.StatusOK, matches)
}

type availabilityRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// CheckAvailability handles POST /users/check-availability.
func (h UserHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req availabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" && req.Email == "" {
		respondError(ctx, w, http.StatusBadRequest, "provide a username or email to check")
		return
	}

	response := map[string]bool{}

	if req.Username != "" {
		available, ok := h.available(w, r, "username", func() error {
			_, err := h.Users.FindByUsername(ctx, req.Username)
			return err
		})
		if !ok {
			return
		}
		response["usernameAvailable"] = available
	}

	if req.Email != "" {
		available, ok := h.available(w, r, "email", func() error {
			_, err := h.Users.FindByEmail(ctx, req.Email)
			return err
		})
		if !ok {
			return
		}
		response["emailAvailable"] = available
	}

	respondJSON(ctx, w, http.StatusOK, response)
}

// available translates a lookup result into an availability flag. It reports
// ok=false after writing an error response.
func (h UserHandler) available(w http.ResponseWriter, r *http.Request, field string, lookup func() error) (bool, bool) {
	err := lookup()
	switch {
	case err == nil:
		return false, true
	case errors.Is(err, repositories.ErrNotFound):
		return true, true
	default:
		logging.FromContext(r.Context()).Error("availability lookup failed", "error", err, "field", field)
		respondError(r.Context(), w, http.StatusInternalServerError, "internal server error")
		return false, false
	}
}
