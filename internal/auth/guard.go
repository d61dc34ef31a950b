// Package auth implements the dual-token session layer: cookie handling and
// the request guard that resolves a caller's identity, silently renewing the
// access token from a valid refresh token.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/friendpost/backend/internal/logging"
	"github.com/friendpost/backend/internal/models"
	"github.com/friendpost/backend/internal/repositories"
	"github.com/friendpost/backend/internal/token"
)

type identityCtxKey struct{}

// WithIdentity stores the resolved caller identity on the context.
func WithIdentity(ctx context.Context, identity models.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, identity)
}

// IdentityFromContext retrieves the caller identity set by the guard.
func IdentityFromContext(ctx context.Context) (models.Identity, bool) {
	identity, ok := ctx.Value(identityCtxKey{}).(models.Identity)
	return identity, ok
}

// UserSource resolves token subjects to stored accounts.
type UserSource interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// GraphSource assembles a user's friend graph for the identity payload.
type GraphSource interface {
	GraphForUser(ctx context.Context, userID string) (models.FriendGraph, error)
}

// Guard authenticates requests from the session cookies. An expired or
// invalid access token is transparently renewed when the refresh token still
// verifies and its subject still exists; otherwise the request is rejected
// with a short reason that never reveals which secret failed.
type Guard struct {
	codec   *token.Codec
	users   UserSource
	graph   GraphSource
	cookies CookieWriter
}

// NewGuard constructs a Guard over the provided codec and stores.
func NewGuard(codec *token.Codec, users UserSource, graph GraphSource, cookies CookieWriter) *Guard {
	if codec == nil || users == nil || graph == nil {
		panic("auth: guard dependencies must not be nil")
	}
	return &Guard{codec: codec, users: users, graph: graph, cookies: cookies}
}

// Middleware wraps next so it only runs for authenticated callers.
func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		accessValue, hasAccess := cookieValue(r, AccessCookieName)
		refreshValue, hasRefresh := cookieValue(r, RefreshCookieName)

		if !hasAccess && !hasRefresh {
			reject(ctx, w, "no tokens provided")
			return
		}

		if hasAccess {
			claims, err := g.codec.VerifyAccess(accessValue)
			if err == nil {
				user, err := g.users.FindByID(ctx, claims.UserID)
				switch {
				case err == nil:
					g.admit(w, r, next, user)
					return
				case !errors.Is(err, repositories.ErrNotFound):
					logger.Error("guard user lookup failed", "error", err)
					fail(ctx, w)
					return
				}
				// The token verified but its subject vanished; treat it
				// like an invalid token and fall through to the refresh
				// path.
				logger.Warn("access token subject missing", "uid", claims.UserID)
			}
		}

		if !hasRefresh {
			reject(ctx, w, "auth token expired")
			return
		}

		claims, err := g.codec.VerifyRefresh(refreshValue)
		if err != nil {
			g.cookies.Clear(w)
			reject(ctx, w, "refresh token expired")
			return
		}

		user, err := g.users.FindByID(ctx, claims.UserID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				// One clearing policy on every refresh-path rejection: a
				// stale pair of cookies is useless either way.
				g.cookies.Clear(w)
				logger.Warn("refresh token subject missing", "uid", claims.UserID)
				reject(ctx, w, "user not found")
				return
			}
			logger.Error("guard user lookup failed", "error", err)
			fail(ctx, w)
			return
		}

		renewed, err := g.codec.IssueAccess(user)
		if err != nil {
			logger.Error("guard access token renewal failed", "error", err, "uid", user.ID)
			fail(ctx, w)
			return
		}
		g.cookies.SetAccess(w, renewed)
		logger.Info("access token renewed", "uid", user.ID)

		g.admit(w, r, next, user)
	})
}

func (g *Guard) admit(w http.ResponseWriter, r *http.Request, next http.Handler, user models.User) {
	ctx := r.Context()

	graph, err := g.graph.GraphForUser(ctx, user.ID)
	if err != nil {
		logging.FromContext(ctx).Error("guard friend graph lookup failed", "error", err, "uid", user.ID)
		fail(ctx, w)
		return
	}

	identity := models.Identity{
		UserID:         user.ID,
		Username:       user.Username,
		Name:           user.FirstName,
		Friends:        graph.Friends,
		FriendRequests: graph.Requests,
	}

	next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, identity)))
}

func cookieValue(r *http.Request, name string) (string, bool) {
	cookie, err := r.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func reject(ctx context.Context, w http.ResponseWriter, reason string) {
	logging.FromContext(ctx).Warn("request rejected", "reason", reason)
	writeJSON(w, http.StatusUnauthorized, map[string]string{"error": reason})
}

func fail(ctx context.Context, w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
