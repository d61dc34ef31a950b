package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/friendpost/backend/internal/auth"
	"github.com/friendpost/backend/internal/ids"
	"github.com/friendpost/backend/internal/logging"
	"github.com/friendpost/backend/internal/models"
	"github.com/friendpost/backend/internal/repositories"
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,6}$`)
)

// AuthHandler implements registration, login, logout and session validation.
type AuthHandler struct {
	Users   UserStore
	Tokens  TokenIssuer
	Cookies auth.CookieWriter
	NowFunc func() time.Time
}

type registerRequest struct {
	FirstName       string `json:"firstname"`
	Surname         string `json:"surname"`
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Email           string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles POST /users/register.
func (h AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if hasSessionCookie(r) {
		respondError(ctx, w, http.StatusBadRequest, "already logged in")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if reason := h.validateRegistration(r, req); reason != "" {
		respondError(ctx, w, http.StatusBadRequest, reason)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error("registration failed to hash password", "error", err)
		respondError(ctx, w, http.StatusInternalServerError, "failed to secure password")
		return
	}

	now := h.now()
	user := models.User{
		ID:        ids.New(),
		Username:  req.Username,
		FirstName: req.FirstName,
		Surname:   req.Surname,
		Email:     req.Email,
		Password:  string(hashed),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.Users.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			respondError(ctx, w, http.StatusBadRequest, "username is already taken")
			return
		}
		logger.Error("registration failed to create user", "error", err, "username", req.Username)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create account")
		return
	}

	if !h.issueSession(w, r, user) {
		return
	}

	logger.Info("user registered", "uid", user.ID, "username", user.Username)
	respondJSON(ctx, w, http.StatusCreated, map[string]string{"username": user.Username})
}

func (h AuthHandler) validateRegistration(r *http.Request, req registerRequest) string {
	if len(req.FirstName) <= 1 {
		return "first name should be longer than one character"
	}
	if len(req.Surname) <= 1 {
		return "last name should be longer than one character"
	}
	if len(req.Username) <= 3 {
		return "username should be longer than three characters"
	}
	if !usernamePattern.MatchString(req.Username) {
		return "username may only contain letters, digits, underscores and hyphens"
	}
	if _, err := h.Users.FindByUsername(r.Context(), req.Username); err == nil {
		return "username is already taken"
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return "unable to verify username availability"
	}
	if len(req.Password) < 8 || digitCount(req.Password) < 2 {
		return "password must be at least 8 characters and contain at least two digits"
	}
	if req.Password != req.ConfirmPassword {
		return "passwords do not match"
	}
	if !emailPattern.MatchString(req.Email) {
		return "please enter a valid email address"
	}
	return ""
}

// Login handles POST /users/login.
func (h AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.FromContext(ctx)

	if hasSessionCookie(r) {
		respondError(ctx, w, http.StatusBadRequest, "already logged in")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(ctx, w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Username == "" || req.Password == "" {
		respondError(ctx, w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	user, err := h.Users.FindByUsername(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			logger.Error("login user lookup failed", "error", err, "username", req.Username)
			respondError(ctx, w, http.StatusInternalServerError, "unable to verify credentials")
			return
		}
		respondError(ctx, w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		logger.Warn("login password mismatch", "uid", user.ID)
		respondError(ctx, w, http.StatusUnauthorized, "invalid username or password")
		return
	}

	if !h.issueSession(w, r, user) {
		return
	}

	logger.Info("user logged in", "uid", user.ID)
	respondJSON(ctx, w, http.StatusOK, map[string]string{"username": user.Username})
}

// Logout handles POST /logout; both cookies are cleared unconditionally.
func (h AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.Cookies.Clear(w)
	respondJSON(r.Context(), w, http.StatusOK, map[string]string{"message": "logged out successfully"})
}

// Validate handles GET /validate. The session guard has already resolved the
// caller; this just echoes the identity it attached.
func (h AuthHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		respondError(ctx, w, http.StatusUnauthorized, "no tokens provided")
		return
	}

	respondJSON(ctx, w, http.StatusOK, identity)
}

// issueSession mints both tokens and sets the session cookies. It reports
// false after writing an error response.
func (h AuthHandler) issueSession(w http.ResponseWriter, r *http.Request, user models.User) bool {
	ctx := r.Context()

	access, err := h.Tokens.IssueAccess(user)
	if err != nil {
		logging.FromContext(ctx).Error("failed to issue access token", "error", err, "uid", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return false
	}

	refresh, err := h.Tokens.IssueRefresh(user)
	if err != nil {
		logging.FromContext(ctx).Error("failed to issue refresh token", "error", err, "uid", user.ID)
		respondError(ctx, w, http.StatusInternalServerError, "failed to create session")
		return false
	}

	h.Cookies.SetSession(w, access, refresh)
	return true
}

func (h AuthHandler) now() time.Time {
	if h.NowFunc != nil {
		return h.NowFunc()
	}
	return time.Now().UTC()
}

func hasSessionCookie(r *http.Request) bool {
	for _, name := range []string{auth.AccessCookieName, auth.RefreshCookieName} {
		if cookie, err := r.Cookie(name); err == nil && cookie.Value != "" {
			return true
		}
	}
	return false
}

func digitCount(s string) int {
	count := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			count++
		}
	}
	return count
}
