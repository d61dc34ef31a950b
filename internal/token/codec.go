// Package token creates and verifies the signed credentials carried in the
// session cookies: a short-lived access token and a long-lived refresh token,
// each signed with its own secret.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/friendpost/backend/internal/models"
)

// ErrInvalidToken covers every verification failure: bad signature, wrong
// algorithm, malformed payload, or expiry. Callers perform no differentiated
// recovery, so the causes deliberately collapse into one error.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload embedded in issued tokens. Name is only present on
// access tokens.
type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Codec issues and verifies session tokens. The zero value is unusable;
// construct with NewCodec.
type Codec struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

// NewCodec constructs a Codec signing with the provided secrets and TTLs.
func NewCodec(accessSecret, refreshSecret []byte, accessTTL, refreshTTL time.Duration) *Codec {
	if len(accessSecret) == 0 || len(refreshSecret) == 0 {
		panic("token: signing secrets must not be empty")
	}
	return &Codec{
		accessSecret:  accessSecret,
		refreshSecret: refreshSecret,
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
}

// AccessTTL reports the lifetime of issued access tokens.
func (c *Codec) AccessTTL() time.Duration { return c.accessTTL }

// RefreshTTL reports the lifetime of issued refresh tokens.
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess signs a new access token for the user, embedding id, username
// and display name.
func (c *Codec) IssueAccess(user models.User) (string, error) {
	return c.sign(Claims{
		UserID:   user.ID,
		Username: user.Username,
		Name:     user.FirstName,
	}, c.accessSecret, c.accessTTL)
}

// IssueRefresh signs a new refresh token for the user, embedding id and
// username only.
func (c *Codec) IssueRefresh(user models.User) (string, error) {
	return c.sign(Claims{
		UserID:   user.ID,
		Username: user.Username,
	}, c.refreshSecret, c.refreshTTL)
}

// VerifyAccess validates an access token and returns its claims.
func (c *Codec) VerifyAccess(token string) (Claims, error) {
	return c.verify(token, c.accessSecret)
}

// VerifyRefresh validates a refresh token and returns its claims.
func (c *Codec) VerifyRefresh(token string) (Claims, error) {
	return c.verify(token, c.refreshSecret)
}

func (c *Codec) sign(claims Claims, secret []byte, ttl time.Duration) (string, error) {
	now := c.now().UTC()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (c *Codec) verify(token string, secret []byte) (Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(func() time.Time {
		return c.now().UTC()
	}))
	if err != nil || !parsed.Valid {
		return Claims{}, ErrInvalidToken
	}
	if claims.UserID == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

// WithNowFunc overrides the time source. Useful for tests.
func (c *Codec) WithNowFunc(now func() time.Time) {
	c.now = now
}
