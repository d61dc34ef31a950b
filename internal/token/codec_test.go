package token

import (
	"errors"
	"testing"
	"time"

	"github.com/friendpost/backend/internal/models"
)

var testUser = models.User{
	ID:        "507f1f77bcf86cd799439011",
	Username:  "alice",
	FirstName: "Alice",
}

func newTestCodec() *Codec {
	return NewCodec([]byte("access-secret"), []byte("refresh-secret"), 15*time.Minute, 7*24*time.Hour)
}

func TestIssueAndVerifyAccess(t *testing.T) {
	codec := newTestCodec()

	token, err := codec.IssueAccess(testUser)
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	claims, err := codec.VerifyAccess(token)
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}

	if claims.UserID != testUser.ID {
		t.Fatalf("expected uid %q got %q", testUser.ID, claims.UserID)
	}
	if claims.Username != testUser.Username {
		t.Fatalf("expected username %q got %q", testUser.Username, claims.Username)
	}
	if claims.Name != testUser.FirstName {
		t.Fatalf("expected name %q got %q", testUser.FirstName, claims.Name)
	}
}

func TestRefreshTokenOmitsName(t *testing.T) {
	codec := newTestCodec()

	token, err := codec.IssueRefresh(testUser)
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}

	claims, err := codec.VerifyRefresh(token)
	if err != nil {
		t.Fatalf("verify refresh token: %v", err)
	}
	if claims.Name != "" {
		t.Fatalf("refresh token should not carry a display name, got %q", claims.Name)
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	codec := newTestCodec()

	access, err := codec.IssueAccess(testUser)
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	// An access token must never verify under the refresh secret.
	if _, err := codec.VerifyRefresh(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken got %v", err)
	}
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	codec := newTestCodec()
	issuedAt := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)
	codec.WithNowFunc(func() time.Time { return issuedAt })

	access, err := codec.IssueAccess(testUser)
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	codec.WithNowFunc(func() time.Time { return issuedAt.Add(16 * time.Minute) })
	if _, err := codec.VerifyAccess(access); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}

	// The refresh token outlives the access token by days.
	refresh, err := codec.IssueRefresh(testUser)
	if err != nil {
		t.Fatalf("issue refresh token: %v", err)
	}
	codec.WithNowFunc(func() time.Time { return issuedAt.Add(17 * time.Minute) })
	if _, err := codec.VerifyRefresh(refresh); err != nil {
		t.Fatalf("refresh token should still verify: %v", err)
	}
}

func TestVerifyRejectsTamperedToken(t *testing.T) {
	codec := newTestCodec()

	access, err := codec.IssueAccess(testUser)
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}

	tampered := access[:len(access)-2] + "xx"
	if _, err := codec.VerifyAccess(tampered); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}

	if _, err := codec.VerifyAccess("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for malformed token, got %v", err)
	}
}
