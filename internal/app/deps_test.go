package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/friendpost/backend/internal/config"
)

type fakePool struct{}

func (fakePool) Acquire(context.Context) (*pgxpool.Conn, error) {
	return nil, errors.New("not implemented")
}

func (fakePool) Close() {}

func TestBuildDependencies(t *testing.T) {
	cfg := config.Config{
		AccessSecret:    "access-secret",
		RefreshSecret:   "refresh-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
		SecureCookies:   true,
	}

	deps := buildDependencies(fakePool{}, cfg)

	if deps.Users == nil {
		t.Fatal("expected user repository to be configured")
	}
	if deps.Graph == nil {
		t.Fatal("expected friend graph store to be configured")
	}
	if deps.Friends == nil {
		t.Fatal("expected friend engine to be configured")
	}
	if deps.Messages == nil {
		t.Fatal("expected message repository to be configured")
	}
	if deps.Tokens == nil {
		t.Fatal("expected token codec to be configured")
	}
	if deps.Guard == nil {
		t.Fatal("expected session guard to be configured")
	}
	if deps.Cookies.AccessTTL != cfg.AccessTokenTTL {
		t.Fatalf("expected access cookie TTL %v got %v", cfg.AccessTokenTTL, deps.Cookies.AccessTTL)
	}
}
