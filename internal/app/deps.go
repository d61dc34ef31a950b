package app

import (
	"github.com/friendpost/backend/internal/auth"
	"github.com/friendpost/backend/internal/config"
	"github.com/friendpost/backend/internal/db"
	"github.com/friendpost/backend/internal/friends"
	"github.com/friendpost/backend/internal/handlers"
	"github.com/friendpost/backend/internal/repositories"
	"github.com/friendpost/backend/internal/token"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(pool db.Pool, cfg config.Config) handlers.Dependencies {
	users := repositories.NewPostgresUserRepository(pool)
	edges := repositories.NewPostgresFriendRepository(pool)
	messages := repositories.NewPostgresMessageRepository(pool)

	codec := token.NewCodec(
		[]byte(cfg.AccessSecret),
		[]byte(cfg.RefreshSecret),
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	cookies := auth.CookieWriter{
		Secure:     cfg.SecureCookies,
		AccessTTL:  cfg.AccessTokenTTL,
		RefreshTTL: cfg.RefreshTokenTTL,
	}

	return handlers.Dependencies{
		Users:    users,
		Graph:    edges,
		Friends:  friends.NewEngine(users, edges),
		Messages: messages,
		Tokens:   codec,
		Guard:    auth.NewGuard(codec, users, edges, cookies),
		Cookies:  cookies,
	}
}
