package handlers

import (
	"context"

	"github.com/friendpost/backend/internal/models"
)

// UserStore captures the persistence operations required by the user-facing
// handlers.
type UserStore interface {
	Create(ctx context.Context, user models.User) error
	FindByID(ctx context.Context, id string) (models.User, error)
	FindByUsername(ctx context.Context, username string) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	SearchByUsername(ctx context.Context, text string) ([]models.User, error)
}

// GraphStore assembles a user's friend graph view.
type GraphStore interface {
	GraphForUser(ctx context.Context, userID string) (models.FriendGraph, error)
}

// FriendGraphEngine executes friend relation transitions on behalf of an
// authenticated caller.
type FriendGraphEngine interface {
	Request(ctx context.Context, self, other string) error
	Accept(ctx context.Context, self, requester string) error
	Decline(ctx context.Context, self, requester string) error
	Remove(ctx context.Context, self, other string) error
}

// MessageStore captures persistence for posted messages.
type MessageStore interface {
	Create(ctx context.Context, message models.Message) error
	List(ctx context.Context) ([]models.Message, error)
	FindByID(ctx context.Context, id string) (models.Message, error)
	SetReadFlag(ctx context.Context, messageID, userID string, read bool) error
}

// TokenIssuer mints the signed session tokens set as cookies after
// registration and login.
type TokenIssuer interface {
	IssueAccess(user models.User) (string, error)
	IssueRefresh(user models.User) (string, error)
}
