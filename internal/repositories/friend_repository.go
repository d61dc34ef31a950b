package repositories

import (
	"context"

	"github.com/friendpost/backend/internal/models"
)

// FriendRepository defines data access for the friend relation. Each pair of
// users has at most one edge: a pending request or an accepted friendship.
// Storing the relation as a single row keyed by the unordered pair makes
// every transition one atomic write; the unique pair index serializes
// concurrent conflicting transitions.
type FriendRepository interface {
	// Edge returns the edge between two users regardless of direction.
	Edge(ctx context.Context, a, b string) (models.FriendEdge, error)
	// CreateRequest records a pending request; ErrConflict when an edge
	// already exists for the pair.
	CreateRequest(ctx context.Context, requester, receiver string) error
	// AcceptRequest promotes a pending requester->receiver edge to an
	// accepted friendship; ErrNotFound when no such pending edge exists.
	AcceptRequest(ctx context.Context, requester, receiver string) error
	// DeleteRequest removes a pending requester->receiver edge;
	// ErrNotFound when no such pending edge exists.
	DeleteRequest(ctx context.Context, requester, receiver string) error
	// DeleteFriendship removes an accepted edge between two users in
	// either direction; ErrNotFound when they are not friends.
	DeleteFriendship(ctx context.Context, a, b string) error
	// GraphForUser assembles the user's friends and pending requests.
	GraphForUser(ctx context.Context, userID string) (models.FriendGraph, error)
}
