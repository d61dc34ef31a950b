// Package friends implements the state machine over the friend relation:
// request, accept, decline and remove transitions between two users.
package friends

import (
	"context"
	"errors"
	"fmt"

	"github.com/friendpost/backend/internal/models"
	"github.com/friendpost/backend/internal/repositories"
)

var (
	// ErrSelfReference indicates an operation was attempted against the
	// caller's own account.
	ErrSelfReference = errors.New("cannot befriend yourself")
	// ErrAlreadyFriends indicates the two users already share a friendship.
	ErrAlreadyFriends = errors.New("already friends")
	// ErrRequestPending indicates a request already exists between the pair.
	ErrRequestPending = errors.New("friend request pending")
	// ErrNoPendingRequest indicates no matching request exists to accept or decline.
	ErrNoPendingRequest = errors.New("no pending friend request")
	// ErrNotFriends indicates the two users are not currently friends.
	ErrNotFriends = errors.New("not friends")
	// ErrUserNotFound indicates one of the referenced users does not exist.
	ErrUserNotFound = errors.New("user not found")
)

// UserResolver checks that a user id refers to an existing account.
type UserResolver interface {
	FindByID(ctx context.Context, id string) (models.User, error)
}

// Engine executes friend graph transitions. Every transition is a single
// write against the edge store, so a crash or a lost race can never leave the
// relation half-updated; a concurrent conflicting transition surfaces as the
// same error as a stale precondition.
type Engine struct {
	users UserResolver
	edges repositories.FriendRepository
}

// NewEngine constructs an Engine over the provided stores.
func NewEngine(users UserResolver, edges repositories.FriendRepository) *Engine {
	if users == nil || edges == nil {
		panic("friends: engine stores must not be nil")
	}
	return &Engine{users: users, edges: edges}
}

// Request records a pending friend request from self to other.
func (e *Engine) Request(ctx context.Context, self, other string) error {
	if err := e.resolvePair(ctx, self, other); err != nil {
		return err
	}

	edge, err := e.edges.Edge(ctx, self, other)
	switch {
	case err == nil && edge.Status == models.EdgeStatusAccepted:
		return ErrAlreadyFriends
	case err == nil:
		return ErrRequestPending
	case !errors.Is(err, repositories.ErrNotFound):
		return fmt.Errorf("check friend edge: %w", err)
	}

	if err := e.edges.CreateRequest(ctx, self, other); err != nil {
		// A conflicting edge appeared between the check and the insert.
		if errors.Is(err, repositories.ErrConflict) {
			return ErrRequestPending
		}
		return fmt.Errorf("create friend request: %w", err)
	}

	return nil
}

// Accept promotes a pending request from requester to self into a friendship.
func (e *Engine) Accept(ctx context.Context, self, requester string) error {
	if err := e.resolvePair(ctx, self, requester); err != nil {
		return err
	}

	edge, err := e.edges.Edge(ctx, self, requester)
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return ErrNoPendingRequest
	case err != nil:
		return fmt.Errorf("check friend edge: %w", err)
	case edge.Status == models.EdgeStatusAccepted:
		return ErrAlreadyFriends
	case edge.Requester != requester:
		// The pending request runs the other way; self sent it.
		return ErrNoPendingRequest
	}

	if err := e.edges.AcceptRequest(ctx, requester, self); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNoPendingRequest
		}
		return fmt.Errorf("accept friend request: %w", err)
	}

	return nil
}

// Decline removes a pending request from requester to self.
func (e *Engine) Decline(ctx context.Context, self, requester string) error {
	if err := e.resolvePair(ctx, self, requester); err != nil {
		return err
	}

	if err := e.edges.DeleteRequest(ctx, requester, self); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNoPendingRequest
		}
		return fmt.Errorf("decline friend request: %w", err)
	}

	return nil
}

// Remove dissolves an existing friendship between self and other.
func (e *Engine) Remove(ctx context.Context, self, other string) error {
	if err := e.resolvePair(ctx, self, other); err != nil {
		return err
	}

	if err := e.edges.DeleteFriendship(ctx, self, other); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrNotFriends
		}
		return fmt.Errorf("remove friendship: %w", err)
	}

	return nil
}

func (e *Engine) resolvePair(ctx context.Context, self, other string) error {
	if self == other {
		return ErrSelfReference
	}

	for _, id := range []string{self, other} {
		if _, err := e.users.FindByID(ctx, id); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("resolve user %s: %w", id, err)
		}
	}

	return nil
}
