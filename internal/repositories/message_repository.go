package repositories

import (
	"context"

	"github.com/friendpost/backend/internal/models"
)

// MessageRepository defines data access for posted messages.
type MessageRepository interface {
	Create(ctx context.Context, message models.Message) error
	// List returns all messages, newest first.
	List(ctx context.Context) ([]models.Message, error)
	FindByID(ctx context.Context, id string) (models.Message, error)
	// SetReadFlag adds or removes userID from the message's read set in a
	// single write; applying the same flag twice is a no-op.
	SetReadFlag(ctx context.Context, messageID, userID string, read bool) error
}
