package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/friendpost/backend/internal/db"
	"github.com/friendpost/backend/internal/models"
)

// PostgresMessageRepository provides PostgreSQL-backed persistence for posts.
type PostgresMessageRepository struct {
	pool db.Pool
}

// NewPostgresMessageRepository constructs a message repository backed by PostgreSQL.
func NewPostgresMessageRepository(pool db.Pool) *PostgresMessageRepository {
	return &PostgresMessageRepository{pool: pool}
}

// Create persists a new message.
func (r *PostgresMessageRepository) Create(ctx context.Context, message models.Message) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO posts (id, author_id, author_name, body, recipient_id, recipient_name, posted_at, posted_label, users_read)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, message.ID, message.AuthorID, message.AuthorName, message.Body, message.RecipientID, message.RecipientName, message.PostedAt, message.Date, message.UsersRead)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

// List returns all messages, newest first.
func (r *PostgresMessageRepository) List(ctx context.Context) ([]models.Message, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT id, author_id, author_name, body, recipient_id, recipient_name, posted_at, posted_label, users_read
        FROM posts
        ORDER BY posted_at DESC, id DESC
    `)
	if err != nil {
		return nil, fmt.Errorf("select messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}

	return messages, nil
}

// FindByID fetches a single message.
func (r *PostgresMessageRepository) FindByID(ctx context.Context, id string) (models.Message, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Message{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, author_id, author_name, body, recipient_id, recipient_name, posted_at, posted_label, users_read
        FROM posts
        WHERE id = $1
    `, id)

	message, err := scanMessage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Message{}, ErrNotFound
		}
		return models.Message{}, err
	}

	return message, nil
}

// SetReadFlag adds or removes userID from the message's read set. The update
// is a single statement, so concurrent toggles by different viewers cannot
// clobber each other, and repeating the same flag is a no-op.
func (r *PostgresMessageRepository) SetReadFlag(ctx context.Context, messageID, userID string, read bool) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var tag pgconn.CommandTag
	if read {
		tag, err = conn.Exec(ctx, `
            UPDATE posts
            SET users_read = CASE
                WHEN $2 = ANY(users_read) THEN users_read
                ELSE array_append(users_read, $2)
            END
            WHERE id = $1
        `, messageID, userID)
	} else {
		tag, err = conn.Exec(ctx, `
            UPDATE posts
            SET users_read = array_remove(users_read, $2)
            WHERE id = $1
        `, messageID, userID)
	}
	if err != nil {
		return fmt.Errorf("update read flag: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (models.Message, error) {
	var message models.Message
	if err := row.Scan(&message.ID, &message.AuthorID, &message.AuthorName, &message.Body, &message.RecipientID, &message.RecipientName, &message.PostedAt, &message.Date, &message.UsersRead); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Message{}, err
		}
		return models.Message{}, fmt.Errorf("scan message: %w", err)
	}
	if message.UsersRead == nil {
		message.UsersRead = []string{}
	}
	return message, nil
}
