package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/friendpost/backend/internal/db"
	"github.com/friendpost/backend/internal/models"
)

// PostgresFriendRepository persists the friend relation as one row per user
// pair. A unique index on the unordered pair guarantees a single edge exists
// between any two users, so every transition is one atomic statement.
type PostgresFriendRepository struct {
	pool db.Pool
}

// NewPostgresFriendRepository constructs a friend repository backed by PostgreSQL.
func NewPostgresFriendRepository(pool db.Pool) *PostgresFriendRepository {
	return &PostgresFriendRepository{pool: pool}
}

// Edge returns the edge between two users regardless of direction.
func (r *PostgresFriendRepository) Edge(ctx context.Context, a, b string) (models.FriendEdge, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.FriendEdge{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT requester_id, receiver_id, status, created_at, responded_at
        FROM friend_edges
        WHERE (requester_id = $1 AND receiver_id = $2)
           OR (requester_id = $2 AND receiver_id = $1)
    `, a, b)

	var edge models.FriendEdge
	if err := row.Scan(&edge.Requester, &edge.Receiver, &edge.Status, &edge.CreatedAt, &edge.RespondedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.FriendEdge{}, ErrNotFound
		}
		return models.FriendEdge{}, fmt.Errorf("select friend edge: %w", err)
	}

	return edge, nil
}

// CreateRequest records a pending request from requester to receiver.
func (r *PostgresFriendRepository) CreateRequest(ctx context.Context, requester, receiver string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO friend_edges (requester_id, receiver_id, status, created_at)
        VALUES ($1, $2, $3, $4)
    `, requester, receiver, models.EdgeStatusPending, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrConflict
		}
		return fmt.Errorf("insert friend edge: %w", err)
	}

	return nil
}

// AcceptRequest promotes a pending requester->receiver edge to a friendship.
func (r *PostgresFriendRepository) AcceptRequest(ctx context.Context, requester, receiver string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE friend_edges
        SET status = $4, responded_at = $5
        WHERE requester_id = $1 AND receiver_id = $2 AND status = $3
    `, requester, receiver, models.EdgeStatusPending, models.EdgeStatusAccepted, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("accept friend edge: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteRequest removes a pending requester->receiver edge.
func (r *PostgresFriendRepository) DeleteRequest(ctx context.Context, requester, receiver string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM friend_edges
        WHERE requester_id = $1 AND receiver_id = $2 AND status = $3
    `, requester, receiver, models.EdgeStatusPending)
	if err != nil {
		return fmt.Errorf("delete friend request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteFriendship removes an accepted edge between two users.
func (r *PostgresFriendRepository) DeleteFriendship(ctx context.Context, a, b string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM friend_edges
        WHERE ((requester_id = $1 AND receiver_id = $2)
            OR (requester_id = $2 AND receiver_id = $1))
          AND status = $3
    `, a, b, models.EdgeStatusAccepted)
	if err != nil {
		return fmt.Errorf("delete friendship: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// GraphForUser assembles the user's friends and pending requests from their edges.
func (r *PostgresFriendRepository) GraphForUser(ctx context.Context, userID string) (models.FriendGraph, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.FriendGraph{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT requester_id, receiver_id, status
        FROM friend_edges
        WHERE requester_id = $1 OR receiver_id = $1
        ORDER BY created_at
    `, userID)
	if err != nil {
		return models.FriendGraph{}, fmt.Errorf("select friend edges: %w", err)
	}
	defer rows.Close()

	graph := models.FriendGraph{
		Friends: []string{},
		Requests: models.FriendRequests{
			Sent:     []string{},
			Received: []string{},
		},
	}

	for rows.Next() {
		var requester, receiver, status string
		if err := rows.Scan(&requester, &receiver, &status); err != nil {
			return models.FriendGraph{}, fmt.Errorf("scan friend edge: %w", err)
		}

		switch {
		case status == models.EdgeStatusAccepted && requester == userID:
			graph.Friends = append(graph.Friends, receiver)
		case status == models.EdgeStatusAccepted:
			graph.Friends = append(graph.Friends, requester)
		case requester == userID:
			graph.Requests.Sent = append(graph.Requests.Sent, receiver)
		default:
			graph.Requests.Received = append(graph.Requests.Received, requester)
		}
	}
	if err := rows.Err(); err != nil {
		return models.FriendGraph{}, fmt.Errorf("iterate friend edges: %w", err)
	}

	return graph, nil
}
