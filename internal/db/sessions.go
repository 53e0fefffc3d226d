package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CreateSession creates a new agent session.
func (db *DB) CreateSession(ctx context.Context, userInput string) (*Session, error) {
	var session Session
	err := db.pool.QueryRow(ctx,
		`INSERT INTO agent_sessions (user_input, status)
		 VALUES ($1, $2)
		 RETURNING id, user_input, status, created_at, updated_at, completed_at`,
		nullIfEmpty(userInput), SessionStatusStarted,
	).Scan(&session.ID, &session.UserInput, &session.Status,
		&session.CreatedAt, &session.UpdatedAt, &session.CompletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &session, nil
}

// GetSession retrieves a session by ID. Returns nil when not found.
func (db *DB) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	var session Session
	err := db.pool.QueryRow(ctx,
		`SELECT id, user_input, status, created_at, updated_at, completed_at
		 FROM agent_sessions WHERE id = $1`,
		id,
	).Scan(&session.ID, &session.UserInput, &session.Status,
		&session.CreatedAt, &session.UpdatedAt, &session.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// UpdateSessionStatus updates the status of a session. Terminal statuses
// also stamp completed_at.
func (db *DB) UpdateSessionStatus(ctx context.Context, id uuid.UUID, status string) error {
	var err error
	now := time.Now()

	switch status {
	case SessionStatusCompleted, SessionStatusFailed:
		_, err = db.pool.Exec(ctx,
			`UPDATE agent_sessions SET status = $1, updated_at = $2, completed_at = $2 WHERE id = $3`,
			status, now, id)
	default:
		_, err = db.pool.Exec(ctx,
			`UPDATE agent_sessions SET status = $1, updated_at = $2 WHERE id = $3`,
			status, now, id)
	}

	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	return nil
}

// nullIfEmpty converts an empty string to a nil pointer for nullable columns.
func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
