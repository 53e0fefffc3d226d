package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ymori/ideascout/internal/progress"
)

// InsertProgress appends a progress record for a session. Implements
// progress.Store.
func (db *DB) InsertProgress(ctx context.Context, rec progress.Record) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO progress_tracking (session_id, agent_name, status, progress_percentage, message)
		 VALUES ($1, $2, $3, $4, $5)`,
		rec.SessionID, rec.AgentName, string(rec.Status), rec.ProgressPercentage,
		nullIfEmpty(rec.Message))
	if err != nil {
		return fmt.Errorf("failed to insert progress record: %w", err)
	}
	return nil
}

// ListProgress retrieves all progress records for a session in insertion order.
func (db *DB) ListProgress(ctx context.Context, sessionID uuid.UUID) ([]ProgressRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, agent_name, status, progress_percentage, COALESCE(message, ''), created_at
		 FROM progress_tracking
		 WHERE session_id = $1
		 ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress records: %w", err)
	}
	defer rows.Close()

	var records []ProgressRow
	for rows.Next() {
		var r ProgressRow
		if err := rows.Scan(&r.ID, &r.SessionID, &r.AgentName, &r.Status,
			&r.ProgressPercentage, &r.Message, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// LatestProgress retrieves the most recent progress record per agent for
// a session.
func (db *DB) LatestProgress(ctx context.Context, sessionID uuid.UUID) ([]ProgressRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT DISTINCT ON (agent_name)
		        id, session_id, agent_name, status, progress_percentage, COALESCE(message, ''), created_at
		 FROM progress_tracking
		 WHERE session_id = $1
		 ORDER BY agent_name, created_at DESC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest progress: %w", err)
	}
	defer rows.Close()

	var records []ProgressRow
	for rows.Next() {
		var r ProgressRow
		if err := rows.Scan(&r.ID, &r.SessionID, &r.AgentName, &r.Status,
			&r.ProgressPercentage, &r.Message, &r.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}
