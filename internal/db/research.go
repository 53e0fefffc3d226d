package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ResearchDataInput is the writable portion of a research artifact.
type ResearchDataInput struct {
	Category         string
	Subcategory      string
	DataType         string
	Title            string
	Content          any
	ReliabilityScore float64
}

// InsertResearchData saves research artifacts for a session. Content is
// marshaled to JSONB.
func (db *DB) InsertResearchData(ctx context.Context, sessionID uuid.UUID, inputs []ResearchDataInput) ([]ResearchData, error) {
	var result []ResearchData

	for _, input := range inputs {
		contentJSON, err := json.Marshal(input.Content)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal research content: %w", err)
		}

		var rd ResearchData
		err = db.pool.QueryRow(ctx,
			`INSERT INTO research_data (session_id, category, subcategory, data_type, title, content, reliability_score)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 RETURNING id, session_id, category, COALESCE(subcategory, ''), data_type, title, content, reliability_score, created_at`,
			sessionID, input.Category, nullIfEmpty(input.Subcategory), input.DataType,
			input.Title, contentJSON, input.ReliabilityScore,
		).Scan(&rd.ID, &rd.SessionID, &rd.Category, &rd.Subcategory, &rd.DataType,
			&rd.Title, &rd.Content, &rd.ReliabilityScore, &rd.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert research data: %w", err)
		}
		result = append(result, rd)
	}

	return result, nil
}

// ListResearchData retrieves all research artifacts for a session.
func (db *DB) ListResearchData(ctx context.Context, sessionID uuid.UUID) ([]ResearchData, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, category, COALESCE(subcategory, ''), data_type, title, content, reliability_score, created_at
		 FROM research_data
		 WHERE session_id = $1
		 ORDER BY created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list research data: %w", err)
	}
	defer rows.Close()

	return scanResearchData(rows)
}

// LatestCategoryTrends retrieves the most recent trend artifact per
// subcategory across all sessions. Used to decide whether previously
// collected research can be reused.
func (db *DB) LatestCategoryTrends(ctx context.Context) ([]ResearchData, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT DISTINCT ON (subcategory)
		        id, session_id, category, COALESCE(subcategory, ''), data_type, title, content, reliability_score, created_at
		 FROM research_data
		 WHERE data_type = $1 AND subcategory IS NOT NULL
		 ORDER BY subcategory, created_at DESC`,
		ResearchTypeTrend,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest category trends: %w", err)
	}
	defer rows.Close()

	return scanResearchData(rows)
}

type pgxRows interface {
	Next() bool
	Scan(dest ...any) error
}

func scanResearchData(rows pgxRows) ([]ResearchData, error) {
	var artifacts []ResearchData
	for rows.Next() {
		var rd ResearchData
		if err := rows.Scan(&rd.ID, &rd.SessionID, &rd.Category, &rd.Subcategory,
			&rd.DataType, &rd.Title, &rd.Content, &rd.ReliabilityScore, &rd.CreatedAt); err != nil {
			return nil, err
		}
		artifacts = append(artifacts, rd)
	}
	return artifacts, nil
}
