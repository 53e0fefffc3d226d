package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// IdeaInput is the writable portion of a business idea.
type IdeaInput struct {
	Title                 string
	Description           string
	TargetMarket          string
	MarketSize            float64
	RevenueModel          string
	InitialInvestment     float64
	ProjectedProfit       float64
	ProfitabilityTier     string
	Timeline              string
	CompanyAssets         []string
	NetworkPartners       []string
	CapabilityScenario    string
	TAM                   float64
	SAM                   float64
	SOM                   float64
	EstimatedProfitMargin float64
}

// InsertIdeas saves generated business ideas for a session in a single
// transaction, so a failure part-way leaves no partial set behind.
func (db *DB) InsertIdeas(ctx context.Context, sessionID uuid.UUID, inputs []IdeaInput) ([]IdeaRow, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin idea insert: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var result []IdeaRow

	for _, input := range inputs {
		var row IdeaRow
		err := tx.QueryRow(ctx,
			`INSERT INTO business_ideas (session_id, title, description, target_market, market_size,
			        revenue_model, initial_investment, projected_profit, profitability_tier, timeline,
			        company_assets, network_partners, capability_scenario, tam, sam, som, estimated_profit_margin)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
			 RETURNING id, session_id, title, description, target_market, market_size,
			           revenue_model, initial_investment, projected_profit, profitability_tier, timeline,
			           company_assets, network_partners, COALESCE(capability_scenario, ''),
			           tam, sam, som, estimated_profit_margin, is_selected, created_at`,
			sessionID, input.Title, input.Description, input.TargetMarket, input.MarketSize,
			input.RevenueModel, input.InitialInvestment, input.ProjectedProfit,
			input.ProfitabilityTier, input.Timeline, input.CompanyAssets, input.NetworkPartners,
			nullIfEmpty(input.CapabilityScenario), input.TAM, input.SAM, input.SOM,
			input.EstimatedProfitMargin,
		).Scan(&row.ID, &row.SessionID, &row.Title, &row.Description, &row.TargetMarket,
			&row.MarketSize, &row.RevenueModel, &row.InitialInvestment, &row.ProjectedProfit,
			&row.ProfitabilityTier, &row.Timeline, &row.CompanyAssets, &row.NetworkPartners,
			&row.CapabilityScenario, &row.TAM, &row.SAM, &row.SOM, &row.EstimatedProfitMargin,
			&row.IsSelected, &row.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to insert business idea: %w", err)
		}
		result = append(result, row)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit idea insert: %w", err)
	}
	return result, nil
}

// ListIdeas retrieves all ideas for a session, most profitable first.
func (db *DB) ListIdeas(ctx context.Context, sessionID uuid.UUID) ([]IdeaRow, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, session_id, title, description, target_market, market_size,
		        revenue_model, initial_investment, projected_profit, profitability_tier, timeline,
		        company_assets, network_partners, COALESCE(capability_scenario, ''),
		        tam, sam, som, estimated_profit_margin, is_selected, created_at
		 FROM business_ideas
		 WHERE session_id = $1
		 ORDER BY projected_profit DESC, created_at`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list business ideas: %w", err)
	}
	defer rows.Close()

	var ideas []IdeaRow
	for rows.Next() {
		var row IdeaRow
		if err := rows.Scan(&row.ID, &row.SessionID, &row.Title, &row.Description,
			&row.TargetMarket, &row.MarketSize, &row.RevenueModel, &row.InitialInvestment,
			&row.ProjectedProfit, &row.ProfitabilityTier, &row.Timeline, &row.CompanyAssets,
			&row.NetworkPartners, &row.CapabilityScenario, &row.TAM, &row.SAM, &row.SOM,
			&row.EstimatedProfitMargin, &row.IsSelected, &row.CreatedAt); err != nil {
			return nil, err
		}
		ideas = append(ideas, row)
	}
	return ideas, nil
}

// MarkIdeaSelected flags one idea as the user's selection.
func (db *DB) MarkIdeaSelected(ctx context.Context, id uuid.UUID) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE business_ideas SET is_selected = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to mark idea selected: %w", err)
	}
	return nil
}
