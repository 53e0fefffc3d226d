package db

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Session lifecycle statuses.
const (
	SessionStatusStarted    = "started"
	SessionStatusInProgress = "in_progress"
	SessionStatusCompleted  = "completed"
	SessionStatusFailed     = "failed"
)

// Research data classification constants.
const (
	ResearchCategoryGeneral     = "general"
	ResearchCategoryMarketTrend = "market_trend"

	ResearchTypeTrend        = "trend"
	ResearchTypeUserAnalysis = "user_analysis"
)

// Session represents one end-to-end pipeline run.
type Session struct {
	ID          uuid.UUID  `json:"id"`
	UserInput   *string    `json:"user_input,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ProgressRow is one persisted progress record.
type ProgressRow struct {
	ID                 uuid.UUID `json:"id"`
	SessionID          uuid.UUID `json:"session_id"`
	AgentName          string    `json:"agent_name"`
	Status             string    `json:"status"`
	ProgressPercentage int       `json:"progress_percentage"`
	Message            string    `json:"message"`
	CreatedAt          time.Time `json:"created_at"`
}

// ResearchData is one persisted research artifact: a category trend
// record or a user-analysis record.
type ResearchData struct {
	ID               uuid.UUID       `json:"id"`
	SessionID        uuid.UUID       `json:"session_id"`
	Category         string          `json:"category"`
	Subcategory      string          `json:"subcategory,omitempty"`
	DataType         string          `json:"data_type"`
	Title            string          `json:"title"`
	Content          json.RawMessage `json:"content"`
	ReliabilityScore float64         `json:"reliability_score"`
	CreatedAt        time.Time       `json:"created_at"`
}

// IdeaRow is one persisted business idea.
type IdeaRow struct {
	ID                    uuid.UUID `json:"id"`
	SessionID             uuid.UUID `json:"session_id"`
	Title                 string    `json:"title"`
	Description           string    `json:"description"`
	TargetMarket          string    `json:"target_market"`
	MarketSize            float64   `json:"market_size"`
	RevenueModel          string    `json:"revenue_model"`
	InitialInvestment     float64   `json:"initial_investment"`
	ProjectedProfit       float64   `json:"projected_profit"`
	ProfitabilityTier     string    `json:"profitability_tier"`
	Timeline              string    `json:"timeline"`
	CompanyAssets         []string  `json:"company_assets"`
	NetworkPartners       []string  `json:"network_partners"`
	CapabilityScenario    string    `json:"capability_scenario"`
	TAM                   float64   `json:"tam"`
	SAM                   float64   `json:"sam"`
	SOM                   float64   `json:"som"`
	EstimatedProfitMargin float64   `json:"estimated_profit_margin"`
	IsSelected            bool      `json:"is_selected"`
	CreatedAt             time.Time `json:"created_at"`
}
