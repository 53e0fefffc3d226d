package collect

import (
	"time"

	"github.com/ymori/ideascout/internal/search"
)

// AgentName identifies this stage in progress records.
const AgentName = "information_collection"

// UserAnalysis is the structured reading of the user's free-text input.
type UserAnalysis struct {
	Industry            string   `json:"industry"`
	BusinessDomain      string   `json:"business_domain,omitempty"`
	KeyThemes           []string `json:"key_themes"`
	PreferredCategories []string `json:"preferred_categories,omitempty"`
	Constraints         []string `json:"constraints,omitempty"`
	Summary             string   `json:"summary,omitempty"`
}

// CategoryTrend is the collected market intelligence for one category.
type CategoryTrend struct {
	CategoryID   string             `json:"category_id"`
	CategoryName string             `json:"category_name"`
	Summary      string             `json:"summary"`
	KeyTrends    []string           `json:"key_trends,omitempty"`
	MarketSize   *search.MarketSize `json:"market_size,omitempty"`
	Sources      []search.Result    `json:"sources,omitempty"`
	Reliability  float64            `json:"reliability_score"`
	Relevance    float64            `json:"relevance_score"`
	Degraded     bool               `json:"degraded,omitempty"`
	CollectedAt  time.Time          `json:"collected_at"`
}

// Output is the stage result payload.
type Output struct {
	Analysis UserAnalysis    `json:"analysis"`
	Trends   []CategoryTrend `json:"trends"`
	Reused   bool            `json:"reused_existing_data"`
}
