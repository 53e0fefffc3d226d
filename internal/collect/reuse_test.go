package collect

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ymori/ideascout/internal/categories"
	"github.com/ymori/ideascout/internal/db"
)

func storedTrends(t *testing.T, age time.Duration, ids []string) []db.ResearchData {
	t.Helper()
	now := time.Now()
	trends := make([]db.ResearchData, 0, len(ids))
	for _, id := range ids {
		trends = append(trends, db.ResearchData{
			ID:          uuid.New(),
			SessionID:   uuid.New(),
			Category:    db.ResearchCategoryMarketTrend,
			Subcategory: id,
			DataType:    db.ResearchTypeTrend,
			Title:       id + " trend",
			Content:     []byte(`{"category_id":"` + id + `","summary":"stored"}`),
			CreatedAt:   now.Add(-age),
		})
	}
	return trends
}

func TestWantsRefresh(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"最新の市場動向を調べてほしい", true},
		{"データを更新してください", true},
		{"再調査をお願いします", true},
		{"Please use the LATEST data", true},
		{"refresh the research", true},
		{"スマートシティ事業を検討したい", false},
		{"不動産業界でのAI活用を考えたい", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, WantsRefresh(tt.input))
		})
	}
}

func TestShouldReuseFreshFullCoverage(t *testing.T) {
	trends := storedTrends(t, 2*24*time.Hour, categories.AllIDs())

	assert.True(t, ShouldReuse("スマートシティ事業を検討したい", trends, time.Now(), DefaultMaxTrendAge))
}

func TestShouldReuseStaleData(t *testing.T) {
	trends := storedTrends(t, 8*24*time.Hour, categories.AllIDs())

	assert.False(t, ShouldReuse("スマートシティ事業を検討したい", trends, time.Now(), DefaultMaxTrendAge))
}

func TestShouldReuseRefreshKeywordWins(t *testing.T) {
	// Fresh full coverage is irrelevant when the user asks for new data.
	trends := storedTrends(t, 1*24*time.Hour, categories.AllIDs())

	assert.False(t, ShouldReuse("最新のスマートシティ動向で検討したい", trends, time.Now(), DefaultMaxTrendAge))
}

func TestShouldReusePartialCoverage(t *testing.T) {
	ids := categories.AllIDs()
	trends := storedTrends(t, 1*24*time.Hour, ids[:len(ids)-1])

	assert.False(t, ShouldReuse("事業を検討したい", trends, time.Now(), DefaultMaxTrendAge))
}

func TestShouldReuseEmptyStore(t *testing.T) {
	assert.False(t, ShouldReuse("事業を検討したい", nil, time.Now(), DefaultMaxTrendAge))
}

func TestShouldReuseDeterministic(t *testing.T) {
	trends := storedTrends(t, 3*24*time.Hour, categories.AllIDs())
	now := time.Now()

	first := ShouldReuse("オフィス事業のアイデアが欲しい", trends, now, DefaultMaxTrendAge)
	second := ShouldReuse("オフィス事業のアイデアが欲しい", trends, now, DefaultMaxTrendAge)
	assert.Equal(t, first, second)
	assert.True(t, first)
}

func TestCanReuseBoundary(t *testing.T) {
	// Exactly at the threshold counts as stale.
	atLimit := storedTrends(t, DefaultMaxTrendAge, categories.AllIDs())
	justInside := storedTrends(t, DefaultMaxTrendAge-time.Hour, categories.AllIDs())
	now := time.Now()

	assert.False(t, CanReuse(atLimit, now, DefaultMaxTrendAge))
	assert.True(t, CanReuse(justInside, now, DefaultMaxTrendAge))
}

func TestCanReuseIgnoresNonTrendRows(t *testing.T) {
	trends := storedTrends(t, time.Hour, categories.AllIDs())
	trends[0].DataType = db.ResearchTypeUserAnalysis

	assert.False(t, CanReuse(trends, time.Now(), DefaultMaxTrendAge))
}
