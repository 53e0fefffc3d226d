package collect

import (
	"strings"
	"time"

	"github.com/ymori/ideascout/internal/categories"
	"github.com/ymori/ideascout/internal/db"
)

// DefaultMaxTrendAge is how long persisted category trends stay usable
// before a fresh collection is required.
const DefaultMaxTrendAge = 7 * 24 * time.Hour

// refreshKeywords force a fresh collection when present in the user
// input, regardless of how recent the stored trends are.
var refreshKeywords = []string{
	"最新", "更新", "リフレッシュ", "再調査", "新しい",
	"latest", "update", "refresh",
}

// WantsRefresh reports whether the user input explicitly asks for fresh
// data. Matching is case-insensitive.
func WantsRefresh(input string) bool {
	lowered := strings.ToLower(input)
	for _, kw := range refreshKeywords {
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// CanReuse reports whether the stored trends cover every category and
// all of them are younger than maxAge.
func CanReuse(trends []db.ResearchData, now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		maxAge = DefaultMaxTrendAge
	}

	fresh := make(map[string]bool, len(trends))
	for _, trend := range trends {
		if trend.DataType != db.ResearchTypeTrend {
			continue
		}
		if now.Sub(trend.CreatedAt) < maxAge {
			fresh[trend.Subcategory] = true
		}
	}

	for _, id := range categories.AllIDs() {
		if !fresh[id] {
			return false
		}
	}
	return true
}

// ShouldReuse is the full reuse decision: stored trends are reused only
// when the user did not ask for a refresh and CanReuse holds. The
// decision is deterministic for a fixed input, trend set, and clock.
func ShouldReuse(userInput string, trends []db.ResearchData, now time.Time, maxAge time.Duration) bool {
	if WantsRefresh(userInput) {
		return false
	}
	return CanReuse(trends, now, maxAge)
}
