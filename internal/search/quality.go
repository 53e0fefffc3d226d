package search

import (
	"net/url"
	"regexp"
	"strings"
)

// Quality is the reliability assessment for a set of search results.
type Quality struct {
	Score  float64  `json:"score"`
	Issues []string `json:"issues,omitempty"`
}

// EvaluateQuality scores a result set against a 1.0 baseline. Each
// deficiency deducts a fixed amount; the score is floored at 0.
//
// Deductions: fewer than 3 results (−0.3), average snippet shorter than
// 50 characters (−0.2), less than half the results dated (−0.1), less
// than half the hosts unique (−0.2).
func EvaluateQuality(results []Result) Quality {
	score := 1.0
	var issues []string

	if len(results) < 3 {
		issues = append(issues, "fewer than 3 search results")
		score -= 0.3
	}

	if len(results) > 0 {
		totalLen := 0
		for _, r := range results {
			totalLen += len([]rune(r.Snippet))
		}
		if totalLen/len(results) < 50 {
			issues = append(issues, "snippets are too short")
			score -= 0.2
		}

		dated := 0
		hosts := make(map[string]bool)
		for _, r := range results {
			if r.Date != "" {
				dated++
			}
			if u, err := url.Parse(r.Link); err == nil && u.Hostname() != "" {
				hosts[u.Hostname()] = true
			}
		}
		if dated*2 < len(results) {
			issues = append(issues, "date information is sparse")
			score -= 0.1
		}
		if len(hosts)*2 < len(results) {
			issues = append(issues, "source diversity is low")
			score -= 0.2
		}
	}

	if score < 0 {
		score = 0
	}
	return Quality{Score: score, Issues: issues}
}

// snippetDatePattern matches the date prefix Google prepends to recent
// results, e.g. "Mar 3, 2024 ..." or "2024/03/03 ...".
var snippetDatePattern = regexp.MustCompile(`^((?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec) \d{1,2}, \d{4}|\d{4}/\d{1,2}/\d{1,2}|\d{4}年\d{1,2}月\d{1,2}日)`)

// extractSnippetDate pulls a leading date out of a snippet, if present.
func extractSnippetDate(snippet string) string {
	match := snippetDatePattern.FindString(strings.TrimSpace(snippet))
	return match
}
