// Package collect implements the information collection stage: it reads
// the user's intent, decides whether previously persisted research is
// still usable, and otherwise gathers fresh market trends for every
// category via web search and LLM summarization.
package collect

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ymori/ideascout/internal/agent"
	"github.com/ymori/ideascout/internal/agenterr"
	"github.com/ymori/ideascout/internal/batch"
	"github.com/ymori/ideascout/internal/categories"
	"github.com/ymori/ideascout/internal/db"
	"github.com/ymori/ideascout/internal/llm"
	"github.com/ymori/ideascout/internal/progress"
	"github.com/ymori/ideascout/internal/prompts"
	"github.com/ymori/ideascout/internal/schemas"
	"github.com/ymori/ideascout/internal/search"
)

// collectConcurrency bounds parallel category collection.
const collectConcurrency = 3

// Store is the persistence surface this stage depends on.
type Store interface {
	InsertResearchData(ctx context.Context, sessionID uuid.UUID, inputs []db.ResearchDataInput) ([]db.ResearchData, error)
	LatestCategoryTrends(ctx context.Context) ([]db.ResearchData, error)
}

// Agent runs the information collection stage. All collaborators are
// injected; the zero value is not usable.
type Agent struct {
	runner         *agent.Runner
	llm            llm.Client
	search         search.Client
	store          Store
	maxTrendAge    time.Duration
	minReliability float64
	now            func() time.Time
}

// Option customizes an Agent.
type Option func(*Agent)

// WithMaxTrendAge overrides the staleness threshold for stored trends.
func WithMaxTrendAge(d time.Duration) Option {
	return func(a *Agent) {
		if d > 0 {
			a.maxTrendAge = d
		}
	}
}

// WithStageTimeout overrides the stage-wide deadline.
func WithStageTimeout(d time.Duration) Option {
	return func(a *Agent) {
		a.runner = agent.NewRunner(AgentName, a.runner.Reporter(), d)
	}
}

// WithMinReliability sets the reliability floor below which a category's
// search quality is logged as a warning. Zero disables the warning.
func WithMinReliability(v float64) Option {
	return func(a *Agent) {
		if v > 0 {
			a.minReliability = v
		}
	}
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(a *Agent) {
		a.now = now
	}
}

// New creates the stage agent with injected collaborators.
func New(reporter *progress.Reporter, llmClient llm.Client, searchClient search.Client, store Store, opts ...Option) *Agent {
	a := &Agent{
		runner:      agent.NewRunner(AgentName, reporter, 0),
		llm:         llmClient,
		search:      searchClient,
		store:       store,
		maxTrendAge: DefaultMaxTrendAge,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the stage for one session.
func (a *Agent) Run(ctx context.Context, sessionID uuid.UUID, userInput string) agent.StageResult[Output] {
	return agent.Run(ctx, a.runner, sessionID, func(ctx context.Context) (Output, error) {
		return a.execute(ctx, sessionID, userInput)
	})
}

func (a *Agent) execute(ctx context.Context, sessionID uuid.UUID, userInput string) (Output, error) {
	rep := a.runner.Reporter()

	rep.Report(ctx, sessionID, AgentName, 5, "ユーザー入力を分析しています", progress.StatusInProgress)
	analysis := a.analyzeUserInput(ctx, userInput)

	rep.Report(ctx, sessionID, AgentName, 15, "既存調査データの再利用可否を判定しています", progress.StatusInProgress)
	stored := a.loadStoredTrends(ctx)

	if ShouldReuse(userInput, stored, a.now(), a.maxTrendAge) {
		trends := a.reuseTrends(ctx, analysis, stored)
		rep.Report(ctx, sessionID, AgentName, 90, "既存の調査データを再利用します", progress.StatusInProgress)
		// Trend rows already exist; only the per-session analysis row
		// is written.
		a.persist(ctx, sessionID, analysis, nil)
		return Output{Analysis: analysis, Trends: trends, Reused: true}, nil
	}

	trends, err := a.collectAll(ctx, sessionID, analysis)
	if err != nil {
		return Output{}, err
	}

	rep.Report(ctx, sessionID, AgentName, 90, "調査結果を保存しています", progress.StatusInProgress)
	a.persist(ctx, sessionID, analysis, trends)

	return Output{Analysis: analysis, Trends: trends, Reused: false}, nil
}

// analyzeUserInput extracts structured intent from the raw input. A
// failed or invalid LLM response degrades to a generic analysis rather
// than failing the stage.
func (a *Agent) analyzeUserInput(ctx context.Context, userInput string) UserAnalysis {
	prompt := prompts.Format(prompts.MustGet("collection.json", "user-analysis"), map[string]string{
		"UserInput":   userInput,
		"CategoryIDs": strings.Join(categories.AllIDs(), ", "),
	})

	raw, err := agent.CallRemote(ctx, func(ctx context.Context) (string, error) {
		return a.llm.GenerateJSON(ctx, prompt, llm.GenerateOptions{Temperature: 0.3})
	}, 3, "user input analysis")
	if err != nil {
		log.Printf("[%s] user analysis failed, using fallback: %v", AgentName, err)
		return fallbackAnalysis(userInput)
	}

	if verr := schemas.ValidateUserAnalysis(raw); verr != nil {
		log.Printf("[%s] user analysis did not match schema, using fallback: %v", AgentName, verr)
		return fallbackAnalysis(userInput)
	}

	var analysis UserAnalysis
	if uerr := json.Unmarshal([]byte(raw), &analysis); uerr != nil {
		log.Printf("[%s] user analysis unmarshal failed, using fallback: %v", AgentName, uerr)
		return fallbackAnalysis(userInput)
	}
	return analysis
}

func fallbackAnalysis(userInput string) UserAnalysis {
	return UserAnalysis{
		Industry:  "不動産",
		KeyThemes: []string{"新規事業開発"},
		Summary:   strings.TrimSpace(userInput),
	}
}

func (a *Agent) loadStoredTrends(ctx context.Context) []db.ResearchData {
	if a.store == nil {
		return nil
	}
	stored, err := a.store.LatestCategoryTrends(ctx)
	if err != nil {
		log.Printf("[%s] failed to load stored trends, collecting fresh data: %v", AgentName, err)
		return nil
	}
	return stored
}

// collectAll gathers trends for every category in bounded-concurrency
// chunks. A single category failure degrades that category only.
func (a *Agent) collectAll(ctx context.Context, sessionID uuid.UUID, analysis UserAnalysis) ([]CategoryTrend, error) {
	rep := a.runner.Reporter()

	return batch.Run(ctx, categories.All, func(ctx context.Context, cat categories.Category) (CategoryTrend, error) {
		return a.collectCategory(ctx, cat, analysis), nil
	}, batch.Options{
		Concurrency: collectConcurrency,
		OnChunkDone: func(processed, total int) {
			pct := 20 + processed*50/total
			msg := fmt.Sprintf("カテゴリ調査 %d/%d 完了", processed, total)
			rep.Report(ctx, sessionID, AgentName, pct, msg, progress.StatusInProgress)
		},
	})
}

// collectCategory researches one category. Failures never propagate:
// the result degrades to a placeholder trend with zero reliability.
func (a *Agent) collectCategory(ctx context.Context, cat categories.Category, analysis UserAnalysis) CategoryTrend {
	trend := CategoryTrend{
		CategoryID:   cat.ID,
		CategoryName: cat.Name,
		Relevance:    relevanceHeuristic(analysis, cat),
		CollectedAt:  a.now(),
	}

	queries := buildQueries(cat, a.now().Year())
	responses := a.search.BatchSearch(ctx, queries, search.Options{Num: search.DefaultResultCount, Locale: "ja"})

	var results []search.Result
	for _, q := range queries {
		if resp, ok := responses[q]; ok {
			results = append(results, resp.Organic...)
		}
	}

	if len(results) == 0 {
		log.Printf("[%s] no search results for category %s, degrading", AgentName, cat.ID)
		trend.Summary = cat.Name + "の外部データを取得できませんでした"
		trend.Degraded = true
		return trend
	}

	quality := search.EvaluateQuality(results)
	if a.minReliability > 0 && quality.Score < a.minReliability {
		log.Printf("[%s] low reliability for category %s: %.2f < %.2f (%s)",
			AgentName, cat.ID, quality.Score, a.minReliability, strings.Join(quality.Issues, "; "))
	}
	trend.Reliability = quality.Score
	trend.Sources = results
	trend.MarketSize = search.ExtractMarketSize(joinSnippets(results))

	summary, keyTrends, err := a.summarize(ctx, cat, results)
	if err != nil {
		log.Printf("[%s] trend summary failed for category %s, degrading: %v", AgentName, cat.ID, err)
		trend.Summary = truncateRunes(joinSnippets(results), 200)
		trend.Degraded = true
		return trend
	}

	trend.Summary = summary
	trend.KeyTrends = keyTrends
	return trend
}

func buildQueries(cat categories.Category, year int) []string {
	queries := make([]string, 0, len(cat.Keywords))
	for _, kw := range cat.Keywords {
		queries = append(queries, fmt.Sprintf("%s 市場動向 %d", kw, year))
	}
	return queries
}

type trendSummary struct {
	Summary   string   `json:"summary"`
	KeyTrends []string `json:"key_trends"`
}

func (a *Agent) summarize(ctx context.Context, cat categories.Category, results []search.Result) (string, []string, error) {
	prompt := prompts.Format(prompts.MustGet("collection.json", "trend-summary"), map[string]string{
		"CategoryName":  cat.Name,
		"SearchResults": formatResults(results),
	})

	raw, err := agent.CallRemote(ctx, func(ctx context.Context) (string, error) {
		return a.llm.GenerateJSON(ctx, prompt, llm.GenerateOptions{Tier: llm.TierLite})
	}, 2, "trend summary for "+cat.ID)
	if err != nil {
		return "", nil, err
	}

	var ts trendSummary
	if uerr := json.Unmarshal([]byte(raw), &ts); uerr != nil {
		return "", nil, &agenterr.DataQualityError{
			Message: "trend summary is not valid JSON: " + uerr.Error(),
			Source:  "llm",
			Details: map[string]any{"category": cat.ID},
		}
	}
	if ts.Summary == "" {
		return "", nil, &agenterr.DataQualityError{
			Message: "trend summary is empty",
			Source:  "llm",
			Details: map[string]any{"category": cat.ID},
		}
	}
	return ts.Summary, ts.KeyTrends, nil
}

// reuseTrends rebuilds CategoryTrends from stored artifacts, recomputes
// relevance against the current analysis, and returns them sorted by
// relevance descending.
func (a *Agent) reuseTrends(ctx context.Context, analysis UserAnalysis, stored []db.ResearchData) []CategoryTrend {
	byID := make(map[string]CategoryTrend, len(stored))
	for _, rd := range stored {
		if rd.DataType != db.ResearchTypeTrend {
			continue
		}
		var trend CategoryTrend
		if err := json.Unmarshal(rd.Content, &trend); err != nil {
			log.Printf("[%s] skipping unreadable stored trend %s: %v", AgentName, rd.Subcategory, err)
			continue
		}
		if trend.CategoryID == "" {
			trend.CategoryID = rd.Subcategory
		}
		if trend.CollectedAt.IsZero() {
			trend.CollectedAt = rd.CreatedAt
		}
		byID[trend.CategoryID] = trend
	}

	trends := make([]CategoryTrend, 0, len(byID))
	for _, id := range categories.AllIDs() {
		if trend, ok := byID[id]; ok {
			trends = append(trends, trend)
		}
	}

	scores := a.scoreRelevance(ctx, analysis, trends)
	for i := range trends {
		if score, ok := scores[trends[i].CategoryID]; ok {
			trends[i].Relevance = clamp01(score)
		} else if cat := categories.ByID(trends[i].CategoryID); cat != nil {
			trends[i].Relevance = relevanceHeuristic(analysis, *cat)
		}
	}

	sort.SliceStable(trends, func(i, j int) bool {
		return trends[i].Relevance > trends[j].Relevance
	})
	return trends
}

// scoreRelevance asks the LLM to rate stored trends against the current
// analysis. Returns nil on any failure; callers fall back to the
// keyword heuristic.
func (a *Agent) scoreRelevance(ctx context.Context, analysis UserAnalysis, trends []CategoryTrend) map[string]float64 {
	analysisJSON, err := json.Marshal(analysis)
	if err != nil {
		return nil
	}

	var sb strings.Builder
	for _, trend := range trends {
		fmt.Fprintf(&sb, "- %s: %s\n", trend.CategoryID, truncateRunes(trend.Summary, 100))
	}

	prompt := prompts.Format(prompts.MustGet("collection.json", "relevance-scores"), map[string]string{
		"Analysis": string(analysisJSON),
		"Trends":   sb.String(),
	})

	raw, err := agent.CallRemote(ctx, func(ctx context.Context) (string, error) {
		return a.llm.GenerateJSON(ctx, prompt, llm.GenerateOptions{Tier: llm.TierLite, Temperature: 0.2})
	}, 2, "relevance scoring")
	if err != nil {
		log.Printf("[%s] relevance scoring failed, using keyword heuristic: %v", AgentName, err)
		return nil
	}

	var scores map[string]float64
	if uerr := json.Unmarshal([]byte(raw), &scores); uerr != nil {
		log.Printf("[%s] relevance scores unreadable, using keyword heuristic: %v", AgentName, uerr)
		return nil
	}
	return scores
}

// persist writes collected trends and the user analysis. Degraded
// trends are not persisted: an empty placeholder would count toward
// category coverage and block recollection for the whole staleness
// window. Write failures are logged; the stage still returns its
// in-memory result.
func (a *Agent) persist(ctx context.Context, sessionID uuid.UUID, analysis UserAnalysis, trends []CategoryTrend) {
	if a.store == nil {
		return
	}

	inputs := make([]db.ResearchDataInput, 0, len(trends)+1)
	for _, trend := range trends {
		if trend.Degraded {
			continue
		}
		inputs = append(inputs, db.ResearchDataInput{
			Category:         db.ResearchCategoryMarketTrend,
			Subcategory:      trend.CategoryID,
			DataType:         db.ResearchTypeTrend,
			Title:            trend.CategoryName + "の市場トレンド",
			Content:          trend,
			ReliabilityScore: trend.Reliability,
		})
	}
	inputs = append(inputs, db.ResearchDataInput{
		Category:         db.ResearchCategoryGeneral,
		DataType:         db.ResearchTypeUserAnalysis,
		Title:            "ユーザー入力分析",
		Content:          analysis,
		ReliabilityScore: 1.0,
	})

	if _, err := a.store.InsertResearchData(ctx, sessionID, inputs); err != nil {
		log.Printf("[%s] failed to persist research data: %v", AgentName, err)
	}
}

// relevanceHeuristic scores a category against the analysis without an
// LLM call. Baseline 0.5, boosted by preferred-category and keyword
// matches, capped at 1.0.
func relevanceHeuristic(analysis UserAnalysis, cat categories.Category) float64 {
	score := 0.5
	for _, id := range analysis.PreferredCategories {
		if id == cat.ID {
			score += 0.3
		}
	}

	vocabulary := strings.ToLower(strings.Join(append(append([]string{cat.Name}, cat.Keywords...), cat.FocusAreas...), " "))
	for _, theme := range analysis.KeyThemes {
		theme = strings.ToLower(strings.TrimSpace(theme))
		if theme != "" && strings.Contains(vocabulary, theme) {
			score += 0.1
		}
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func joinSnippets(results []search.Result) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		parts = append(parts, r.Snippet)
	}
	return strings.Join(parts, " ")
}

func formatResults(results []search.Result) string {
	var sb strings.Builder
	for i, r := range results {
		fmt.Fprintf(&sb, "%d. %s\n%s\n", i+1, r.Title, r.Snippet)
	}
	return sb.String()
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
