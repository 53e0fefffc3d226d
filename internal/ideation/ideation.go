// Package ideation implements the idea generation stage: it turns the
// collected market research into scored business ideas, enriches each
// with a capability utilization scenario, and evaluates profitability
// deterministically.
package ideation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ymori/ideascout/internal/agent"
	"github.com/ymori/ideascout/internal/agenterr"
	"github.com/ymori/ideascout/internal/collect"
	"github.com/ymori/ideascout/internal/db"
	"github.com/ymori/ideascout/internal/llm"
	"github.com/ymori/ideascout/internal/progress"
	"github.com/ymori/ideascout/internal/prompts"
	"github.com/ymori/ideascout/internal/schemas"
)

// AgentName identifies this stage in progress records.
const AgentName = "ideation"

// DefaultIdeaCount is how many ideas one run generates.
const DefaultIdeaCount = 5

// trendsInPrompt bounds how many trends feed the draft prompt.
const trendsInPrompt = 5

// Input is the research handed over from the collection stage.
type Input struct {
	Analysis collect.UserAnalysis    `json:"analysis"`
	Trends   []collect.CategoryTrend `json:"trends"`
}

// Idea is one generated business idea.
type Idea struct {
	Title                 string   `json:"title"`
	Description           string   `json:"description"`
	TargetMarket          string   `json:"target_market"`
	RevenueModel          string   `json:"revenue_model"`
	Timeline              string   `json:"timeline"`
	MarketSize            float64  `json:"market_size"`
	TAM                   float64  `json:"tam"`
	SAM                   float64  `json:"sam"`
	SOM                   float64  `json:"som"`
	EstimatedProfitMargin float64  `json:"estimated_profit_margin"`
	ProjectedProfit       float64  `json:"projected_profit"`
	InitialInvestment     float64  `json:"initial_investment"`
	ProfitabilityTier     string   `json:"profitability_tier"`
	CapabilityCategories  []string `json:"capability_categories,omitempty"`
	CapabilityScenario    string   `json:"capability_scenario,omitempty"`
	CompanyAssets         []string `json:"company_assets,omitempty"`
	NetworkPartners       []string `json:"network_partners,omitempty"`
}

// Output is the stage result payload.
type Output struct {
	Ideas []Idea `json:"ideas"`
}

// Store is the persistence surface this stage depends on.
type Store interface {
	InsertIdeas(ctx context.Context, sessionID uuid.UUID, inputs []db.IdeaInput) ([]db.IdeaRow, error)
}

// Agent runs the ideation stage with injected collaborators.
type Agent struct {
	runner    *agent.Runner
	llm       llm.Client
	store     Store
	ideaCount int
}

// Option customizes an Agent.
type Option func(*Agent)

// WithIdeaCount overrides how many ideas are requested per run.
func WithIdeaCount(n int) Option {
	return func(a *Agent) {
		if n > 0 {
			a.ideaCount = n
		}
	}
}

// WithStageTimeout overrides the stage-wide deadline.
func WithStageTimeout(d time.Duration) Option {
	return func(a *Agent) {
		a.runner = agent.NewRunner(AgentName, a.runner.Reporter(), d)
	}
}

// New creates the stage agent.
func New(reporter *progress.Reporter, llmClient llm.Client, store Store, opts ...Option) *Agent {
	a := &Agent{
		runner:    agent.NewRunner(AgentName, reporter, 0),
		llm:       llmClient,
		store:     store,
		ideaCount: DefaultIdeaCount,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run executes the stage for one session.
func (a *Agent) Run(ctx context.Context, sessionID uuid.UUID, input Input) agent.StageResult[Output] {
	return agent.Run(ctx, a.runner, sessionID, func(ctx context.Context) (Output, error) {
		return a.execute(ctx, sessionID, input)
	})
}

func (a *Agent) execute(ctx context.Context, sessionID uuid.UUID, input Input) (Output, error) {
	rep := a.runner.Reporter()

	rep.Report(ctx, sessionID, AgentName, 10, "事業アイデアを生成しています", progress.StatusInProgress)
	ideas, err := a.generateDrafts(ctx, input)
	if err != nil {
		return Output{}, err
	}

	rep.Report(ctx, sessionID, AgentName, 40, "ケイパビリティ活用シナリオを作成しています", progress.StatusInProgress)
	for i := range ideas {
		a.enrichWithCapabilities(ctx, &ideas[i])
		pct := 40 + (i+1)*30/len(ideas)
		msg := fmt.Sprintf("シナリオ作成 %d/%d 完了", i+1, len(ideas))
		rep.Report(ctx, sessionID, AgentName, pct, msg, progress.StatusInProgress)
	}

	rep.Report(ctx, sessionID, AgentName, 80, "収益性を評価しています", progress.StatusInProgress)
	for i := range ideas {
		p := EvaluateProfitability(ideas[i].MarketSize, ideas[i].SOM, ideas[i].EstimatedProfitMargin)
		ideas[i].ProjectedProfit = p.ProjectedProfit
		ideas[i].InitialInvestment = p.InitialInvestment
		ideas[i].ProfitabilityTier = p.Tier
	}

	sort.SliceStable(ideas, func(i, j int) bool {
		return ideas[i].ProjectedProfit > ideas[j].ProjectedProfit
	})

	rep.Report(ctx, sessionID, AgentName, 90, "アイデアを保存しています", progress.StatusInProgress)
	if err := a.persist(ctx, sessionID, ideas); err != nil {
		return Output{}, err
	}

	return Output{Ideas: ideas}, nil
}

// generateDrafts asks the LLM for idea drafts and validates them
// against the draft schema. Invalid drafts are a data-quality failure.
func (a *Agent) generateDrafts(ctx context.Context, input Input) ([]Idea, error) {
	analysisJSON, err := json.Marshal(input.Analysis)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	prompt := prompts.Format(prompts.MustGet("ideation.json", "idea-drafts"), map[string]string{
		"IdeaCount": fmt.Sprintf("%d", a.ideaCount),
		"Analysis":  string(analysisJSON),
		"Trends":    formatTrends(input.Trends),
	})

	raw, err := agent.CallRemote(ctx, func(ctx context.Context) (string, error) {
		return a.llm.GenerateJSON(ctx, prompt, llm.GenerateOptions{Tier: llm.TierAdvanced, Temperature: 0.8})
	}, 3, "idea generation")
	if err != nil {
		return nil, err
	}

	if verr := schemas.ValidateIdeaDrafts(raw); verr != nil {
		details := map[string]any{}
		var ve *schemas.ValidationError
		if errors.As(verr, &ve) {
			details["fields"] = ve.Fields()
		}
		return nil, &agenterr.DataQualityError{
			Message: "generated ideas did not match the expected structure",
			Source:  "llm",
			Details: details,
		}
	}

	var drafts struct {
		Ideas []Idea `json:"ideas"`
	}
	if uerr := json.Unmarshal([]byte(raw), &drafts); uerr != nil {
		return nil, &agenterr.DataQualityError{
			Message: "generated ideas are not valid JSON: " + uerr.Error(),
			Source:  "llm",
		}
	}

	for i := range drafts.Ideas {
		if drafts.Ideas[i].MarketSize < MinMarketSize {
			drafts.Ideas[i].MarketSize = MinMarketSize
		}
		if drafts.Ideas[i].EstimatedProfitMargin <= 0 {
			drafts.Ideas[i].EstimatedProfitMargin = DefaultProfitMargin
		}
	}
	return drafts.Ideas, nil
}

// enrichWithCapabilities attaches a capability scenario to the idea.
// Scenario generation is best-effort: on failure the idea keeps its
// selected capability categories and empty scenario fields.
func (a *Agent) enrichWithCapabilities(ctx context.Context, idea *Idea) {
	ideaText := strings.Join([]string{idea.Title, idea.Description, idea.TargetMarket}, " ")
	selected := SelectCapabilities(ideaText, 3)

	categories := make([]string, 0, len(selected))
	var capDesc strings.Builder
	for _, capability := range selected {
		categories = append(categories, capability.Category)
		fmt.Fprintf(&capDesc, "- %s（%s）: %s\n  主要アセット: %s\n  ネットワーク: %s\n",
			capability.Name, capability.Category, capability.Description,
			strings.Join(capability.Assets, "、"),
			strings.Join(capability.Networks, "、"))
	}
	idea.CapabilityCategories = categories

	ideaJSON, err := json.Marshal(idea)
	if err != nil {
		return
	}

	prompt := prompts.Format(prompts.MustGet("ideation.json", "capability-scenario"), map[string]string{
		"Idea":         string(ideaJSON),
		"Capabilities": capDesc.String(),
	})

	scenario, err := agent.CallRemote(ctx, func(ctx context.Context) (string, error) {
		return a.llm.GenerateContent(ctx, prompt, llm.GenerateOptions{Tier: llm.TierLite})
	}, 2, "capability scenario for "+idea.Title)
	if err != nil {
		log.Printf("[%s] capability scenario failed for %q, continuing without: %v", AgentName, idea.Title, err)
		return
	}

	idea.CapabilityScenario = strings.TrimSpace(scenario)
	idea.CompanyAssets = ExtractAssets(idea.CapabilityScenario)
	idea.NetworkPartners = ExtractNetworks(idea.CapabilityScenario)
}

// persist saves the final ideas. Unlike progress telemetry, losing the
// ideas defeats the session, so a write failure fails the stage.
func (a *Agent) persist(ctx context.Context, sessionID uuid.UUID, ideas []Idea) error {
	if a.store == nil {
		return nil
	}

	inputs := make([]db.IdeaInput, 0, len(ideas))
	for _, idea := range ideas {
		inputs = append(inputs, db.IdeaInput{
			Title:                 idea.Title,
			Description:           idea.Description,
			TargetMarket:          idea.TargetMarket,
			MarketSize:            idea.MarketSize,
			RevenueModel:          idea.RevenueModel,
			InitialInvestment:     idea.InitialInvestment,
			ProjectedProfit:       idea.ProjectedProfit,
			ProfitabilityTier:     idea.ProfitabilityTier,
			Timeline:              idea.Timeline,
			CompanyAssets:         idea.CompanyAssets,
			NetworkPartners:       idea.NetworkPartners,
			CapabilityScenario:    idea.CapabilityScenario,
			TAM:                   idea.TAM,
			SAM:                   idea.SAM,
			SOM:                   idea.SOM,
			EstimatedProfitMargin: idea.EstimatedProfitMargin,
		})
	}

	if _, err := a.store.InsertIdeas(ctx, sessionID, inputs); err != nil {
		return agenterr.NewAPIError("アイデアの保存に失敗しました: "+err.Error(), "IDEA_SAVE_FAILED", 500, nil)
	}
	return nil
}

func formatTrends(trends []collect.CategoryTrend) string {
	limit := trendsInPrompt
	if limit > len(trends) {
		limit = len(trends)
	}

	var sb strings.Builder
	for _, trend := range trends[:limit] {
		fmt.Fprintf(&sb, "## %s\n%s\n", trend.CategoryName, trend.Summary)
		if len(trend.KeyTrends) > 0 {
			fmt.Fprintf(&sb, "主要トレンド: %s\n", strings.Join(trend.KeyTrends, "、"))
		}
		if trend.MarketSize != nil {
			fmt.Fprintf(&sb, "市場規模: %.1f%s\n", trend.MarketSize.Value, trend.MarketSize.Unit)
		}
	}
	return sb.String()
}
