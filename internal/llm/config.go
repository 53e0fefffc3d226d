package llm

// ModelTier represents the complexity level of a model. Summaries,
// relevance scoring, and scenario writing use the lite tier; intent
// analysis the standard tier; idea generation the advanced tier.
type ModelTier string

const (
	// TierLite is for simple tasks: summarization, relevance scoring, scenario writing
	TierLite ModelTier = "lite"
	// TierStandard is for moderate reasoning: intent analysis, extraction
	TierStandard ModelTier = "standard"
	// TierAdvanced is for complex reasoning: idea generation
	TierAdvanced ModelTier = "advanced"
)

// Config holds the model configuration for the application.
type Config struct {
	Models map[ModelTier]string
}

// DefaultConfig returns the default Gemini model mapping.
func DefaultConfig() *Config {
	return &Config{
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
	}
}

// GetModel returns the model name for a tier, or empty if unconfigured.
func (c *Config) GetModel(tier ModelTier) string {
	if c == nil || c.Models == nil {
		return ""
	}
	return c.Models[tier]
}
