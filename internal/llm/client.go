// Package llm provides the generative-text client used by every agent.
// Non-2xx provider responses surface as typed APIErrors so the retry
// policy can act on them.
package llm

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ymori/ideascout/internal/agenterr"
)

// GenerateOptions tunes a single completion call.
type GenerateOptions struct {
	Tier        ModelTier // model tier; empty means TierStandard
	Temperature float32   // 0 means the provider default (0.7)
	MaxTokens   int32     // 0 means no explicit cap
}

// Client is an abstraction over generative-text providers.
type Client interface {
	// GenerateContent generates free text for the prompt.
	GenerateContent(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	// GenerateJSON generates JSON content, with markdown code fences
	// stripped from the response.
	GenerateJSON(ctx context.Context, prompt string, opts GenerateOptions) (string, error)
	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates a client for the configured provider.
func NewClient(ctx context.Context, config *Config, apiKey string) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	return NewGeminiClient(ctx, config, apiKey)
}

// GeminiClient implements Client for Google Gemini.
type GeminiClient struct {
	client *genai.Client
	config *Config
}

// NewGeminiClient creates a new Gemini-backed client.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, agenterr.NewAPIError("LLM API key is not configured", "MISSING_API_KEY", 500, nil)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, agenterr.NewAPIError("failed to create Gemini client: "+err.Error(), "LLM_CLIENT_ERROR", 500, nil)
	}

	return &GeminiClient{client: client, config: config}, nil
}

func (c *GeminiClient) model(opts GenerateOptions) (*genai.GenerativeModel, error) {
	tier := opts.Tier
	if tier == "" {
		tier = TierStandard
	}
	name := c.config.GetModel(tier)
	if name == "" {
		return nil, agenterr.NewAPIError("no model configured for tier "+string(tier), "LLM_CONFIG_ERROR", 500, nil)
	}

	model := c.client.GenerativeModel(name)
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = 0.7
	}
	model.SetTemperature(temperature)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(opts.MaxTokens)
	}
	return model, nil
}

// GenerateContent generates free text for the prompt.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	model, err := c.model(opts)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", agenterr.NewAPIError("LLM generation failed: "+err.Error(), "LLM_API_ERROR", 502, nil)
	}

	return extractText(resp)
}

// GenerateJSON generates JSON content. The response MIME type is forced
// to JSON and any residual markdown fences are stripped.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, opts GenerateOptions) (string, error) {
	model, err := c.model(opts)
	if err != nil {
		return "", err
	}
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", agenterr.NewAPIError("LLM generation failed: "+err.Error(), "LLM_API_ERROR", 502, nil)
	}

	text, err := extractText(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractText pulls the text parts out of a Gemini response. An empty
// response is a data-quality failure, not a transport failure.
func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &agenterr.DataQualityError{Message: "no candidates in LLM response", Source: "llm"}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &agenterr.DataQualityError{Message: "no content in LLM response", Source: "llm"}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", &agenterr.DataQualityError{Message: "no text parts in LLM response", Source: "llm"}
	}

	return strings.Join(parts, ""), nil
}
