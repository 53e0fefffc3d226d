// Package config provides configuration loading and validation for the
// CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config is the application configuration. All fields are optional;
// missing values use defaults or are read from environment variables.
type Config struct {
	// Credentials
	GeminiAPIKey   string `json:"gemini_api_key,omitempty"`   // Gemini API key
	SearchAPIKey   string `json:"search_api_key,omitempty"`   // Google Custom Search API key
	SearchEngineID string `json:"search_engine_id,omitempty"` // Custom Search engine ID (cx)
	DatabaseURL    string `json:"database_url,omitempty"`     // PostgreSQL connection URL

	// Behavior
	IdeaCount        int     `json:"idea_count,omitempty"`         // Ideas generated per session
	MaxTrendAgeDays  int     `json:"max_trend_age_days,omitempty"` // Staleness threshold for stored trends
	StageTimeoutMins int     `json:"stage_timeout_mins,omitempty"` // Per-stage deadline in minutes
	MinReliability   float64 `json:"min_reliability,omitempty"`    // Reliability floor for search quality warnings
	Verbose          bool    `json:"verbose,omitempty"`            // Print detailed debug information

	// Server
	ListenAddr string `json:"listen_addr,omitempty"` // HTTP listen address, e.g. ":8080"
}

// Defaults.
const (
	DefaultIdeaCount        = 5
	DefaultMaxTrendAgeDays  = 7
	DefaultStageTimeoutMins = 10
	DefaultListenAddr       = ":8080"
)

// LoadConfig loads configuration from a JSON file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv builds a Config from environment variables. Used as the
// default source when no config file is given.
func FromEnv() Config {
	return Config{
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		SearchAPIKey:   os.Getenv("SEARCH_API_KEY"),
		SearchEngineID: os.Getenv("SEARCH_ENGINE_ID"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		ListenAddr:     os.Getenv("LISTEN_ADDR"),
	}
}

// Validate checks that the configuration has valid values. Required
// credentials are checked at client construction, not here.
func (c *Config) Validate() error {
	if c.IdeaCount < 0 {
		return fmt.Errorf("config error: 'idea_count' must be non-negative")
	}
	if c.MaxTrendAgeDays < 0 {
		return fmt.Errorf("config error: 'max_trend_age_days' must be non-negative")
	}
	if c.StageTimeoutMins < 0 {
		return fmt.Errorf("config error: 'stage_timeout_mins' must be non-negative")
	}
	if c.MinReliability < 0 || c.MinReliability > 1 {
		return fmt.Errorf("config error: 'min_reliability' must be between 0 and 1")
	}
	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults, then from the package constants.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.GeminiAPIKey == "" {
		result.GeminiAPIKey = defaults.GeminiAPIKey
	}
	if result.SearchAPIKey == "" {
		result.SearchAPIKey = defaults.SearchAPIKey
	}
	if result.SearchEngineID == "" {
		result.SearchEngineID = defaults.SearchEngineID
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ListenAddr == "" {
		result.ListenAddr = defaults.ListenAddr
	}
	if result.ListenAddr == "" {
		result.ListenAddr = DefaultListenAddr
	}

	if result.IdeaCount == 0 {
		result.IdeaCount = defaults.IdeaCount
	}
	if result.IdeaCount == 0 {
		result.IdeaCount = DefaultIdeaCount
	}
	if result.MaxTrendAgeDays == 0 {
		result.MaxTrendAgeDays = defaults.MaxTrendAgeDays
	}
	if result.MaxTrendAgeDays == 0 {
		result.MaxTrendAgeDays = DefaultMaxTrendAgeDays
	}
	if result.StageTimeoutMins == 0 {
		result.StageTimeoutMins = defaults.StageTimeoutMins
	}
	if result.StageTimeoutMins == 0 {
		result.StageTimeoutMins = DefaultStageTimeoutMins
	}

	return result
}

// MaxTrendAge returns the staleness threshold as a duration.
func (c *Config) MaxTrendAge() time.Duration {
	days := c.MaxTrendAgeDays
	if days <= 0 {
		days = DefaultMaxTrendAgeDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// StageTimeout returns the per-stage deadline as a duration.
func (c *Config) StageTimeout() time.Duration {
	mins := c.StageTimeoutMins
	if mins <= 0 {
		mins = DefaultStageTimeoutMins
	}
	return time.Duration(mins) * time.Minute
}
