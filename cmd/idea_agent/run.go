package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ymori/ideascout/internal/collect"
	"github.com/ymori/ideascout/internal/config"
	"github.com/ymori/ideascout/internal/db"
	"github.com/ymori/ideascout/internal/ideation"
	"github.com/ymori/ideascout/internal/llm"
	"github.com/ymori/ideascout/internal/observability"
	"github.com/ymori/ideascout/internal/progress"
	"github.com/ymori/ideascout/internal/search"
)

var runCommand = &cobra.Command{
	Use:   "run",
	Short: "Run the full idea generation pipeline end-to-end",
	Long: `Orchestrates the pipeline: user input analysis -> category trend research -> idea generation -> capability matching -> profitability scoring.

Configuration can be loaded from a JSON file using --config. Command-line arguments override config file values.`,
	RunE: runPipelineCmd,
}

var (
	runConfigPath     string
	runInput          string
	runIdeaCount      int
	runMaxTrendAge    int
	runStageTimeout   int
	runAPIKey         string
	runSearchAPIKey   string
	runSearchEngineID string
	runDatabaseURL    string
	runVerbose        bool
)

func init() {
	// Config file flag (processed first)
	runCommand.Flags().StringVar(&runConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	runCommand.Flags().StringVarP(&runInput, "input", "i", "", "Business consideration text to generate ideas for (required)")
	runCommand.Flags().IntVar(&runIdeaCount, "ideas", 0, "Number of ideas to generate")
	runCommand.Flags().IntVar(&runMaxTrendAge, "max-trend-age-days", 0, "Staleness threshold for reusing stored trends")
	runCommand.Flags().IntVar(&runStageTimeout, "stage-timeout-mins", 0, "Per-stage deadline in minutes")
	runCommand.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed debug information")

	// Credentials can be passed as flags, or read from env vars
	runCommand.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API key (optional, defaults to GEMINI_API_KEY env var)")
	runCommand.Flags().StringVar(&runSearchAPIKey, "search-api-key", "", "Google Custom Search API key (optional, defaults to SEARCH_API_KEY env var)")
	runCommand.Flags().StringVar(&runSearchEngineID, "search-engine-id", "", "Custom Search engine ID (optional, defaults to SEARCH_ENGINE_ID env var)")

	// Database URL for session and artifact persistence
	runCommand.Flags().StringVar(&runDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(runCommand)
}

func runPipelineCmd(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	// Step 1: Load config file if provided
	var cfg config.Config
	if runConfigPath != "" {
		loadedCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if err := loadedCfg.Validate(); err != nil {
			return err
		}

		cfg = *loadedCfg
		if runVerbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", runConfigPath)
		}
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	if cmd.Flags().Changed("ideas") {
		cfg.IdeaCount = runIdeaCount
	}
	if cmd.Flags().Changed("max-trend-age-days") {
		cfg.MaxTrendAgeDays = runMaxTrendAge
	}
	if cmd.Flags().Changed("stage-timeout-mins") {
		cfg.StageTimeoutMins = runStageTimeout
	}
	if cmd.Flags().Changed("api-key") {
		cfg.GeminiAPIKey = runAPIKey
	}
	if cmd.Flags().Changed("search-api-key") {
		cfg.SearchAPIKey = runSearchAPIKey
	}
	if cmd.Flags().Changed("search-engine-id") {
		cfg.SearchEngineID = runSearchEngineID
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = runDatabaseURL
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = runVerbose
	}

	// Step 3: Fill unset values from the environment, then defaults
	cfg = cfg.MergeWithDefaults(config.FromEnv())
	if err := cfg.Validate(); err != nil {
		return err
	}

	// Step 4: Validate required fields
	if runInput == "" {
		return fmt.Errorf("--input is required")
	}
	if cfg.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.SearchAPIKey == "" || cfg.SearchEngineID == "" {
		return fmt.Errorf("SEARCH_API_KEY and SEARCH_ENGINE_ID environment variables (or the matching flags) are required")
	}
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
	}

	// Connect to DB for session, progress and artifact persistence
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	llmClient, err := llm.NewClient(ctx, nil, cfg.GeminiAPIKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = llmClient.Close() }()

	searchClient, err := search.NewGoogleClient(ctx, cfg.SearchAPIKey, cfg.SearchEngineID)
	if err != nil {
		return fmt.Errorf("failed to create search client: %w", err)
	}

	session, err := database.CreateSession(ctx, runInput)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	fmt.Printf("Session: %s\n", session.ID)

	if err := database.UpdateSessionStatus(ctx, session.ID, db.SessionStatusInProgress); err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}

	reporter := progress.NewReporter(database)
	printer := observability.NewPrinter(os.Stdout)

	collector := collect.New(reporter, llmClient, searchClient, database,
		collect.WithMaxTrendAge(cfg.MaxTrendAge()),
		collect.WithStageTimeout(cfg.StageTimeout()),
		collect.WithMinReliability(cfg.MinReliability))

	collected := collector.Run(ctx, session.ID, runInput)
	if !collected.Success {
		_ = database.UpdateSessionStatus(ctx, session.ID, db.SessionStatusFailed)
		return fmt.Errorf("information collection failed: %w", collected.Err)
	}
	if collected.Data.Reused {
		fmt.Println("Reusing fresh stored research data")
	}
	if cfg.Verbose {
		printer.PrintUserAnalysis(&collected.Data.Analysis)
		printer.PrintCategoryTrends(collected.Data.Trends)
	}

	ideator := ideation.New(reporter, llmClient, database,
		ideation.WithIdeaCount(cfg.IdeaCount),
		ideation.WithStageTimeout(cfg.StageTimeout()))

	ideated := ideator.Run(ctx, session.ID, ideation.Input{
		Analysis: collected.Data.Analysis,
		Trends:   collected.Data.Trends,
	})
	if !ideated.Success {
		_ = database.UpdateSessionStatus(ctx, session.ID, db.SessionStatusFailed)
		return fmt.Errorf("ideation failed: %w", ideated.Err)
	}

	if err := database.UpdateSessionStatus(ctx, session.ID, db.SessionStatusCompleted); err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}

	printer.PrintIdeas(ideated.Data.Ideas)
	fmt.Printf("Generated %d ideas\n", len(ideated.Data.Ideas))
	return nil
}
