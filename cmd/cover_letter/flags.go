package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/cover-letter/internal/config"
)

// runFlags are the flags shared by generate and extract.
type runFlags struct {
	configPath     string
	url            string
	jobText        string
	company        string
	position       string
	apiKeys        []string
	model          string
	aiRetries      int
	maxRetries     int
	bodyTimeout    int
	settleDelay    int
	hostingDomains []string
	databaseURL    string
	postingDir     string
	verbose        bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	// Config file flag (processed first)
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")

	cmd.Flags().StringVarP(&f.url, "url", "u", "", "Job posting URL")
	cmd.Flags().StringVar(&f.jobText, "job-text", "", "Path to pasted job posting text, used when the page yields no content")
	cmd.Flags().StringVar(&f.company, "company", "", "Company name, used when extraction finds none (requires --position)")
	cmd.Flags().StringVar(&f.position, "position", "", "Position title, used when extraction finds none (requires --company)")

	// API keys can be passed as flags, or read from GEMINI_API_KEYS / GEMINI_API_KEY / GEMINI_API_KEY_2
	cmd.Flags().StringSliceVar(&f.apiKeys, "api-key", nil, "Gemini API key; repeat to add fallback keys used on quota exhaustion")
	cmd.Flags().StringVar(&f.model, "model", "", "Gemini model name (default gemini-2.5-flash)")
	cmd.Flags().IntVar(&f.aiRetries, "ai-retries", 0, "Quota failovers per AI request")
	cmd.Flags().IntVar(&f.maxRetries, "max-retries", 0, "Browser attempts per posting")
	cmd.Flags().IntVar(&f.bodyTimeout, "body-timeout", 0, "Seconds to wait for the page body")
	cmd.Flags().IntVar(&f.settleDelay, "settle-delay", 0, "Milliseconds to wait after each navigation")
	cmd.Flags().StringSliceVar(&f.hostingDomains, "hosting-domain", nil, "Domains that redirect to login walls (default linkedin.com)")

	// Database URL for run persistence
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().StringVar(&f.postingDir, "save-posting", "", "Directory to write the cleaned posting and its metadata to")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print retrieved text, extracted details and generated narrative")
}

// resolve loads the config file, applies explicitly set flags on top and fills defaults.
func (f *runFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return config.Config{}, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	// Only override if the flag was explicitly set
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.JobURL = f.url
	}
	if flags.Changed("job-text") {
		cfg.JobText = f.jobText
	}
	if flags.Changed("company") {
		cfg.Company = f.company
	}
	if flags.Changed("position") {
		cfg.Position = f.position
	}
	if flags.Changed("api-key") {
		cfg.APIKeys = f.apiKeys
	}
	if flags.Changed("model") {
		cfg.Model = f.model
	}
	if flags.Changed("ai-retries") {
		cfg.AIRetries = f.aiRetries
	}
	if flags.Changed("max-retries") {
		cfg.MaxRetries = f.maxRetries
	}
	if flags.Changed("body-timeout") {
		cfg.BodyTimeoutSeconds = f.bodyTimeout
	}
	if flags.Changed("settle-delay") {
		cfg.SettleDelayMs = f.settleDelay
	}
	if flags.Changed("hosting-domain") {
		cfg.HostingDomains = f.hostingDomains
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())

	if cfg.JobURL == "" {
		return config.Config{}, fmt.Errorf("--url must be provided (via flag or config)")
	}
	if len(cfg.APIKeys) == 0 {
		cfg.APIKeys = config.APIKeysFromEnv()
	}
	if len(cfg.APIKeys) == 0 {
		return config.Config{}, fmt.Errorf("GEMINI_API_KEY environment variable or --api-key flag is required")
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
