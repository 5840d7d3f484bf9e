// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the CLI configuration that can be loaded from a JSON or YAML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Input: posting URL, pasted posting file and manual job details
	JobURL   string `json:"job_url,omitempty" yaml:"job_url,omitempty" validate:"omitempty,url"`
	JobText  string `json:"job_text,omitempty" yaml:"job_text,omitempty"`
	Company  string `json:"company,omitempty" yaml:"company,omitempty"`
	Position string `json:"position,omitempty" yaml:"position,omitempty"`

	// AI: keys rotate on quota exhaustion
	APIKeys   []string `json:"api_keys,omitempty" yaml:"api_keys,omitempty"`
	Model     string   `json:"model,omitempty" yaml:"model,omitempty"`
	AIRetries int      `json:"ai_retries,omitempty" yaml:"ai_retries,omitempty" validate:"gte=0,lte=10"`

	// Retrieval
	MaxRetries         int      `json:"max_retries,omitempty" yaml:"max_retries,omitempty" validate:"gte=0,lte=10"`
	BodyTimeoutSeconds int      `json:"body_timeout_seconds,omitempty" yaml:"body_timeout_seconds,omitempty" validate:"gte=0,lte=300"`
	SettleDelayMs      int      `json:"settle_delay_ms,omitempty" yaml:"settle_delay_ms,omitempty" validate:"gte=0,lte=60000"`
	HostingDomains     []string `json:"hosting_domains,omitempty" yaml:"hosting_domains,omitempty" validate:"omitempty,dive,fqdn"`

	// Output
	Template  string `json:"template,omitempty" yaml:"template,omitempty"`
	OutputDir string `json:"output_dir,omitempty" yaml:"output_dir,omitempty"`
	Format    string `json:"format,omitempty" yaml:"format,omitempty" validate:"omitempty,oneof=text txt latex tex pdf"`

	// Behavior
	DatabaseURL string `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	Verbose     bool   `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// Defaults returns the built-in configuration values.
func Defaults() Config {
	return Config{
		AIRetries:          3,
		MaxRetries:         3,
		BodyTimeoutSeconds: 10,
		SettleDelayMs:      1000,
		HostingDomains:     []string{"linkedin.com"},
		OutputDir:          ".",
		Format:             "text",
	}
}

// LoadConfig loads configuration from a JSON file, or a YAML file when the
// extension is .yaml or .yml.
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
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	return &cfg, nil
}

// Validate checks field ranges and formats, and that referenced files exist.
// Required values are checked by the CLI after merging flags.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			fe := fieldErrs[0]
			return fmt.Errorf("config error: '%s' failed '%s' validation", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("config error: %w", err)
	}

	if (c.Company == "") != (c.Position == "") {
		return fmt.Errorf("config error: 'company' and 'position' must be set together")
	}

	if c.Template != "" {
		if _, err := os.Stat(c.Template); os.IsNotExist(err) {
			return fmt.Errorf("config error: template file not found: %s", c.Template)
		}
	}

	if c.JobText != "" {
		if _, err := os.Stat(c.JobText); os.IsNotExist(err) {
			return fmt.Errorf("config error: job text file not found: %s", c.JobText)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.JobURL == "" {
		result.JobURL = defaults.JobURL
	}
	if result.JobText == "" {
		result.JobText = defaults.JobText
	}
	if result.Company == "" {
		result.Company = defaults.Company
	}
	if result.Position == "" {
		result.Position = defaults.Position
	}
	if result.Model == "" {
		result.Model = defaults.Model
	}
	if result.Template == "" {
		result.Template = defaults.Template
	}
	if result.OutputDir == "" {
		result.OutputDir = defaults.OutputDir
	}
	if result.Format == "" {
		result.Format = defaults.Format
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	// Slice fields: use default if empty
	if len(result.APIKeys) == 0 {
		result.APIKeys = defaults.APIKeys
	}
	if len(result.HostingDomains) == 0 {
		result.HostingDomains = defaults.HostingDomains
	}

	// Int fields: use default if zero
	if result.AIRetries == 0 {
		result.AIRetries = defaults.AIRetries
	}
	if result.MaxRetries == 0 {
		result.MaxRetries = defaults.MaxRetries
	}
	if result.BodyTimeoutSeconds == 0 {
		result.BodyTimeoutSeconds = defaults.BodyTimeoutSeconds
	}
	if result.SettleDelayMs == 0 {
		result.SettleDelayMs = defaults.SettleDelayMs
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// BodyTimeout returns the body wait as a duration.
func (c *Config) BodyTimeout() time.Duration {
	return time.Duration(c.BodyTimeoutSeconds) * time.Second
}

// SettleDelay returns the post-navigation wait as a duration.
func (c *Config) SettleDelay() time.Duration {
	return time.Duration(c.SettleDelayMs) * time.Millisecond
}

// APIKeysFromEnv reads Gemini keys from GEMINI_API_KEYS (comma separated) or,
// when that is unset, from GEMINI_API_KEY and GEMINI_API_KEY_2.
func APIKeysFromEnv() []string {
	if list := os.Getenv("GEMINI_API_KEYS"); list != "" {
		return splitKeys(list)
	}

	var keys []string
	for _, name := range []string{"GEMINI_API_KEY", "GEMINI_API_KEY_2"} {
		if key := strings.TrimSpace(os.Getenv(name)); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func splitKeys(list string) []string {
	var keys []string
	for _, key := range strings.Split(list, ",") {
		if key = strings.TrimSpace(key); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}
