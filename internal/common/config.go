package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration
type Config struct {
	Environment  string             `toml:"environment"` // "development" or "production"
	Storage      StorageConfig      `toml:"storage"`
	Logging      LoggingConfig      `toml:"logging"`
	Gemini       GeminiConfig       `toml:"gemini"`
	Claude       ClaudeConfig       `toml:"claude"`
	OpenAI       OpenAIConfig       `toml:"openai"`
	Orchestrator OrchestratorConfig `toml:"orchestrator"`
	Ledger       LedgerConfig       `toml:"ledger"`
	Variants     VariantsConfig     `toml:"variants"`
}

type StorageConfig struct {
	Badger BadgerConfig `toml:"badger"`
}

// BadgerConfig represents BadgerDB-specific configuration
type BadgerConfig struct {
	Path           string `toml:"path"`             // Database directory path
	ResetOnStartup bool   `toml:"reset_on_startup"` // Delete database on startup for clean test runs
}

type LoggingConfig struct {
	Level  string   `toml:"level"`  // "debug", "info", "warn", "error"
	Output []string `toml:"output"` // "stdout", "file"
}

// GeminiConfig configures the Gemini provider adapter (free-quota tier).
type GeminiConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`    // per-call timeout, e.g. "30s"
	RateLimit   string  `toml:"rate_limit"` // minimum interval between availability probes
	Temperature float32 `toml:"temperature"`
}

// ClaudeConfig configures the Claude provider adapter (paid fallback).
type ClaudeConfig struct {
	APIKey      string  `toml:"api_key"`
	Model       string  `toml:"model"`
	Timeout     string  `toml:"timeout"`
	MaxTokens   int     `toml:"max_tokens"`
	Temperature float32 `toml:"temperature"`
}

// OpenAIConfig configures the OpenAI-compatible HTTP adapter, typically a
// self-hosted or local chat-completions endpoint used as the last fallback.
type OpenAIConfig struct {
	BaseURL string `toml:"base_url"`
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	Timeout string `toml:"timeout"`
}

// OrchestratorConfig controls adapter selection and per-call bounds.
type OrchestratorConfig struct {
	// Priority is the fixed adapter fallback order. Adapters not listed are
	// not constructed. Default: gemini, claude, openai.
	Priority []string `toml:"priority"`

	// CallTimeout bounds every individual adapter call, e.g. "45s".
	CallTimeout string `toml:"call_timeout"`
}

// LedgerConfig controls spend thresholds and retention for the usage ledger.
type LedgerConfig struct {
	WarningThreshold  float64 `toml:"warning_threshold"`  // daily estimated spend (USD)
	CriticalThreshold float64 `toml:"critical_threshold"` // daily estimated spend (USD)
	RetentionSchedule string  `toml:"retention_schedule"` // cron expression for the prune sweep
}

// VariantsConfig controls AI variant generation defaults.
type VariantsConfig struct {
	DefaultCount int `toml:"default_count"` // candidates per variant request (3-5)
}

// NewDefaultConfig creates a configuration with default values.
// Scoring point values and cache TTL policy are deliberately not exposed here;
// they are policy constants owned by their services.
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Storage: StorageConfig{
			Badger: BadgerConfig{
				Path: "./data",
			},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Output: []string{"stdout", "file"},
		},
		Gemini: GeminiConfig{
			APIKey:      "", // User must provide API key (GEMINI_API_KEY or config)
			Model:       "gemini-3-flash-preview",
			Timeout:     "45s",
			RateLimit:   "4s", // 15 RPM free tier
			Temperature: 0.7,
		},
		Claude: ClaudeConfig{
			APIKey:      "", // User must provide API key (ANTHROPIC_API_KEY or config)
			Model:       "claude-haiku-3-5-20241022",
			Timeout:     "45s",
			MaxTokens:   2048,
			Temperature: 0.7,
		},
		OpenAI: OpenAIConfig{
			BaseURL: "",
			APIKey:  "",
			Model:   "gpt-4o-mini",
			Timeout: "45s",
		},
		Orchestrator: OrchestratorConfig{
			Priority:    []string{"gemini", "claude", "openai"},
			CallTimeout: "45s",
		},
		Ledger: LedgerConfig{
			WarningThreshold:  5.0,
			CriticalThreshold: 20.0,
			RetentionSchedule: "0 0 3 * * *", // daily at 03:00
		},
		Variants: VariantsConfig{
			DefaultCount: 5,
		},
	}
}

// LoadFromFiles loads configuration from multiple files with priority:
// default -> file1 -> file2 -> ... -> env. Later files override earlier files.
func LoadFromFiles(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	for i, path := range paths {
		if path == "" {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s (file %d of %d): %w", path, i+1, len(paths), err)
		}
	}

	applyEnvOverrides(config)

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("CENSEO_ENV"); env != "" {
		config.Environment = env
	} else if env := os.Getenv("GO_ENV"); env != "" {
		config.Environment = env
	}

	if badgerPath := os.Getenv("CENSEO_BADGER_PATH"); badgerPath != "" {
		config.Storage.Badger.Path = badgerPath
	}

	if level := os.Getenv("CENSEO_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if output := os.Getenv("CENSEO_LOG_OUTPUT"); output != "" {
		outputs := []string{}
		for _, o := range strings.Split(output, ",") {
			if o = strings.TrimSpace(o); o != "" {
				outputs = append(outputs, o)
			}
		}
		if len(outputs) > 0 {
			config.Logging.Output = outputs
		}
	}

	// Provider API keys follow the vendors' conventional variable names with
	// CENSEO_-prefixed overrides taking precedence.
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("CENSEO_GEMINI_API_KEY"); key != "" {
		config.Gemini.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if key := os.Getenv("CENSEO_CLAUDE_API_KEY"); key != "" {
		config.Claude.APIKey = key
	}
	if url := os.Getenv("CENSEO_OPENAI_BASE_URL"); url != "" {
		config.OpenAI.BaseURL = url
	}
	if key := os.Getenv("CENSEO_OPENAI_API_KEY"); key != "" {
		config.OpenAI.APIKey = key
	}

	if warn := os.Getenv("CENSEO_LEDGER_WARNING"); warn != "" {
		if v, err := strconv.ParseFloat(warn, 64); err == nil {
			config.Ledger.WarningThreshold = v
		}
	}
	if crit := os.Getenv("CENSEO_LEDGER_CRITICAL"); crit != "" {
		if v, err := strconv.ParseFloat(crit, 64); err == nil {
			config.Ledger.CriticalThreshold = v
		}
	}
}

// validate rejects configurations that cannot produce a working core.
func (c *Config) validate() error {
	if len(c.Orchestrator.Priority) == 0 {
		return fmt.Errorf("orchestrator.priority must list at least one provider")
	}
	for _, p := range c.Orchestrator.Priority {
		switch p {
		case "gemini", "claude", "openai":
		default:
			return fmt.Errorf("orchestrator.priority contains unknown provider %q", p)
		}
	}
	if c.Ledger.WarningThreshold < 0 || c.Ledger.CriticalThreshold < 0 {
		return fmt.Errorf("ledger thresholds must be non-negative")
	}
	if c.Ledger.CriticalThreshold > 0 && c.Ledger.WarningThreshold > c.Ledger.CriticalThreshold {
		return fmt.Errorf("ledger.warning_threshold must not exceed ledger.critical_threshold")
	}
	if c.Variants.DefaultCount != 0 && (c.Variants.DefaultCount < 3 || c.Variants.DefaultCount > 5) {
		return fmt.Errorf("variants.default_count must be between 3 and 5")
	}
	if _, err := c.CallTimeout(); err != nil {
		return err
	}
	return nil
}

// CallTimeout parses the orchestrator per-call timeout.
func (c *Config) CallTimeout() (time.Duration, error) {
	if c.Orchestrator.CallTimeout == "" {
		return 45 * time.Second, nil
	}
	d, err := time.ParseDuration(c.Orchestrator.CallTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid orchestrator.call_timeout %q: %w", c.Orchestrator.CallTimeout, err)
	}
	return d, nil
}

// IsProduction returns true when running in production mode
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}
