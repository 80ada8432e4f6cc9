// Package cfg holds the application-specific configuration, registered and
// validated the same way as the shared go-core config packages.
package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Triage engine modes.
const (
	ModeClaude = "claude"
	ModeLocal  = "local"
)

// Config carries the deskhive-specific settings.
type Config struct {
	DrainSeconds          int
	ShutdownBudgetSeconds int
	APIPort               int
	APIToken              string

	TriageMode            string
	AnthropicAPIKey       string
	AnthropicModel        string
	TriageTimeoutSeconds  int
	MaxReplyWords         int
	AssigneeMinConfidence float64

	DatabaseURL     string
	DirectoryPath   string
	SlackWebhookURL string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline.
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token required on API requests (empty = auth disabled)")
	fs.StringVar(&c.TriageMode, "triage-mode", ModeClaude, "triage engine: claude (external model) or local (deterministic heuristic)")
	fs.StringVar(&c.AnthropicAPIKey, "anthropic-api-key", "", "API key for the Anthropic LLM provider (required in claude mode)")
	fs.StringVar(&c.AnthropicModel, "anthropic-model", "claude-sonnet-4-20250514", "Anthropic model to use")
	fs.IntVar(&c.TriageTimeoutSeconds, "triage-timeout-seconds", 5, "hard deadline for one triage inference call (1..60)")
	fs.IntVar(&c.MaxReplyWords, "max-reply-words", 120, "word-count cap on generated reply drafts (10..500)")
	fs.Float64Var(&c.AssigneeMinConfidence, "assignee-min-confidence", 0, "suppress assignee suggestions below this priority confidence (0 = disabled)")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.StringVar(&c.DirectoryPath, "directory-path", "", "JSON file with the expertise directory (empty = built-in seed)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for P0 triage notifications")
}

// Validate checks all configuration fields for correctness.
// It returns an error if any field is invalid, or nil if all fields are valid.
func (c *Config) Validate() error {
	var errs []error

	// Drain and shutdown budgets
	if c.DrainSeconds <= 0 || c.DrainSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid DRAIN_SECONDS %d (must be 1..300)", c.DrainSeconds))
	}
	if c.ShutdownBudgetSeconds <= 0 || c.ShutdownBudgetSeconds > 300 {
		errs = append(errs, fmt.Errorf("invalid SHUTDOWN_BUDGET_SECONDS %d (must be 1..300)", c.ShutdownBudgetSeconds))
	}

	// Shutdown budget must be greater than drain time
	if c.ShutdownBudgetSeconds <= c.DrainSeconds {
		errs = append(errs, fmt.Errorf("SHUTDOWN_BUDGET_SECONDS %d must be greater than DRAIN_SECONDS %d", c.ShutdownBudgetSeconds, c.DrainSeconds))
	}

	// API port must be valid TCP port number
	if c.APIPort <= 0 || c.APIPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid HTTP_PORT %d (must be 1..65535)", c.APIPort))
	}

	switch c.TriageMode {
	case ModeClaude:
		// Credentials are a startup concern: failing here beats a
		// configuration error on every triage call.
		if c.AnthropicAPIKey == "" {
			errs = append(errs, errors.New("ANTHROPIC_API_KEY is required in claude mode"))
		}
		if c.AnthropicModel == "" {
			errs = append(errs, errors.New("ANTHROPIC_MODEL is required in claude mode"))
		}
	case ModeLocal:
		// no external service, nothing to require
	default:
		errs = append(errs, fmt.Errorf("invalid TRIAGE_MODE %q (must be claude or local)", c.TriageMode))
	}

	if c.TriageTimeoutSeconds <= 0 || c.TriageTimeoutSeconds > 60 {
		errs = append(errs, fmt.Errorf("invalid TRIAGE_TIMEOUT_SECONDS %d (must be 1..60)", c.TriageTimeoutSeconds))
	}
	if c.MaxReplyWords < 10 || c.MaxReplyWords > 500 {
		errs = append(errs, fmt.Errorf("invalid MAX_REPLY_WORDS %d (must be 10..500)", c.MaxReplyWords))
	}
	if c.AssigneeMinConfidence < 0 || c.AssigneeMinConfidence > 1 {
		errs = append(errs, fmt.Errorf("invalid ASSIGNEE_MIN_CONFIDENCE %v (must be 0..1)", c.AssigneeMinConfidence))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
