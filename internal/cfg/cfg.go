package cfg

import (
	"errors"
	"flag"
	"fmt"
)

// Config adds app-specific configuration fields to the
// common cfg.Registerable and cfg.Validatable interfaces
type Config struct {
	DrainSeconds             int
	ShutdownBudgetSeconds    int
	APIPort                  int
	APIToken                 string
	DatabaseURL              string
	ClaudeAPIKey             string
	ClaudeModel              string
	Keywords                 string
	KeywordsFile             string
	ToxicThreshold           float64
	SevereToxicThreshold     float64
	ToxicWeight              float64
	SevereToxicWeight        float64
	TruncateChars            int
	ClassifierTimeoutSeconds int
	ScoreConcurrency         int
	HighRiskThreshold        float64
	SlackWebhookURL          string
	RedditUserAgent          string
}

// RegisterFlags binds Config fields to the given FlagSet with defaults inline
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.DrainSeconds, "drain-seconds", 60, "seconds to wait for in-flight requests to drain before shutdown (1..300)")
	fs.IntVar(&c.ShutdownBudgetSeconds, "shutdown-budget-seconds", 90, "total seconds for component shutdown after drain (1..300)")
	fs.IntVar(&c.APIPort, "http-port", 8080, "API listen TCP port (1..65535)")
	fs.StringVar(&c.APIToken, "api-token", "", "bearer token required on all API requests")
	fs.StringVar(&c.DatabaseURL, "database-url", "", "PostgreSQL connection URL (empty = in-memory store)")
	fs.StringVar(&c.ClaudeAPIKey, "claude-api-key", "", "API key for the Claude classifier (empty = keyword-only scoring)")
	fs.StringVar(&c.ClaudeModel, "claude-model", "claude-sonnet-4-20250514", "Claude model to use for toxicity classification")
	fs.StringVar(&c.Keywords, "keywords", "", "comma-separated risk keywords (empty = built-in defaults)")
	fs.StringVar(&c.KeywordsFile, "keywords-file", "", "path to a YAML keyword rule file, overrides -keywords")
	fs.Float64Var(&c.ToxicThreshold, "toxic-threshold", 0.7, "minimum toxic probability that contributes to the risk score (0..1)")
	fs.Float64Var(&c.SevereToxicThreshold, "severe-toxic-threshold", 0.5, "minimum severe_toxic probability that contributes to the risk score (0..1)")
	fs.Float64Var(&c.ToxicWeight, "toxic-weight", 1.0, "multiplier applied to the toxic probability")
	fs.Float64Var(&c.SevereToxicWeight, "severe-toxic-weight", 1.5, "multiplier applied to the severe_toxic probability")
	fs.IntVar(&c.TruncateChars, "truncate-chars", 512, "maximum characters of content sent to the classifier")
	fs.IntVar(&c.ClassifierTimeoutSeconds, "classifier-timeout-seconds", 15, "per-post classifier call timeout (1..120)")
	fs.IntVar(&c.ScoreConcurrency, "score-concurrency", 4, "maximum concurrent classifier calls per scan (1..64)")
	fs.Float64Var(&c.HighRiskThreshold, "high-risk-threshold", 0.7, "minimum risk score for the high-risk report (0..1)")
	fs.StringVar(&c.SlackWebhookURL, "slack-webhook-url", "", "Slack webhook URL for scan notifications")
	fs.StringVar(&c.RedditUserAgent, "reddit-user-agent", "sentinel/1.0", "User-Agent header sent to the Reddit API")
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

	// API token is required, every endpoint mutates or reads review state
	if c.APIToken == "" {
		errs = append(errs, errors.New("API_TOKEN is required"))
	}

	if c.ClaudeModel == "" {
		errs = append(errs, errors.New("CLAUDE_MODEL is required"))
	}

	// Negated range form so NaN is rejected too
	if !(c.ToxicThreshold >= 0 && c.ToxicThreshold <= 1) {
		errs = append(errs, fmt.Errorf("invalid TOXIC_THRESHOLD %g (must be 0..1)", c.ToxicThreshold))
	}
	if !(c.SevereToxicThreshold >= 0 && c.SevereToxicThreshold <= 1) {
		errs = append(errs, fmt.Errorf("invalid SEVERE_TOXIC_THRESHOLD %g (must be 0..1)", c.SevereToxicThreshold))
	}
	if !(c.ToxicWeight >= 0) {
		errs = append(errs, fmt.Errorf("invalid TOXIC_WEIGHT %g (must be >= 0)", c.ToxicWeight))
	}
	if !(c.SevereToxicWeight >= 0) {
		errs = append(errs, fmt.Errorf("invalid SEVERE_TOXIC_WEIGHT %g (must be >= 0)", c.SevereToxicWeight))
	}
	if !(c.HighRiskThreshold >= 0 && c.HighRiskThreshold <= 1) {
		errs = append(errs, fmt.Errorf("invalid HIGH_RISK_THRESHOLD %g (must be 0..1)", c.HighRiskThreshold))
	}

	if c.TruncateChars <= 0 {
		errs = append(errs, fmt.Errorf("invalid TRUNCATE_CHARS %d (must be > 0)", c.TruncateChars))
	}
	if c.ClassifierTimeoutSeconds <= 0 || c.ClassifierTimeoutSeconds > 120 {
		errs = append(errs, fmt.Errorf("invalid CLASSIFIER_TIMEOUT_SECONDS %d (must be 1..120)", c.ClassifierTimeoutSeconds))
	}
	if c.ScoreConcurrency <= 0 || c.ScoreConcurrency > 64 {
		errs = append(errs, fmt.Errorf("invalid SCORE_CONCURRENCY %d (must be 1..64)", c.ScoreConcurrency))
	}

	if c.RedditUserAgent == "" {
		errs = append(errs, errors.New("REDDIT_USER_AGENT is required"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}
