package cfg

import (
	"flag"
	"math"
	"strings"
	"testing"
)

// validBase returns a Config with all required fields set to valid values.
func validBase() Config {
	return Config{
		DrainSeconds:             60,
		ShutdownBudgetSeconds:    90,
		APIPort:                  8080,
		APIToken:                 "test-token-123",
		ClaudeModel:              "claude-sonnet-4-20250514",
		ToxicThreshold:           0.7,
		SevereToxicThreshold:     0.5,
		ToxicWeight:              1.0,
		SevereToxicWeight:        1.5,
		TruncateChars:            512,
		ClassifierTimeoutSeconds: 15,
		ScoreConcurrency:         4,
		HighRiskThreshold:        0.7,
		RedditUserAgent:          "sentinel/1.0",
	}
}

func TestRegisterFlags_Defaults(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	if err := fs.Parse(nil); err != nil {
		t.Fatalf("parse empty args: %v", err)
	}

	if c.DrainSeconds != 60 {
		t.Errorf("DrainSeconds = %d, want 60", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 90 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 90", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 8080 {
		t.Errorf("APIPort = %d, want 8080", c.APIPort)
	}
	if c.ClaudeModel != "claude-sonnet-4-20250514" {
		t.Errorf("ClaudeModel = %q, want %q", c.ClaudeModel, "claude-sonnet-4-20250514")
	}
	if c.ToxicThreshold != 0.7 {
		t.Errorf("ToxicThreshold = %g, want 0.7", c.ToxicThreshold)
	}
	if c.SevereToxicThreshold != 0.5 {
		t.Errorf("SevereToxicThreshold = %g, want 0.5", c.SevereToxicThreshold)
	}
	if c.SevereToxicWeight != 1.5 {
		t.Errorf("SevereToxicWeight = %g, want 1.5", c.SevereToxicWeight)
	}
	if c.TruncateChars != 512 {
		t.Errorf("TruncateChars = %d, want 512", c.TruncateChars)
	}
	if c.ScoreConcurrency != 4 {
		t.Errorf("ScoreConcurrency = %d, want 4", c.ScoreConcurrency)
	}
	if c.HighRiskThreshold != 0.7 {
		t.Errorf("HighRiskThreshold = %g, want 0.7", c.HighRiskThreshold)
	}
	if c.RedditUserAgent != "sentinel/1.0" {
		t.Errorf("RedditUserAgent = %q, want %q", c.RedditUserAgent, "sentinel/1.0")
	}
}

func TestRegisterFlags_Override(t *testing.T) {
	t.Parallel()

	var c Config
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c.RegisterFlags(fs)

	args := []string{
		"-drain-seconds", "30",
		"-shutdown-budget-seconds", "120",
		"-http-port", "9090",
		"-api-token", "tok-override",
		"-claude-api-key", "sk-override",
		"-claude-model", "claude-opus-4-20250514",
		"-keywords", "breach,exploit",
		"-toxic-threshold", "0.9",
		"-score-concurrency", "8",
	}
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse args: %v", err)
	}

	if c.DrainSeconds != 30 {
		t.Errorf("DrainSeconds = %d, want 30", c.DrainSeconds)
	}
	if c.ShutdownBudgetSeconds != 120 {
		t.Errorf("ShutdownBudgetSeconds = %d, want 120", c.ShutdownBudgetSeconds)
	}
	if c.APIPort != 9090 {
		t.Errorf("APIPort = %d, want 9090", c.APIPort)
	}
	if c.APIToken != "tok-override" {
		t.Errorf("APIToken = %q, want %q", c.APIToken, "tok-override")
	}
	if c.ClaudeAPIKey != "sk-override" {
		t.Errorf("ClaudeAPIKey = %q, want %q", c.ClaudeAPIKey, "sk-override")
	}
	if c.ClaudeModel != "claude-opus-4-20250514" {
		t.Errorf("ClaudeModel = %q, want %q", c.ClaudeModel, "claude-opus-4-20250514")
	}
	if c.Keywords != "breach,exploit" {
		t.Errorf("Keywords = %q, want %q", c.Keywords, "breach,exploit")
	}
	if c.ToxicThreshold != 0.9 {
		t.Errorf("ToxicThreshold = %g, want 0.9", c.ToxicThreshold)
	}
	if c.ScoreConcurrency != 8 {
		t.Errorf("ScoreConcurrency = %d, want 8", c.ScoreConcurrency)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	mutate := func(fn func(*Config)) Config {
		c := validBase()
		fn(&c)
		return c
	}

	tests := []struct {
		name      string
		cfg       Config
		wantErr   bool
		errSubstr []string // substrings that must appear in error message
	}{
		{
			name:    "defaults are valid",
			cfg:     validBase(),
			wantErr: false,
		},
		{
			name: "minimum valid values",
			cfg: mutate(func(c *Config) {
				c.DrainSeconds = 1
				c.ShutdownBudgetSeconds = 2
				c.APIPort = 1
				c.ToxicThreshold = 0
				c.SevereToxicThreshold = 0
				c.ToxicWeight = 0
				c.SevereToxicWeight = 0
				c.TruncateChars = 1
				c.ClassifierTimeoutSeconds = 1
				c.ScoreConcurrency = 1
				c.HighRiskThreshold = 0
			}),
			wantErr: false,
		},
		{
			name: "maximum valid values",
			cfg: mutate(func(c *Config) {
				c.DrainSeconds = 299
				c.ShutdownBudgetSeconds = 300
				c.APIPort = 65535
				c.ToxicThreshold = 1
				c.SevereToxicThreshold = 1
				c.ClassifierTimeoutSeconds = 120
				c.ScoreConcurrency = 64
				c.HighRiskThreshold = 1
			}),
			wantErr: false,
		},
		// DrainSeconds boundaries
		{
			name:      "drain zero",
			cfg:       mutate(func(c *Config) { c.DrainSeconds = 0 }),
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		{
			name:      "drain negative",
			cfg:       mutate(func(c *Config) { c.DrainSeconds = -1 }),
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS"},
		},
		{
			name: "drain above max",
			cfg: mutate(func(c *Config) {
				c.DrainSeconds = 301
				c.ShutdownBudgetSeconds = 302
			}),
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS"},
		},
		// Cross-field: budget vs drain
		{
			name:      "budget equals drain",
			cfg:       mutate(func(c *Config) { c.ShutdownBudgetSeconds = c.DrainSeconds }),
			wantErr:   true,
			errSubstr: []string{"must be greater than"},
		},
		{
			name:      "budget less than drain",
			cfg:       mutate(func(c *Config) { c.ShutdownBudgetSeconds = 30 }),
			wantErr:   true,
			errSubstr: []string{"must be greater than"},
		},
		// APIPort boundaries
		{
			name:      "port zero",
			cfg:       mutate(func(c *Config) { c.APIPort = 0 }),
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		{
			name:      "port above max",
			cfg:       mutate(func(c *Config) { c.APIPort = 65536 }),
			wantErr:   true,
			errSubstr: []string{"HTTP_PORT"},
		},
		// Required strings
		{
			name:      "empty api token",
			cfg:       mutate(func(c *Config) { c.APIToken = "" }),
			wantErr:   true,
			errSubstr: []string{"API_TOKEN"},
		},
		{
			name:      "empty claude model",
			cfg:       mutate(func(c *Config) { c.ClaudeModel = "" }),
			wantErr:   true,
			errSubstr: []string{"CLAUDE_MODEL"},
		},
		{
			name:      "empty reddit user agent",
			cfg:       mutate(func(c *Config) { c.RedditUserAgent = "" }),
			wantErr:   true,
			errSubstr: []string{"REDDIT_USER_AGENT"},
		},
		// Scoring knobs
		{
			name:      "toxic threshold above one",
			cfg:       mutate(func(c *Config) { c.ToxicThreshold = 1.1 }),
			wantErr:   true,
			errSubstr: []string{"TOXIC_THRESHOLD"},
		},
		{
			name:      "severe threshold negative",
			cfg:       mutate(func(c *Config) { c.SevereToxicThreshold = -0.1 }),
			wantErr:   true,
			errSubstr: []string{"SEVERE_TOXIC_THRESHOLD"},
		},
		{
			name:      "negative toxic weight",
			cfg:       mutate(func(c *Config) { c.ToxicWeight = -1 }),
			wantErr:   true,
			errSubstr: []string{"TOXIC_WEIGHT"},
		},
		{
			name:      "negative severe weight",
			cfg:       mutate(func(c *Config) { c.SevereToxicWeight = -0.5 }),
			wantErr:   true,
			errSubstr: []string{"SEVERE_TOXIC_WEIGHT"},
		},
		{
			name:      "high risk threshold above one",
			cfg:       mutate(func(c *Config) { c.HighRiskThreshold = 2 }),
			wantErr:   true,
			errSubstr: []string{"HIGH_RISK_THRESHOLD"},
		},
		{
			name:      "truncate chars zero",
			cfg:       mutate(func(c *Config) { c.TruncateChars = 0 }),
			wantErr:   true,
			errSubstr: []string{"TRUNCATE_CHARS"},
		},
		{
			name:      "classifier timeout above max",
			cfg:       mutate(func(c *Config) { c.ClassifierTimeoutSeconds = 121 }),
			wantErr:   true,
			errSubstr: []string{"CLASSIFIER_TIMEOUT_SECONDS"},
		},
		{
			name:      "concurrency zero",
			cfg:       mutate(func(c *Config) { c.ScoreConcurrency = 0 }),
			wantErr:   true,
			errSubstr: []string{"SCORE_CONCURRENCY"},
		},
		{
			name:      "concurrency above max",
			cfg:       mutate(func(c *Config) { c.ScoreConcurrency = 65 }),
			wantErr:   true,
			errSubstr: []string{"SCORE_CONCURRENCY"},
		},
		// Error accumulation: many fields invalid at once
		{
			name:      "all fields invalid",
			cfg:       Config{},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS", "HTTP_PORT", "API_TOKEN", "CLAUDE_MODEL", "TRUNCATE_CHARS", "CLASSIFIER_TIMEOUT_SECONDS", "SCORE_CONCURRENCY", "REDDIT_USER_AGENT"},
		},
		// Extreme values
		{
			name: "extreme negative values",
			cfg: Config{
				DrainSeconds:          math.MinInt32,
				ShutdownBudgetSeconds: math.MinInt32,
				APIPort:               math.MinInt32,
			},
			wantErr:   true,
			errSubstr: []string{"DRAIN_SECONDS", "SHUTDOWN_BUDGET_SECONDS", "HTTP_PORT"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				errMsg := err.Error()
				for _, sub := range tt.errSubstr {
					if !strings.Contains(errMsg, sub) {
						t.Errorf("error %q does not contain %q", errMsg, sub)
					}
				}
			}
		})
	}
}

func FuzzValidate(f *testing.F) {
	// Seeds: defaults, boundaries, extremes
	seeds := []struct {
		drain, budget, port int
		token, model, agent string
		toxic, severe       float64
	}{
		{60, 90, 8080, "tok", "claude-sonnet", "sentinel/1.0", 0.7, 0.5},
		{1, 2, 1, "t", "m", "a", 0, 0},
		{299, 300, 65535, "t", "m", "a", 1, 1},
		{0, 0, 0, "", "", "", -1, 2},
		{300, 300, 65535, "t", "m", "a", 0.5, 0.5},
		{math.MinInt32, math.MinInt32, math.MinInt32, "", "", "", 0, 0},
		{math.MaxInt32, math.MaxInt32, math.MaxInt32, "", "", "", 0, 0},
	}
	for _, s := range seeds {
		f.Add(s.drain, s.budget, s.port, s.token, s.model, s.agent, s.toxic, s.severe)
	}

	f.Fuzz(func(t *testing.T, drain, budget, port int, token, model, agent string, toxic, severe float64) {
		c := validBase()
		c.DrainSeconds = drain
		c.ShutdownBudgetSeconds = budget
		c.APIPort = port
		c.APIToken = token
		c.ClaudeModel = model
		c.RedditUserAgent = agent
		c.ToxicThreshold = toxic
		c.SevereToxicThreshold = severe
		err := c.Validate()

		drainOK := drain >= 1 && drain <= 300
		budgetOK := budget >= 1 && budget <= 300
		portOK := port >= 1 && port <= 65535
		crossOK := budget > drain
		tokenOK := token != ""
		modelOK := model != ""
		agentOK := agent != ""
		toxicOK := toxic >= 0 && toxic <= 1
		severeOK := severe >= 0 && severe <= 1

		allValid := drainOK && budgetOK && portOK && crossOK && tokenOK && modelOK && agentOK && toxicOK && severeOK

		if allValid && err != nil {
			t.Errorf("expected no error for valid config %+v, got: %v", c, err)
		}
		if !allValid && err == nil {
			t.Errorf("expected error for invalid config %+v, got nil", c)
		}
	})
}
