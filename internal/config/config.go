// Package config builds the run configuration from defaults, an optional
// file, the environment, and command-line overrides.
//
// The file is named by --config or CODEDROP_CONFIG; there is no automatic
// discovery. YAML, JSON/JSONC and CUE files are accepted and all of them
// are checked against the same CUE schema before use. Credentials are read
// from the environment only.
package config

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/roach88/codedrop/internal/assist"
	"github.com/roach88/codedrop/internal/corpus"
	"github.com/roach88/codedrop/internal/engine"
	"github.com/roach88/codedrop/internal/github"
	"github.com/roach88/codedrop/internal/llm"
	"github.com/roach88/codedrop/internal/redact"
)

// Environment variables.
const (
	EnvConfig      = "CODEDROP_CONFIG"
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvHFAPIKey    = "HF_API_KEY"
)

// Publication targets.
const (
	TargetGitHub    = "github"
	TargetDirectory = "directory"
)

// DefaultHistory is the history file used when none is configured.
const DefaultHistory = "upload_history.json"

// Config is the complete configuration of a run.
type Config struct {
	// Root is the corpus directory.
	Root string `json:"root" yaml:"root"`

	// Patterns are base-name globs selecting candidate files.
	Patterns []string `json:"patterns" yaml:"patterns"`

	// History is the history file. A .db, .sqlite or .sqlite3 extension
	// selects the SQLite backend.
	History string `json:"history" yaml:"history"`

	// CommentPattern detects existing comments; text without a match is
	// annotated.
	CommentPattern string `json:"comment_pattern" yaml:"comment_pattern"`

	// Target is "github" or "directory".
	Target string `json:"target" yaml:"target"`

	// OutputDir is the root of the directory target.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Timeout bounds each HTTP request, e.g. "60s".
	Timeout string `json:"timeout" yaml:"timeout"`

	GitHub GitHubConfig `json:"github" yaml:"github"`
	LLM    LLMConfig    `json:"llm" yaml:"llm"`
	Redact RedactConfig `json:"redact" yaml:"redact"`

	// Credentials. Never read from a file and never serialized.
	GitHubToken string `json:"-" yaml:"-"`
	HFAPIKey    string `json:"-" yaml:"-"`
}

// GitHubConfig configures the github target.
type GitHubConfig struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	Private bool   `json:"private" yaml:"private"`
	Branch  string `json:"branch" yaml:"branch"`
}

// LLMConfig configures the chat completion endpoint.
type LLMConfig struct {
	BaseURL           string `json:"base_url" yaml:"base_url"`
	Model             string `json:"model" yaml:"model"`
	DescribeMaxTokens int    `json:"describe_max_tokens" yaml:"describe_max_tokens"`
	AnnotateMaxTokens int    `json:"annotate_max_tokens" yaml:"annotate_max_tokens"`
}

// RedactConfig extends the built-in redaction rules.
type RedactConfig struct {
	// ExtraRules run after the built-in rules, in order.
	ExtraRules []redact.Rule `json:"extra_rules" yaml:"extra_rules"`

	// RescanEnriched redacts annotated output as well.
	RescanEnriched bool `json:"rescan_enriched" yaml:"rescan_enriched"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Root:           ".",
		Patterns:       append([]string(nil), corpus.DefaultPatterns...),
		History:        DefaultHistory,
		CommentPattern: engine.DefaultCommentPattern,
		Target:         TargetGitHub,
		OutputDir:      "published",
		Timeout:        "60s",
		GitHub: GitHubConfig{
			BaseURL: github.DefaultBaseURL,
			Branch:  "main",
		},
		LLM: LLMConfig{
			BaseURL:           llm.DefaultBaseURL,
			Model:             llm.DefaultModel,
			DescribeMaxTokens: assist.DefaultDescribeMaxTokens,
			AnnotateMaxTokens: assist.DefaultAnnotateMaxTokens,
		},
	}
}

// Overrides are command-line values applied last. Empty fields are ignored.
type Overrides struct {
	Root    string
	History string
	Target  string
}

// Apply overlays non-empty overrides onto c.
func (c *Config) Apply(o Overrides) {
	if o.Root != "" {
		c.Root = o.Root
	}
	if o.History != "" {
		c.History = o.History
	}
	if o.Target != "" {
		c.Target = o.Target
	}
}

// HTTPTimeout returns Timeout parsed. Call Validate first.
func (c *Config) HTTPTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// Scanner compiles the built-in redaction rules plus ExtraRules.
func (c *Config) Scanner() (*redact.Scanner, error) {
	return redact.WithDefaults(c.Redact.ExtraRules...)
}

// Validate checks the settings that do not require credentials.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Root) == "" {
		return &ValidationError{Field: "root", Message: "must not be empty"}
	}
	if len(c.Patterns) == 0 {
		return &ValidationError{Field: "patterns", Message: "at least one pattern is required"}
	}
	for _, p := range c.Patterns {
		if _, err := filepath.Match(p, ""); err != nil {
			return &ValidationError{Field: "patterns", Message: fmt.Sprintf("bad pattern %q: %v", p, err)}
		}
	}
	if strings.TrimSpace(c.History) == "" {
		return &ValidationError{Field: "history", Message: "must not be empty"}
	}
	if _, err := regexp.Compile(c.CommentPattern); err != nil {
		return &ValidationError{Field: "comment_pattern", Message: err.Error()}
	}

	switch c.Target {
	case TargetGitHub:
		if !strings.HasPrefix(c.GitHub.BaseURL, "https://") {
			return &ValidationError{Field: "github.base_url", Message: "must use https"}
		}
	case TargetDirectory:
		if strings.TrimSpace(c.OutputDir) == "" {
			return &ValidationError{Field: "output_dir", Message: "required for the directory target"}
		}
	default:
		return &ValidationError{Field: "target", Message: fmt.Sprintf("unknown target %q (want %s or %s)", c.Target, TargetGitHub, TargetDirectory)}
	}

	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return &ValidationError{Field: "timeout", Message: fmt.Sprintf("invalid duration %q", c.Timeout)}
	}
	if c.LLM.DescribeMaxTokens <= 0 || c.LLM.AnnotateMaxTokens <= 0 {
		return &ValidationError{Field: "llm", Message: "token limits must be positive"}
	}
	if _, err := c.Scanner(); err != nil {
		return &ValidationError{Field: "redact.extra_rules", Message: err.Error()}
	}
	return nil
}

// RequireCredentials checks that the credentials a run needs are present.
// The enrichment key is always needed; the hosting token only for the
// github target.
func (c *Config) RequireCredentials() error {
	var missing []string
	if c.Target == TargetGitHub && strings.TrimSpace(c.GitHubToken) == "" {
		missing = append(missing, EnvGitHubToken)
	}
	if strings.TrimSpace(c.HFAPIKey) == "" {
		missing = append(missing, EnvHFAPIKey)
	}
	if len(missing) > 0 {
		return &ValidationError{
			Field:   "credentials",
			Message: "missing required environment variables: " + strings.Join(missing, ", "),
		}
	}
	return nil
}
