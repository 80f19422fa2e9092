package harness

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/codedrop/internal/engine"
)

// Scenario defines a multi-day publication scenario.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Start is the first day, YYYY-MM-DD.
	Start string `yaml:"start"`

	// Store selects the history backend: "json" (default) or "sqlite".
	Store string `yaml:"store,omitempty"`

	// Corpus maps corpus-relative paths to file contents.
	Corpus map[string]string `yaml:"corpus"`

	// History seeds the history before the first day. File keys are
	// corpus-relative paths.
	History *HistorySeed `yaml:"history,omitempty"`

	// CommentPattern overrides the engine's comment detection.
	CommentPattern string `yaml:"comment_pattern,omitempty"`

	// RescanEnriched redacts annotated text as well.
	RescanEnriched bool `yaml:"rescan_enriched,omitempty"`

	// Annotation, if set, replaces the annotator's output.
	Annotation string `yaml:"annotation,omitempty"`

	// Days run in order.
	Days []Day `yaml:"days"`

	// Assertions validate the final history and everything published.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// HistorySeed is a starting history.
type HistorySeed struct {
	Files       map[string]string `yaml:"files"`
	UploadDates []string          `yaml:"upload_dates"`
}

// Day is one calendar day of a scenario.
type Day struct {
	// Advance moves the clock forward this many days before the runs.
	Advance int `yaml:"advance,omitempty"`

	// Write creates or replaces corpus files before the runs.
	Write map[string]string `yaml:"write,omitempty"`

	// Remove deletes corpus files before the runs.
	Remove []string `yaml:"remove,omitempty"`

	// Fail injects collaborator failures for this day only.
	Fail *Failures `yaml:"fail,omitempty"`

	// Runs is how many times the engine runs this day. Defaults to 1.
	Runs int `yaml:"runs,omitempty"`

	// Expect is the outcome of the first run.
	Expect string `yaml:"expect"`

	// File is the corpus-relative path the first run should select.
	File string `yaml:"file,omitempty"`

	// FailedAt is the state the first run should fail in.
	FailedAt string `yaml:"failed_at,omitempty"`
}

// Failures names the collaborator calls that fail, with their messages.
type Failures struct {
	Annotate  string            `yaml:"annotate,omitempty"`
	Describe  string            `yaml:"describe,omitempty"`
	Create    string            `yaml:"create,omitempty"`
	Artifacts map[string]string `yaml:"artifacts,omitempty"`
	Save      string            `yaml:"save,omitempty"`
}

// Assertion validates the final state of a scenario.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Count is used by published_count.
	Count int `yaml:"count,omitempty"`

	// Dates is used by history_dates.
	Dates []string `yaml:"dates,omitempty"`

	// File is used by history_contains.
	File string `yaml:"file,omitempty"`

	// Container and Artifact are used by artifact_contains.
	Container string `yaml:"container,omitempty"`
	Artifact  string `yaml:"artifact,omitempty"`

	// Text is used by artifact_contains and never_published.
	Text string `yaml:"text,omitempty"`
}

// Assertion types.
const (
	AssertPublishedCount   = "published_count"
	AssertHistoryDates     = "history_dates"
	AssertHistoryContains  = "history_contains"
	AssertArtifactContains = "artifact_contains"
	AssertNeverPublished   = "never_published"
)

var validOutcomes = map[string]bool{
	string(engine.OutcomePublished):               true,
	string(engine.OutcomeSkippedAlreadyPublished): true,
	string(engine.OutcomeSkippedNothingNew):       true,
	string(engine.OutcomeFailed):                  true,
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:".
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if _, err := time.Parse(engine.DateLayout, s.Start); err != nil {
		return fmt.Errorf("start must be a YYYY-MM-DD date: %q", s.Start)
	}
	switch s.Store {
	case "", "json", "sqlite":
	default:
		return fmt.Errorf("unknown store %q (want json or sqlite)", s.Store)
	}
	if len(s.Days) == 0 {
		return fmt.Errorf("days list is required and must be non-empty")
	}

	for rel := range s.Corpus {
		if err := validRelPath(rel); err != nil {
			return fmt.Errorf("corpus: %w", err)
		}
	}

	for i, day := range s.Days {
		if day.Advance < 0 {
			return fmt.Errorf("days[%d]: advance must be non-negative", i)
		}
		if day.Runs < 0 {
			return fmt.Errorf("days[%d]: runs must be non-negative", i)
		}
		if !validOutcomes[day.Expect] {
			return fmt.Errorf("days[%d]: unknown expected outcome %q", i, day.Expect)
		}
		if day.FailedAt != "" && day.Expect != string(engine.OutcomeFailed) {
			return fmt.Errorf("days[%d]: failed_at requires expect: failed", i)
		}
		for rel := range day.Write {
			if err := validRelPath(rel); err != nil {
				return fmt.Errorf("days[%d].write: %w", i, err)
			}
		}
		for _, rel := range day.Remove {
			if err := validRelPath(rel); err != nil {
				return fmt.Errorf("days[%d].remove: %w", i, err)
			}
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertPublishedCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for published_count", index)
		}
	case AssertHistoryDates:
		// An empty list asserts nothing was ever published.
	case AssertHistoryContains:
		if a.File == "" {
			return fmt.Errorf("assertions[%d]: file is required for history_contains", index)
		}
	case AssertArtifactContains:
		if a.Container == "" || a.Artifact == "" || a.Text == "" {
			return fmt.Errorf("assertions[%d]: container, artifact and text are required for artifact_contains", index)
		}
	case AssertNeverPublished:
		if a.Text == "" {
			return fmt.Errorf("assertions[%d]: text is required for never_published", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}

// validRelPath accepts clean, relative, slash-separated paths that stay
// inside the corpus.
func validRelPath(rel string) error {
	if rel == "" || path.IsAbs(rel) || path.Clean(rel) != rel || rel == ".." || strings.HasPrefix(rel, "../") {
		return fmt.Errorf("invalid corpus path %q", rel)
	}
	return nil
}
