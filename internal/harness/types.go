package harness

import (
	"fmt"
	"strings"
)

// TraceEvent is the observable result of one engine run.
type TraceEvent struct {
	Day       int    `json:"day"`
	Date      string `json:"date"`
	RunID     string `json:"run_id"`
	Outcome   string `json:"outcome"`
	File      string `json:"file,omitempty"` // corpus-relative, slash separated
	Container string `json:"container,omitempty"`
	Redacted  bool   `json:"redacted,omitempty"`
	Enriched  bool   `json:"enriched,omitempty"`
	FailedAt  string `json:"failed_at,omitempty"`
	Err       string `json:"error,omitempty"` // history error returned by Run
}

// String renders the event as one trace line.
func (e TraceEvent) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "day %d %s %s", e.Day, e.Date, e.Outcome)
	if e.File != "" {
		fmt.Fprintf(&b, " %s", e.File)
	}
	if e.Container != "" {
		fmt.Fprintf(&b, " -> %s", e.Container)
	}
	if e.Redacted {
		b.WriteString(" redacted")
	}
	if e.Enriched {
		b.WriteString(" enriched")
	}
	if e.FailedAt != "" {
		fmt.Fprintf(&b, " at %s", e.FailedAt)
	}
	return b.String()
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every day matched its expectation and every assertion
	// held.
	Pass bool `json:"pass"`

	// Trace has one event per engine run, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation and assertion failures.
	Errors []string `json:"errors,omitempty"`

	// Dates and Files are the final history. Files maps corpus-relative
	// paths to digests; identifiers outside the corpus are kept as is.
	Dates []string          `json:"dates"`
	Files map[string]string `json:"files"`

	// Artifacts lists everything the publisher received, in call order.
	Artifacts []Artifact `json:"artifacts"`

	// Prompts lists every text sent to the model fakes, in call order.
	Prompts []string `json:"-"`
}

// Artifact is one published file.
type Artifact struct {
	Container string `json:"container"`
	Name      string `json:"name"`
	Content   string `json:"content"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
		Dates:  []string{},
		Files:  map[string]string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// PublishedCount returns how many runs published a file.
func (r *Result) PublishedCount() int {
	n := 0
	for _, e := range r.Trace {
		if e.Outcome == "published" {
			n++
		}
	}
	return n
}
