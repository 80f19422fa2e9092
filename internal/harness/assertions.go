package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the trace to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			fmt.Fprintf(&buf, "  %s\n", event)
		}
	}
	return buf.String()
}

func assertPublishedCount(result *Result, assertion Assertion) error {
	count := result.PublishedCount()
	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertPublishedCount,
			Expected: fmt.Sprintf("%d publications", assertion.Count),
			Actual:   fmt.Sprintf("%d publications", count),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertHistoryDates(result *Result, assertion Assertion) error {
	want := assertion.Dates
	if want == nil {
		want = []string{}
	}
	if !slices.Equal(result.Dates, want) {
		return &AssertionError{
			Type:     AssertHistoryDates,
			Expected: fmt.Sprintf("dates %v", want),
			Actual:   fmt.Sprintf("dates %v", result.Dates),
			Trace:    result.Trace,
		}
	}
	return nil
}

func assertHistoryContains(result *Result, assertion Assertion) error {
	if _, ok := result.Files[assertion.File]; !ok {
		return &AssertionError{
			Type:     AssertHistoryContains,
			Expected: fmt.Sprintf("history records %s", assertion.File),
			Actual:   fmt.Sprintf("history files %v", sortedKeys(result.Files)),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertArtifactContains checks the last artifact with the given container
// and name.
func assertArtifactContains(result *Result, assertion Assertion) error {
	var found *Artifact
	for i := range result.Artifacts {
		a := &result.Artifacts[i]
		if a.Container == assertion.Container && a.Name == assertion.Artifact {
			found = a
		}
	}
	if found == nil {
		return &AssertionError{
			Type:     AssertArtifactContains,
			Expected: fmt.Sprintf("artifact %s/%s", assertion.Container, assertion.Artifact),
			Actual:   "artifact not published",
			Trace:    result.Trace,
		}
	}
	if !strings.Contains(found.Content, assertion.Text) {
		return &AssertionError{
			Type:     AssertArtifactContains,
			Expected: fmt.Sprintf("%s/%s contains %q", assertion.Container, assertion.Artifact, assertion.Text),
			Actual:   fmt.Sprintf("content %q", found.Content),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertNeverPublished checks artifacts and model inputs. Secrets must not
// reach either.
func assertNeverPublished(result *Result, assertion Assertion) error {
	for _, a := range result.Artifacts {
		if strings.Contains(a.Content, assertion.Text) {
			return &AssertionError{
				Type:     AssertNeverPublished,
				Expected: fmt.Sprintf("no artifact contains %q", assertion.Text),
				Actual:   fmt.Sprintf("found in %s/%s", a.Container, a.Name),
				Trace:    result.Trace,
			}
		}
	}
	for i, p := range result.Prompts {
		if strings.Contains(p, assertion.Text) {
			return &AssertionError{
				Type:     AssertNeverPublished,
				Expected: fmt.Sprintf("no model input contains %q", assertion.Text),
				Actual:   fmt.Sprintf("found in model input %d", i+1),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// EvaluateAssertions runs all assertions and returns the failure messages.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for _, assertion := range assertions {
		var err error
		switch assertion.Type {
		case AssertPublishedCount:
			err = assertPublishedCount(result, assertion)
		case AssertHistoryDates:
			err = assertHistoryDates(result, assertion)
		case AssertHistoryContains:
			err = assertHistoryContains(result, assertion)
		case AssertArtifactContains:
			err = assertArtifactContains(result, assertion)
		case AssertNeverPublished:
			err = assertNeverPublished(result, assertion)
		default:
			err = fmt.Errorf("unknown assertion type: %s", assertion.Type)
		}
		if err != nil {
			errs = append(errs, err.Error())
		}
	}
	return errs
}
