package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() *Result {
	r := NewResult()
	r.Trace = []TraceEvent{
		{Day: 1, Date: "2026-10-19", Outcome: "published", File: "a.py", Container: "a"},
		{Day: 2, Date: "2026-10-20", Outcome: "skipped_nothing_new"},
	}
	r.Dates = []string{"2026-10-19"}
	r.Files = map[string]string{"a.py": "d1"}
	r.Artifacts = []Artifact{
		{Container: "a", Name: "README.md", Content: "# a.py\n\nDescribes a."},
		{Container: "a", Name: "a.py", Content: "# a\nprint('a')"},
	}
	r.Prompts = []string{"# a\nprint('a')"}
	return r
}

func TestEvaluateAssertions_Pass(t *testing.T) {
	errs := EvaluateAssertions(sampleResult(), []Assertion{
		{Type: AssertPublishedCount, Count: 1},
		{Type: AssertHistoryDates, Dates: []string{"2026-10-19"}},
		{Type: AssertHistoryContains, File: "a.py"},
		{Type: AssertArtifactContains, Container: "a", Artifact: "README.md", Text: "Describes a."},
		{Type: AssertNeverPublished, Text: "hunter2"},
	})
	assert.Empty(t, errs)
}

func TestEvaluateAssertions_Failures(t *testing.T) {
	tests := []struct {
		name      string
		assertion Assertion
		want      string
	}{
		{"count", Assertion{Type: AssertPublishedCount, Count: 2}, "Expected: 2 publications"},
		{"dates", Assertion{Type: AssertHistoryDates}, "Actual: dates [2026-10-19]"},
		{"contains", Assertion{Type: AssertHistoryContains, File: "b.py"}, "history records b.py"},
		{"artifact missing", Assertion{Type: AssertArtifactContains, Container: "b", Artifact: "b.py", Text: "x"}, "artifact not published"},
		{"artifact text", Assertion{Type: AssertArtifactContains, Container: "a", Artifact: "a.py", Text: "secret"}, `contains "secret"`},
		{"artifact leak", Assertion{Type: AssertNeverPublished, Text: "Describes"}, "found in a/README.md"},
		{"prompt leak", Assertion{Type: AssertNeverPublished, Text: "print('a')"}, "found in a/a.py"},
		{"unknown", Assertion{Type: "final_state"}, "unknown assertion type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(sampleResult(), []Assertion{tt.assertion})
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0], tt.want)
		})
	}
}

func TestNeverPublished_ChecksPrompts(t *testing.T) {
	r := sampleResult()
	r.Prompts = append(r.Prompts, "token = 'abc'")

	errs := EvaluateAssertions(r, []Assertion{{Type: AssertNeverPublished, Text: "abc"}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "found in model input 2")
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	err := &AssertionError{
		Type:     AssertPublishedCount,
		Expected: "1",
		Actual:   "0",
		Trace:    []TraceEvent{{Day: 1, Date: "2026-10-19", Outcome: "skipped_nothing_new"}},
	}
	assert.Contains(t, err.Error(), "Full trace:")
	assert.Contains(t, err.Error(), "day 1 2026-10-19 skipped_nothing_new")
}

func TestRender(t *testing.T) {
	got := string(Render("sample", sampleResult()))
	want := "scenario: sample\n" +
		"day 1 2026-10-19 published a.py -> a\n" +
		"day 2 2026-10-20 skipped_nothing_new\n" +
		"dates: 2026-10-19\n" +
		"files: a.py\n"
	assert.Equal(t, want, got)

	empty := string(Render("empty", NewResult()))
	assert.Contains(t, empty, "dates: (none)\nfiles: (none)\n")
}
