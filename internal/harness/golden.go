package harness

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// Render produces the snapshot compared against golden files: one line per
// run, then the final history.
func Render(name string, result *Result) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "scenario: %s\n", name)
	for _, event := range result.Trace {
		fmt.Fprintf(&b, "%s\n", event)
	}

	dates := "(none)"
	if len(result.Dates) > 0 {
		dates = strings.Join(result.Dates, " ")
	}
	fmt.Fprintf(&b, "dates: %s\n", dates)

	files := "(none)"
	if len(result.Files) > 0 {
		files = strings.Join(sortedKeys(result.Files), " ")
	}
	fmt.Fprintf(&b, "files: %s\n", files)
	return []byte(b.String())
}

// RunWithGolden executes a scenario and compares its snapshot against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, ctx context.Context, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(ctx, scenario)
	if err != nil {
		return nil, err
	}
	AssertGolden(t, scenario.Name, result)
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, Render(name, result))
}
