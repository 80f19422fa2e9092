package engine_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/codedrop/internal/digest"
	"github.com/roach88/codedrop/internal/engine"
	"github.com/roach88/codedrop/internal/publish"
	"github.com/roach88/codedrop/internal/store"
	"github.com/roach88/codedrop/internal/testutil"
)

// directoryEngine runs f against a publish.Directory rooted in a temp dir.
func directoryEngine(t *testing.T, f *fixture) (*engine.Engine, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "out")
	deps := f.deps()
	deps.Publisher = publish.NewDirectory(root, nil)
	e, err := engine.New(deps, engine.Config{})
	require.NoError(t, err)
	return e, root
}

func readArtifact(t *testing.T, root, container, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, container, name))
	require.NoError(t, err)
	return string(data)
}

func TestRun_RetryAfterCommitFailure(t *testing.T) {
	ctx := context.Background()
	f := newFixture(store.NewHistory(),
		testutil.Candidate("a.py", "# a\n"),
		testutil.Candidate("b.py", "# b\n"),
	)
	e, root := directoryEngine(t, f)

	f.store.SaveErr = errors.New("disk full")
	report, err := e.Run(ctx)
	require.Error(t, err)
	require.True(t, engine.IsCommitError(err))
	assert.Equal(t, "a", report.Container.Name)
	assert.Empty(t, f.store.History.Files)

	f.store.SaveErr = nil
	f.clock.AdvanceDays(1)
	report, err = e.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, engine.OutcomePublished, report.Outcome, report.Reason)
	qualified := "a-" + digest.Of([]byte("# a\n")).Short()
	assert.Equal(t, qualified, report.Container.Name)
	assert.Equal(t, "# a\n", readArtifact(t, root, qualified, "a.py"))
	assert.Equal(t, digestOf("# a\n"), f.store.History.Files["a.py"])

	f.clock.AdvanceDays(1)
	report, err = e.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, engine.OutcomePublished, report.Outcome, report.Reason)
	assert.Equal(t, "b.py", report.Candidate.ID)
	assert.Equal(t, "b", report.Container.Name)
	assert.Len(t, f.store.History.UploadDates, 2)
}

func TestRun_ReusesEmptyContainer(t *testing.T) {
	f := newFixture(store.NewHistory(), testutil.Candidate("a.py", "# a\n"))
	e, root := directoryEngine(t, f)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a"), 0o755))

	report, err := e.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, engine.OutcomePublished, report.Outcome, report.Reason)
	assert.Equal(t, "a", report.Container.Name)
	assert.Equal(t, "# a\n", readArtifact(t, root, "a", "a.py"))
	assert.Equal(t, "reused empty container a", report.Steps[3].Reason)
}

func TestRun_RetryAfterReadmeFailureReusesContainer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(store.NewHistory(), testutil.Candidate("a.py", "# a\n"))
	f.publisher.ArtifactErrs = map[string]error{engine.ReadmeName: errors.New("rate limited")}
	e := f.engine(t, engine.Config{})

	report, err := e.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, engine.OutcomeFailed, report.Outcome)

	f.publisher.ArtifactErrs = nil
	report, err = e.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, engine.OutcomePublished, report.Outcome, report.Reason)
	assert.Equal(t, "a", report.Container.Name)
	assert.Equal(t, []string{"a", "a"}, f.publisher.Containers)
	assert.Equal(t, []string{"a"}, f.publisher.Opened)
	held, _ := f.publisher.Held("a")
	assert.Equal(t, []string{engine.ReadmeName, "a.py"}, held)
}

func TestRun_NameCollisionUsesQualifiedContainer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(store.NewHistory(), testutil.Candidate("a/util.py", "# util a\n"))
	e, root := directoryEngine(t, f)

	report, err := e.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, engine.OutcomePublished, report.Outcome, report.Reason)
	assert.Equal(t, "util", report.Container.Name)

	f.corpus.Candidates = append(f.corpus.Candidates,
		testutil.Candidate("b/util.py", "# util b\n"),
		testutil.Candidate("z.py", "# z\n"),
	)
	f.clock.AdvanceDays(1)
	report, err = e.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, engine.OutcomePublished, report.Outcome, report.Reason)
	assert.Equal(t, "b/util.py", report.Candidate.ID)
	qualified := engine.QualifiedContainerName("util.py", digest.Of([]byte("# util b\n")))
	assert.Equal(t, qualified, report.Container.Name)
	assert.Equal(t, "# util a\n", readArtifact(t, root, "util", "util.py"))
	assert.Equal(t, "# util b\n", readArtifact(t, root, qualified, "util.py"))

	f.clock.AdvanceDays(1)
	report, err = e.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, engine.OutcomePublished, report.Outcome, report.Reason)
	assert.Equal(t, "z", report.Container.Name)
}

func TestRun_ResumesQualifiedContainer(t *testing.T) {
	f := newFixture(store.NewHistory(), testutil.Candidate("a.py", "# a\n"))
	qualified := engine.QualifiedContainerName("a.py", digest.Of([]byte("# a\n")))
	f.publisher.Seed("a", engine.ReadmeName, "a.py")
	f.publisher.Seed(qualified, engine.ReadmeName)

	report, err := f.engine(t, engine.Config{}).Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, engine.OutcomePublished, report.Outcome, report.Reason)

	assert.Equal(t, qualified, report.Container.Name)
	assert.Equal(t, []string{"a", qualified}, f.publisher.Containers)
	assert.Equal(t, []string{"a", qualified}, f.publisher.Opened)
	var reasons []string
	for _, s := range report.Steps {
		if s.State == engine.StatePublishing {
			reasons = append(reasons, s.Reason)
		}
	}
	assert.Equal(t, []string{
		"container a holds 2 artifact(s), using " + qualified,
		"resumed container " + qualified,
		"added README.md",
		"added a.py",
	}, reasons)
}

func TestRun_UnreadableContainerFailsPublishing(t *testing.T) {
	f := newFixture(store.NewHistory(), testutil.Candidate("a.py", "# a\n"))
	e, root := directoryEngine(t, f)
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a"), []byte("not a directory"), 0o644))

	report, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeFailed, report.Outcome)
	assert.Contains(t, report.Reason, "open container a")
	step, failed := report.FailedStep()
	require.True(t, failed)
	assert.Equal(t, engine.StatePublishing, step.State)
	assert.Empty(t, f.store.History.Files)
}
