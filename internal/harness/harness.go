package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/codedrop/internal/corpus"
	"github.com/roach88/codedrop/internal/engine"
	"github.com/roach88/codedrop/internal/store"
	"github.com/roach88/codedrop/internal/testutil"
)

// Harness holds the per-scenario environment.
type Harness struct {
	dir       string
	corpusDir string
	store     *faultyStore
	clock     *testutil.FixedClock
	annotator *testutil.FakeAnnotator
	describer *testutil.FakeDescriber
	publisher *testutil.FakePublisher
	engine    *engine.Engine
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh temporary directory that is removed
// afterwards. The returned error reports harness problems (I/O, a missing
// report); scenario mismatches are recorded in the Result.
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	dir, err := os.MkdirTemp("", "codedrop-harness-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}
	defer os.RemoveAll(dir)

	h, err := newHarness(ctx, dir, scenario)
	if err != nil {
		return nil, err
	}
	defer h.store.Close()

	result := NewResult()
	for i, day := range scenario.Days {
		if err := h.runDay(ctx, i+1, day, result); err != nil {
			return nil, fmt.Errorf("day %d: %w", i+1, err)
		}
	}

	if err := h.collect(ctx, result); err != nil {
		return nil, err
	}
	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

func newHarness(ctx context.Context, dir string, scenario *Scenario) (*Harness, error) {
	h := &Harness{
		dir:       dir,
		corpusDir: filepath.Join(dir, "corpus"),
		annotator: &testutil.FakeAnnotator{Output: scenario.Annotation},
		describer: &testutil.FakeDescriber{},
		publisher: &testutil.FakePublisher{},
	}
	if err := os.MkdirAll(h.corpusDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create corpus: %w", err)
	}
	if err := h.writeFiles(scenario.Corpus); err != nil {
		return nil, err
	}

	start, err := time.Parse(engine.DateLayout, scenario.Start)
	if err != nil {
		return nil, fmt.Errorf("invalid start date: %w", err)
	}
	h.clock = testutil.NewFixedClock(start.Year(), start.Month(), start.Day())

	historyPath := filepath.Join(dir, "upload_history.json")
	if scenario.Store == "sqlite" {
		historyPath = filepath.Join(dir, "history.db")
	}
	st, err := store.Open(historyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	h.store = &faultyStore{Store: st}

	if scenario.History != nil {
		seed := store.NewHistory()
		for rel, d := range scenario.History.Files {
			seed.Files[h.id(rel)] = d
		}
		seed.UploadDates = append(seed.UploadDates, scenario.History.UploadDates...)
		if err := st.Save(ctx, seed); err != nil {
			st.Close()
			return nil, fmt.Errorf("failed to seed history: %w", err)
		}
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.engine, err = engine.New(engine.Deps{
		Store:     h.store,
		Corpus:    corpus.NewWalker(h.corpusDir, nil, logger),
		Annotator: h.annotator,
		Describer: h.describer,
		Publisher: h.publisher,
		Clock:     h.clock,
		RunIDs:    &sequentialRunIDs{},
		Logger:    logger,
	}, engine.Config{
		CommentPattern: scenario.CommentPattern,
		RescanEnriched: scenario.RescanEnriched,
	})
	if err != nil {
		st.Close()
		return nil, err
	}
	return h, nil
}

// runDay applies the day's corpus changes and failures, runs the engine and
// checks the first run against the day's expectation.
func (h *Harness) runDay(ctx context.Context, n int, day Day, result *Result) error {
	h.clock.AdvanceDays(day.Advance)
	if err := h.writeFiles(day.Write); err != nil {
		return err
	}
	for _, rel := range day.Remove {
		if err := os.Remove(h.path(rel)); err != nil {
			return fmt.Errorf("failed to remove %s: %w", rel, err)
		}
	}

	h.inject(day.Fail)
	defer h.inject(nil)

	runs := day.Runs
	if runs == 0 {
		runs = 1
	}
	for r := 0; r < runs; r++ {
		report, err := h.engine.Run(ctx)
		if report == nil {
			return fmt.Errorf("run returned no report: %w", err)
		}
		event := h.event(n, report, err)
		result.Trace = append(result.Trace, event)
		if r == 0 {
			h.check(n, day, event, result)
		}
	}
	return nil
}

func (h *Harness) check(n int, day Day, event TraceEvent, result *Result) {
	if event.Outcome != day.Expect {
		result.AddError(fmt.Sprintf("day %d: expected outcome %s, got %s", n, day.Expect, event.Outcome))
	}
	if day.File != "" && event.File != day.File {
		result.AddError(fmt.Sprintf("day %d: expected file %s, got %q", n, day.File, event.File))
	}
	if day.FailedAt != "" && event.FailedAt != day.FailedAt {
		result.AddError(fmt.Sprintf("day %d: expected failure at %s, got %q", n, day.FailedAt, event.FailedAt))
	}
}

func (h *Harness) event(n int, report *engine.Report, runErr error) TraceEvent {
	event := TraceEvent{
		Day:      n,
		Date:     report.Date,
		RunID:    report.RunID,
		Outcome:  string(report.Outcome),
		Redacted: report.Redacted,
		Enriched: report.Enriched,
	}
	if report.Candidate != nil {
		event.File = h.rel(report.Candidate.ID)
	}
	if report.Container != nil {
		event.Container = report.Container.Name
	}
	if report.State == engine.StateFailed {
		if step, ok := report.FailedStep(); ok {
			event.FailedAt = string(step.State)
		}
	}
	if runErr != nil {
		event.Err = runErr.Error()
	}
	return event
}

// inject sets or clears collaborator failures.
func (h *Harness) inject(f *Failures) {
	if f == nil {
		f = &Failures{}
	}
	h.annotator.Err = errOrNil(f.Annotate)
	h.describer.Err = errOrNil(f.Describe)
	h.publisher.CreateErr = errOrNil(f.Create)
	h.publisher.ArtifactErrs = nil
	for name, msg := range f.Artifacts {
		if h.publisher.ArtifactErrs == nil {
			h.publisher.ArtifactErrs = map[string]error{}
		}
		h.publisher.ArtifactErrs[name] = errors.New(msg)
	}
	h.store.setSaveErr(errOrNil(f.Save))
}

// collect copies the final history, artifacts and model inputs into result.
func (h *Harness) collect(ctx context.Context, result *Result) error {
	final, err := h.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load final history: %w", err)
	}
	result.Dates = append(result.Dates, final.UploadDates...)
	for id, d := range final.Files {
		result.Files[h.rel(id)] = d
	}
	for _, a := range h.publisher.Artifacts {
		result.Artifacts = append(result.Artifacts, Artifact{Container: a.Container, Name: a.Name, Content: a.Content})
	}
	result.Prompts = append(result.Prompts, h.annotator.Inputs...)
	result.Prompts = append(result.Prompts, h.describer.Inputs...)
	return nil
}

func (h *Harness) writeFiles(files map[string]string) error {
	for rel, content := range files {
		p := h.path(rel)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("failed to create directory for %s: %w", rel, err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", rel, err)
		}
	}
	return nil
}

func (h *Harness) path(rel string) string {
	return filepath.Join(h.corpusDir, filepath.FromSlash(rel))
}

// id maps a seeded history key to a candidate identifier. Absolute keys
// name files outside the corpus and are kept as is.
func (h *Harness) id(rel string) string {
	if strings.HasPrefix(rel, "/") {
		return rel
	}
	return h.path(rel)
}

// rel maps a candidate identifier back to its corpus-relative path.
func (h *Harness) rel(id string) string {
	r, err := filepath.Rel(h.corpusDir, id)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return id
	}
	return filepath.ToSlash(r)
}

func errOrNil(msg string) error {
	if msg == "" {
		return nil
	}
	return errors.New(msg)
}

// faultyStore fails Save on demand.
type faultyStore struct {
	store.Store
	saveErr error
}

func (s *faultyStore) setSaveErr(err error) {
	s.saveErr = err
}

func (s *faultyStore) Save(ctx context.Context, h store.History) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.Store.Save(ctx, h)
}

// sequentialRunIDs yields run-0001, run-0002, ...
type sequentialRunIDs struct {
	n int
}

func (g *sequentialRunIDs) Generate() string {
	g.n++
	return fmt.Sprintf("run-%04d", g.n)
}
