package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/roach88/codedrop/internal/corpus"
	"github.com/roach88/codedrop/internal/digest"
	"github.com/roach88/codedrop/internal/redact"
	"github.com/roach88/codedrop/internal/store"
)

// DefaultCommentPattern matches a Python line comment anywhere in the text.
const DefaultCommentPattern = `(?m)^\s*#.*$`

// Deps are the collaborators of a run. Store and Corpus are always required;
// Run also needs Annotator, Describer and Publisher, which Plan does not
// use. The rest have defaults.
type Deps struct {
	Store     store.Store
	Corpus    Lister
	Annotator Annotator
	Describer Describer
	Publisher Publisher

	// Scanner defaults to redact.Default().
	Scanner Redactor

	// Clock defaults to SystemClock.
	Clock Clock

	// RunIDs defaults to UUIDv7Generator.
	RunIDs RunIDGenerator

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Config tunes a run.
type Config struct {
	// CommentPattern decides whether a text already has comments. Text
	// with no match is sent to the Annotator. Defaults to
	// DefaultCommentPattern.
	CommentPattern string

	// RescanEnriched runs the scanner again over annotated output.
	RescanEnriched bool
}

// Engine executes publication runs.
type Engine struct {
	store     store.Store
	corpus    Lister
	annotator Annotator
	describer Describer
	publisher Publisher
	scanner   Redactor
	clock     Clock
	runIDs    RunIDGenerator
	logger    *slog.Logger

	commentPattern *regexp.Regexp
	rescanEnriched bool
}

// New validates deps and config and returns an Engine.
func New(deps Deps, config Config) (*Engine, error) {
	switch {
	case deps.Store == nil:
		return nil, errors.New("engine: Store is required")
	case deps.Corpus == nil:
		return nil, errors.New("engine: Corpus is required")
	}

	pattern := config.CommentPattern
	if pattern == "" {
		pattern = DefaultCommentPattern
	}
	commentPattern, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("engine: comment pattern: %w", err)
	}

	e := &Engine{
		store:          deps.Store,
		corpus:         deps.Corpus,
		annotator:      deps.Annotator,
		describer:      deps.Describer,
		publisher:      deps.Publisher,
		scanner:        deps.Scanner,
		clock:          deps.Clock,
		runIDs:         deps.RunIDs,
		logger:         deps.Logger,
		commentPattern: commentPattern,
		rescanEnriched: config.RescanEnriched,
	}
	if e.scanner == nil {
		e.scanner = redact.Default()
	}
	if e.clock == nil {
		e.clock = SystemClock{}
	}
	if e.runIDs == nil {
		e.runIDs = UUIDv7Generator{}
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e, nil
}

// selection is the candidate chosen for a run.
type selection struct {
	candidate corpus.Candidate
	digest    digest.Digest
}

// Run performs one pass of the state machine. Once the collaborators are
// known to be present it always returns a Report.
//
// The error is non-nil only for history failures: the initial Load, or the
// final Save after a successful publication. Collaborator failures end the
// run in StateFailed with OutcomeFailed and leave History untouched; they are
// described by the Report alone.
func (e *Engine) Run(ctx context.Context) (*Report, error) {
	if err := e.runnable(); err != nil {
		return nil, err
	}

	report := &Report{
		RunID: e.runIDs.Generate(),
		Date:  Today(e.clock),
		State: StateIdle,
	}
	logger := e.logger.With("run_id", report.RunID)
	logger.Info("run started", "date", report.Date)

	// GateCheck
	report.advance(StateGateCheck)
	history, err := e.store.Load(ctx)
	if err != nil {
		err = fmt.Errorf("load history: %w", err)
		report.fail(StateGateCheck, err)
		logger.Error("run failed", "state", StateGateCheck, "error", err)
		return report, &StepError{State: StateGateCheck, Err: err}
	}
	if history.IsDateUsed(report.Date) {
		report.finish(OutcomeSkippedAlreadyPublished, "already published on "+report.Date)
		logger.Info("already published today", "date", report.Date)
		return report, nil
	}

	// Selecting
	report.advance(StateSelecting)
	selected, found, err := e.selectCandidate(ctx, history, report, logger)
	if err != nil {
		return e.failed(report, logger, StateSelecting, err), nil
	}
	if !found {
		report.finish(OutcomeSkippedNothingNew, "no unpublished candidates")
		logger.Info("nothing new to publish")
		return report, nil
	}
	candidate := selected.candidate
	report.Candidate = &CandidateInfo{
		ID:     candidate.ID,
		Name:   candidate.Name,
		Digest: selected.digest.String(),
		CID:    selected.digest.CID(),
	}
	logger = logger.With("candidate", candidate.ID)
	logger.Info("candidate selected", "digest", selected.digest.Short())

	// Redacting
	report.advance(StateRedacting)
	working := string(candidate.Content)
	scanned := e.scanner.Scan(working)
	if scanned.Found {
		working = scanned.Redacted
		report.Redacted = true
		report.Findings = scanned.Findings
		report.record(StateRedacting, true, fmt.Sprintf("redacted %d assignment(s)", len(scanned.Findings)))
		logger.Warn("sensitive data redacted", "findings", len(scanned.Findings))
	} else {
		report.record(StateRedacting, true, "no sensitive assignments")
	}

	// EnrichComments
	if !e.commentPattern.MatchString(working) {
		report.advance(StateEnriching)
		logger.Info("adding comments")
		annotated, err := e.annotator.Annotate(ctx, working)
		if err != nil {
			return e.failed(report, logger, StateEnriching, err), nil
		}
		working = annotated
		report.Enriched = true
		report.record(StateEnriching, true, "comments added")

		if e.rescanEnriched {
			if rescanned := e.scanner.Scan(working); rescanned.Found {
				working = rescanned.Redacted
				report.Redacted = true
				report.Findings = append(report.Findings, rescanned.Findings...)
				logger.Warn("sensitive data redacted from annotated text", "findings", len(rescanned.Findings))
			}
		}
	}

	// Describing
	report.advance(StateDescribing)
	logger.Info("generating description")
	description, err := e.describer.Describe(ctx, working)
	if err != nil {
		return e.failed(report, logger, StateDescribing, err), nil
	}
	report.record(StateDescribing, true, "description generated")

	// Publishing
	report.advance(StatePublishing)
	container, err := e.publish(ctx, report, candidate.Name, selected.digest, working, description)
	if err != nil {
		return e.failed(report, logger, StatePublishing, err), nil
	}
	report.Container = &container
	report.URL = container.URL
	logger.Info("published", "container", container.Name, "url", container.URL)

	// Committing. The container exists now, so the save is not abandoned
	// when ctx is cancelled.
	report.advance(StateCommitting)
	record := PublicationRecord{ID: candidate.ID, Digest: selected.digest.String(), Date: report.Date}
	updated := history.RecordPublication(record.ID, record.Digest, record.Date)
	if err := e.store.Save(context.WithoutCancel(ctx), updated); err != nil {
		err = fmt.Errorf("save history after publishing %s: %w", container.Name, err)
		report.fail(StateCommitting, err)
		logger.Error("run failed", "state", StateCommitting, "container", container.Name, "error", err)
		return report, &StepError{State: StateCommitting, Err: err}
	}
	report.Record = &record
	report.record(StateCommitting, true, "history updated")

	report.finish(OutcomePublished, "")
	logger.Info("run finished", "outcome", report.Outcome, "digest", selected.digest.Short())
	return report, nil
}

func (e *Engine) runnable() error {
	switch {
	case e.annotator == nil:
		return errors.New("engine: Annotator is required to run")
	case e.describer == nil:
		return errors.New("engine: Describer is required to run")
	case e.publisher == nil:
		return errors.New("engine: Publisher is required to run")
	}
	return nil
}

// selectCandidate picks the first candidate whose digest is not in history.
// An enumeration error is logged and treated as an empty corpus unless ctx
// is done.
func (e *Engine) selectCandidate(ctx context.Context, history store.History, report *Report, logger *slog.Logger) (selection, bool, error) {
	candidates, err := e.corpus.List(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return selection{}, false, ctx.Err()
		}
		logger.Warn("candidate enumeration failed", "error", err)
		report.record(StateSelecting, false, err.Error())
		return selection{}, false, nil
	}

	for _, c := range candidates {
		d := digest.Of(c.Content)
		if history.HasDigest(d.String()) {
			logger.Debug("already published", "candidate", c.ID, "digest", d.Short())
			continue
		}
		report.record(StateSelecting, true, fmt.Sprintf("selected %s from %d candidate(s)", c.ID, len(candidates)))
		return selection{candidate: c, digest: d}, true, nil
	}

	report.record(StateSelecting, true, fmt.Sprintf("all %d candidate(s) already published", len(candidates)))
	return selection{}, false, nil
}

// publish resolves the container, then writes the README and the file.
func (e *Engine) publish(ctx context.Context, report *Report, filename string, d digest.Digest, content, description string) (Container, error) {
	container, err := e.container(ctx, report, filename, d)
	if err != nil {
		return Container{}, err
	}

	if err := e.publisher.AddArtifact(ctx, container, ReadmeName, ReadmeContent(filename, description), ReadmeMessage); err != nil {
		report.Container = &container
		return Container{}, fmt.Errorf("add %s to %s: %w", ReadmeName, container.Name, err)
	}
	report.record(StatePublishing, true, "added "+ReadmeName)

	if err := e.publisher.AddArtifact(ctx, container, filename, content, ArtifactMessage(filename)); err != nil {
		report.Container = &container
		return Container{}, fmt.Errorf("add %s to %s: %w", filename, container.Name, err)
	}
	report.record(StatePublishing, true, "added "+filename)
	return container, nil
}

// container creates the container for filename. A taken name is reused
// while it holds no artifacts. Otherwise the digest-qualified name is
// created, or reused whatever it holds, as only this content is ever
// published under it.
func (e *Engine) container(ctx context.Context, report *Report, filename string, d digest.Digest) (Container, error) {
	name := ContainerName(filename)
	container, created, err := e.createOrOpen(ctx, name)
	if err != nil {
		return Container{}, err
	}
	if created {
		report.record(StatePublishing, true, "created container "+container.Name)
		return container.Container, nil
	}
	if len(container.artifacts) == 0 {
		report.record(StatePublishing, true, "reused empty container "+container.Name)
		return container.Container, nil
	}

	qualified := QualifiedContainerName(filename, d)
	report.record(StatePublishing, true, fmt.Sprintf("container %s holds %d artifact(s), using %s", name, len(container.artifacts), qualified))
	container, created, err = e.createOrOpen(ctx, qualified)
	if err != nil {
		return Container{}, err
	}
	if created {
		report.record(StatePublishing, true, "created container "+container.Name)
	} else {
		report.record(StatePublishing, true, "resumed container "+container.Name)
	}
	return container.Container, nil
}

// existing is a container together with the artifacts it already holds.
type existing struct {
	Container
	artifacts []string
}

// createOrOpen creates name, or opens it when it is already taken.
func (e *Engine) createOrOpen(ctx context.Context, name string) (existing, bool, error) {
	container, err := e.publisher.CreateContainer(ctx, name)
	if err == nil {
		return existing{Container: named(container, name)}, true, nil
	}
	if !errors.Is(err, ErrContainerExists) {
		return existing{}, false, fmt.Errorf("create container %s: %w", name, err)
	}

	container, artifacts, err := e.publisher.OpenContainer(ctx, name)
	if err != nil {
		return existing{}, false, fmt.Errorf("open container %s: %w", name, err)
	}
	return existing{Container: named(container, name), artifacts: artifacts}, false, nil
}

func named(c Container, name string) Container {
	if c.Name == "" {
		c.Name = name
	}
	return c
}

// failed ends the run in StateFailed for a collaborator error.
func (e *Engine) failed(report *Report, logger *slog.Logger, s State, err error) *Report {
	report.fail(s, err)
	logger.Error("run failed", "state", s, "error", err)
	return report
}
