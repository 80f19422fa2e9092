package engine

import (
	"context"
	"fmt"

	"github.com/roach88/codedrop/internal/digest"
	"github.com/roach88/codedrop/internal/redact"
)

// Plan previews what Run would do now.
type Plan struct {
	Date           string           `json:"date"`
	PublishedToday bool             `json:"published_today"`
	LastDate       string           `json:"last_date,omitempty"`
	HistoryEntries int              `json:"history_entries"`
	Candidates     int              `json:"candidates"`
	Unpublished    int              `json:"unpublished"`
	ListError      string           `json:"list_error,omitempty"`
	Next           *CandidateInfo   `json:"next,omitempty"`
	Container      string           `json:"container,omitempty"`
	WouldRedact    bool             `json:"would_redact"`
	Findings       []redact.Finding `json:"findings,omitempty"`
	WouldEnrich    bool             `json:"would_enrich"`
}

// Plan loads History, enumerates the corpus, and scans the next candidate.
// Nothing is generated, published or saved. Loading a missing JSON history
// still initializes it on disk.
func (e *Engine) Plan(ctx context.Context) (*Plan, error) {
	history, err := e.store.Load(ctx)
	if err != nil {
		return nil, &StepError{State: StateGateCheck, Err: fmt.Errorf("load history: %w", err)}
	}

	plan := &Plan{
		Date:           Today(e.clock),
		HistoryEntries: len(history.Files),
	}
	plan.PublishedToday = history.IsDateUsed(plan.Date)
	plan.LastDate, _ = history.LastDate()

	candidates, err := e.corpus.List(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		plan.ListError = err.Error()
		return plan, nil
	}
	plan.Candidates = len(candidates)

	// Identical copies publish once, so Unpublished counts distinct digests.
	pending := make(map[digest.Digest]struct{})
	for _, c := range candidates {
		d := digest.Of(c.Content)
		if history.HasDigest(d.String()) {
			continue
		}
		if _, seen := pending[d]; seen {
			continue
		}
		pending[d] = struct{}{}
		plan.Unpublished++
		if plan.Next != nil {
			continue
		}

		plan.Next = &CandidateInfo{ID: c.ID, Name: c.Name, Digest: d.String(), CID: d.CID()}
		plan.Container = ContainerName(c.Name)

		working := string(c.Content)
		if scanned := e.scanner.Scan(working); scanned.Found {
			plan.WouldRedact = true
			plan.Findings = scanned.Findings
			working = scanned.Redacted
		}
		plan.WouldEnrich = !e.commentPattern.MatchString(working)
	}
	return plan, nil
}
