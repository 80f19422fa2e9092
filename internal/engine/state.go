package engine

// State is a step of the run state machine.
type State string

const (
	StateIdle       State = "idle"
	StateGateCheck  State = "gate_check"
	StateSelecting  State = "selecting"
	StateRedacting  State = "redacting"
	StateEnriching  State = "enrich_comments"
	StateDescribing State = "describing"
	StatePublishing State = "publishing"
	StateCommitting State = "committing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Outcome summarizes how a run ended.
type Outcome string

const (
	OutcomePublished               Outcome = "published"
	OutcomeSkippedAlreadyPublished Outcome = "skipped_already_published"
	OutcomeSkippedNothingNew       Outcome = "skipped_nothing_new"
	OutcomeFailed                  Outcome = "failed"
)
