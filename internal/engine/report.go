package engine

import "github.com/roach88/codedrop/internal/redact"

// StepResult is the explicit result of one collaborator call.
type StepResult struct {
	State  State  `json:"state"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
}

// CandidateInfo identifies the selected file without its content.
type CandidateInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Digest string `json:"digest"`
	CID    string `json:"cid,omitempty"`
}

// PublicationRecord is what the commit step appends to History.
type PublicationRecord struct {
	ID     string `json:"id"`
	Digest string `json:"digest"`
	Date   string `json:"date"`
}

// Report describes one run.
type Report struct {
	RunID     string             `json:"run_id"`
	Date      string             `json:"date"`
	Outcome   Outcome            `json:"outcome"`
	State     State              `json:"state"`
	Candidate *CandidateInfo     `json:"candidate,omitempty"`
	Container *Container         `json:"container,omitempty"`
	URL       string             `json:"url,omitempty"`
	Redacted  bool               `json:"redacted"`
	Findings  []redact.Finding   `json:"findings,omitempty"`
	Enriched  bool               `json:"enriched"`
	Record    *PublicationRecord `json:"record,omitempty"`
	Steps     []StepResult       `json:"steps"`
	Reason    string             `json:"reason,omitempty"`
}

// FailedStep returns the first unsuccessful step, if any.
func (r *Report) FailedStep() (StepResult, bool) {
	for _, s := range r.Steps {
		if !s.OK {
			return s, true
		}
	}
	return StepResult{}, false
}

func (r *Report) advance(s State) {
	r.State = s
}

func (r *Report) record(s State, ok bool, reason string) {
	r.Steps = append(r.Steps, StepResult{State: s, OK: ok, Reason: reason})
}

func (r *Report) finish(outcome Outcome, reason string) {
	r.State = StateDone
	r.Outcome = outcome
	r.Reason = reason
}

func (r *Report) fail(s State, err error) {
	r.record(s, false, err.Error())
	r.State = StateFailed
	r.Outcome = OutcomeFailed
	r.Reason = (&StepError{State: s, Err: err}).Error()
}
