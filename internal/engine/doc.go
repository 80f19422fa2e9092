// Package engine runs one publication pass: the daily gate, candidate
// selection by content digest, redaction, optional comment enrichment,
// description, publishing, and the history commit.
//
// A run is a forward-only state machine:
//
//	Idle → GateCheck → Selecting → Redacting → [EnrichComments] →
//	Describing → Publishing → Committing → Done
//
// with Failed as the only other terminal state. Every collaborator call is
// recorded in the Report as a StepResult carrying an explicit success flag
// and reason.
//
// INVARIANTS:
//   - History is loaded once and saved at most once per run.
//   - Save happens only after every publishing call succeeded.
//   - A date already in History stops the run before any collaborator
//     other than the store is touched.
//   - A digest already in History is never selected, whatever identifier
//     the content is found under.
//
// The engine is single-threaded. Concurrent runs against the same history
// are not supported.
package engine
