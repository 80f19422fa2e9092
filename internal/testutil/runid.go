package testutil

import "sync"

// FixedRunIDs returns the same run id every time, so reports and logs from
// a scenario are byte-identical across test runs.
//
// Thread-safety: FixedRunIDs is stateless and safe for concurrent use.
type FixedRunIDs struct {
	id string
}

// NewFixedRunIDs returns a generator for id. An empty id becomes
// "test-run-default".
func NewFixedRunIDs(id string) *FixedRunIDs {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDs{id: id}
}

// Generate returns the fixed id.
func (g *FixedRunIDs) Generate() string {
	return g.id
}

// RunIDSequence returns predetermined run ids in order.
type RunIDSequence struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewRunIDSequence returns a generator that yields ids in order and panics
// once they are exhausted.
func NewRunIDSequence(ids ...string) *RunIDSequence {
	return &RunIDSequence{ids: ids}
}

// Generate returns the next id.
func (g *RunIDSequence) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic("RunIDSequence: all ids exhausted")
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}
