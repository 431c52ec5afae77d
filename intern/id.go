package intern

import (
	"fmt"
	"sync/atomic"
)

// Sequence mints monotonically increasing node/edge IDs for one analysis
// run (spec.md §4.1: `mint_node_id`, `mint_edge_id`). IDs are stable within
// a run and reproducible across runs because each run constructs its own
// Sequence from a fixed start value — tests inject a fresh Sequence rather
// than relying on a process-wide counter.
type Sequence struct {
	next uint64
}

// NewSequence returns a Sequence starting at the given value, so tests can
// inject a deterministic starting point (spec.md §4.1).
func NewSequence(start uint64) *Sequence {
	return &Sequence{next: start}
}

// Next mints the next ID, formatted with prefix for diagnostics (e.g.
// "tbl#3", "col#17", "edge#42").
func (s *Sequence) Next(prefix string) string {
	n := atomic.AddUint64(&s.next, 1)
	return fmt.Sprintf("%s#%d", prefix, n-1)
}

// Peek reports the next ID's numeric component without consuming it.
func (s *Sequence) Peek() uint64 {
	return atomic.LoadUint64(&s.next)
}
