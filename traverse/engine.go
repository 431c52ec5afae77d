package traverse

import (
	"sort"

	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/context"
)

// Option configures an Engine at construction (teacher's functional-options
// style, analyzer/option.go).
type Option func(*Engine)

// WithMaxDepth overrides the default recursion depth cap (spec.md §6.4
// max_depth, default 500).
func WithMaxDepth(n int) Option {
	return func(e *Engine) { e.maxDepth = n }
}

// Engine owns the handler registry and the safety valves governing one
// walk: cycle guard, depth guard, and (via the Context passed to each
// walk) fragment and time budgets. An Engine has no per-walk state of its
// own — that lives in the Walker it creates per call to Walk — so one
// Engine is safely reused across concurrent analyses (spec.md §5).
type Engine struct {
	handlers map[ast.Kind][]registryEntry
	maxDepth int
	nextSeq  int
}

// NewEngine creates an Engine with no registered handlers and the default
// depth cap of 500.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{handlers: make(map[ast.Kind][]registryEntry), maxDepth: 500}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Register adds h as a candidate for kind, at the given priority. Among
// handlers registered for the same kind, can_handle is tried in descending
// priority order; ties are broken by registration order (spec.md §9).
func (e *Engine) Register(kind ast.Kind, h Handler, priority int) {
	e.nextSeq++
	entries := append(e.handlers[kind], registryEntry{handler: h, priority: priority, seq: e.nextSeq})
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].seq < entries[j].seq
	})
	e.handlers[kind] = entries
}

// firstMatch returns the first registered handler (by priority, then
// registration order) whose CanHandle(n) is true, or nil if none matches
// (spec.md §4.4 step 2).
func (e *Engine) firstMatch(n ast.Node) Handler {
	for _, entry := range e.handlers[n.Kind()] {
		if entry.handler.CanHandle(n) {
			return entry.handler
		}
	}
	return nil
}

// Walk performs a bounded pre-order walk of root, dispatching to
// registered handlers and falling back to descent into children for
// unhandled nodes (spec.md §4.4). The returned Walker exposes Incomplete
// and the accumulated diagnostics (via actx.Diagnostics) once Walk returns.
func (e *Engine) Walk(root ast.Node, actx *context.Context) *Walker {
	w := &Walker{engine: e, ctx: actx, visited: make(map[uint64]bool)}
	_ = w.Visit(root)
	return w
}

// WalkIterative performs the same walk as Walk but replaces the default
// (unhandled-node) child descent with an explicit stack instead of Go call
// recursion, for scripts whose flat nesting would exceed a safe recursion
// budget (spec.md §4.4's iterative variant; shape-identical to Walk).
// Handler-driven sub-traversals (e.g. IF/WHILE re-entering the engine on
// their bodies) still recurse through Walker.Visit, which is bounded by grammar
// nesting rather than script size.
func (e *Engine) WalkIterative(root ast.Node, actx *context.Context) *Walker {
	w := &Walker{engine: e, ctx: actx, visited: make(map[uint64]bool)}
	w.visitIterative(root)
	return w
}
