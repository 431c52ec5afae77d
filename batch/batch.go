// Package batch implements the batched entry points of spec.md §5: multiple
// scripts analyzed in parallel, each with its own Context/Graph/visited
// set, bounded by a configurable max_concurrent_batches and a per-item
// cancellation token derived from a parent shutdown token. The string
// interner is the one resource shared across concurrent analyses.
package batch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	tsqlcontext "github.com/sql-lineage/tsqllineage/context"
	"github.com/sql-lineage/tsqllineage/catalog"
	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/handlers"
	"github.com/sql-lineage/tsqllineage/intern"
	"github.com/sql-lineage/tsqllineage/lineage"
	"github.com/sql-lineage/tsqllineage/traverse"
)

// Option configures a Runner at construction, mirroring the teacher's
// functional-options style (analyzer/option.go).
type Option func(*Runner)

// WithMaxConcurrentBatches bounds the number of scripts analyzed at once
// (spec.md §5, §6.4's max_concurrent_batches).
func WithMaxConcurrentBatches(n int) Option {
	return func(r *Runner) { r.maxConcurrent = n }
}

// WithCatalog supplies the schema catalog every analysis consults.
func WithCatalog(c catalog.Catalog) Option {
	return func(r *Runner) { r.catalog = c }
}

// WithCaseSensitiveIdentifiers toggles identifier case-folding (spec.md
// §6.4 case_sensitive_identifiers).
func WithCaseSensitiveIdentifiers(v bool) Option {
	return func(r *Runner) { r.caseSensitive = v }
}

// WithCompactOnFinish runs Graph.Compact(outputs) once a script's walk
// completes, before the Result is handed back (spec.md §6.4
// compact_on_finish). A nil outputs func disables compaction regardless.
func WithCompactOnFinish(outputs func(*lineage.Graph) []string) Option {
	return func(r *Runner) { r.compactOutputs = outputs }
}

// WithMaxDepth overrides the traversal engine's recursion depth cap.
func WithMaxDepth(n int) Option {
	return func(r *Runner) { r.maxDepth = n }
}

// WithBudget overrides the default per-script fragment/time budget.
func WithBudget(b tsqlcontext.Budget) Option {
	return func(r *Runner) { r.budget = b }
}

// WithShutdownGrace bounds AnalyzeAll's unwind time after ctx is cancelled:
// in-flight scripts get grace to finish their current statement rather than
// being cut off the instant the parent context is cancelled (spec.md §5).
// Zero (the default) disables the grace period.
func WithShutdownGrace(grace time.Duration) Option {
	return func(r *Runner) { r.shutdownGrace = grace }
}

// Runner holds the resources shared across concurrent analyses: the
// interner (fine-grained concurrent map, insert-or-get) and the handler
// registry (stateless, safe to reuse per spec.md §5 "one Engine is safely
// reused across concurrent analyses"). It carries no per-script state.
type Runner struct {
	interner      *intern.Interner
	engine        *traverse.Engine
	catalog       catalog.Catalog
	caseSensitive bool
	maxConcurrent int
	maxDepth      int
	budget        tsqlcontext.Budget
	compactOutputs func(*lineage.Graph) []string
	shutdownGrace time.Duration
}

// NewRunner builds a Runner with a fresh interner, a fully-wired handler
// registry (handlers.Register), and the given options applied.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		catalog:       catalog.Empty{},
		maxConcurrent: 4,
		maxDepth:      500,
		budget:        tsqlcontext.DefaultBudget,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.interner = intern.New(r.caseSensitive)
	r.engine = traverse.NewEngine(traverse.WithMaxDepth(r.maxDepth))
	handlers.Register(r.engine)
	return r
}

// Result is one script's analysis outcome.
type Result struct {
	Script      *ast.Script
	Graph       *lineage.Graph
	Diagnostics []tsqlcontext.Diagnostic
	Incomplete  bool
	Err         error
}

// AnalyzeAll runs scripts concurrently, bounded by max_concurrent_batches,
// cancelling every in-flight analysis if ctx is cancelled (the "parent
// shutdown token" of spec.md §5). Each script gets its own Context, Graph,
// and Walker, sharing only the Runner's interner and engine. A per-script
// failure does not cancel its siblings; it is reported on that script's
// Result.Err.
func (r *Runner) AnalyzeAll(ctx context.Context, scripts []*ast.Script) []*Result {
	if r.shutdownGrace > 0 {
		var cancel context.CancelFunc
		ctx, cancel = shutdownToken(ctx, r.shutdownGrace)
		defer cancel()
	}

	results := make([]*Result, len(scripts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.maxConcurrent)

	for i, script := range scripts {
		i, script := i, script
		g.Go(func() error {
			defer func() {
				if p := recover(); p != nil {
					results[i] = &Result{Script: script, Incomplete: true, Err: fmt.Errorf("%w: %v", lineage.ErrInternal, p)}
				}
			}()
			results[i] = r.analyzeOne(gctx, script)
			return nil
		})
	}
	_ = g.Wait() // analyzeOne never returns an error itself; a panic lands in Result.Err
	return results
}

func (r *Runner) analyzeOne(ctx context.Context, script *ast.Script) *Result {
	seq := intern.NewSequence(0)
	graph := lineage.New(r.interner, seq)
	actx := tsqlcontext.New(graph, r.catalog, r.interner,
		tsqlcontext.WithBudget(r.budget),
		tsqlcontext.WithCancel(ctx),
	)

	for _, b := range script.Batches {
		// WalkIterative, not Walk: a batch's top-level statement list is
		// exactly the flat, unbounded-size dimension the iterative variant
		// exists for (spec.md §4.4); nested constructs still recurse through
		// Walker.Visit once a handler re-enters the engine on a child.
		w := r.engine.WalkIterative(b, actx)
		if w.Incomplete {
			graph.Incomplete = true
		}
	}

	if r.compactOutputs != nil {
		graph.Compact(r.compactOutputs(graph))
	}

	return &Result{
		Script:      script,
		Graph:       graph,
		Diagnostics: actx.Diagnostics,
		Incomplete:  graph.Incomplete,
	}
}

// shutdownToken derives a context from parent that is cancelled grace after
// parent is cancelled (or when the returned CancelFunc is called), used by
// AnalyzeAll (via WithShutdownGrace) so in-flight work gets a bounded
// window to unwind (spec.md §5).
func shutdownToken(parent context.Context, grace time.Duration) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	stop := context.AfterFunc(parent, func() {
		time.AfterFunc(grace, cancel)
	})
	return ctx, func() {
		stop()
		cancel()
	}
}
