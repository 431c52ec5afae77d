package traverse

import (
	"fmt"

	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/context"
)

// Walker carries the state of one in-progress walk: the visited set (cycle
// guard, scope-of-walk lifetime per §4.4), the current recursion depth,
// and whether the walk was cut short by cancellation or a budget.
type Walker struct {
	engine  *Engine
	ctx     *context.Context
	visited map[uint64]bool
	depth   int

	// Incomplete is set once the walk unwinds early due to cancellation or
	// a budget (spec.md §7); callers should mark the resulting graph
	// incomplete accordingly.
	Incomplete bool
}

// Context returns the analysis context handlers resolve names against.
func (w *Walker) Context() *context.Context { return w.ctx }

// Visit enters n, dispatching to the first matching handler or descending
// into children when none matches or the winning handler returns false
// (spec.md §4.4). A node already in the visited set is treated as
// processed and not re-entered (cycle guard). Handlers call this directly
// to drive their own sub-traversals (e.g. IF/WHILE bodies or a procedure
// body).
func (w *Walker) Visit(n ast.Node) error {
	if n == nil {
		return nil
	}
	if w.visited[n.ID()] {
		return nil
	}
	w.visited[n.ID()] = true

	if w.depth > w.engine.maxDepth {
		w.ctx.AddDiagnostic("BudgetExceeded", fmt.Sprintf("AST depth exceeded max_depth=%d", w.engine.maxDepth), n.Location())
		return nil
	}

	w.ctx.Tick()
	if w.ctx.ShouldStop() {
		w.Incomplete = true
		return nil
	}

	handled := false
	if handler := w.engine.firstMatch(n); handler != nil {
		w.depth++
		var err error
		handled, err = handler.Handle(n, w)
		w.depth--
		if err != nil {
			// A handler error is recorded, not fatal to the walk (§4.5.12);
			// it also suppresses default descent to avoid repeating the
			// same failure against the node's children.
			w.ctx.AddDiagnostic("Internal", err.Error(), n.Location())
			handled = true
		}
	}

	if !handled {
		w.depth++
		for _, c := range n.Children() {
			if err := w.Visit(c); err != nil {
				w.depth--
				return err
			}
		}
		w.depth--
	}
	return nil
}

type iterFrame struct {
	node  ast.Node
	depth int
}

// visitIterative is the explicit-stack counterpart to Visit, used for the
// default (unhandled) descent path only; see Engine.WalkIterative.
func (w *Walker) visitIterative(root ast.Node) {
	if root == nil {
		return
	}
	stack := []iterFrame{{root, w.depth}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := f.node
		if n == nil || w.visited[n.ID()] {
			continue
		}
		w.visited[n.ID()] = true

		if f.depth > w.engine.maxDepth {
			w.ctx.AddDiagnostic("BudgetExceeded", fmt.Sprintf("AST depth exceeded max_depth=%d", w.engine.maxDepth), n.Location())
			continue
		}

		w.ctx.Tick()
		if w.ctx.ShouldStop() {
			w.Incomplete = true
			return
		}

		handled := false
		if handler := w.engine.firstMatch(n); handler != nil {
			saved := w.depth
			w.depth = f.depth + 1
			var err error
			handled, err = handler.Handle(n, w)
			w.depth = saved
			if err != nil {
				w.ctx.AddDiagnostic("Internal", err.Error(), n.Location())
				handled = true
			}
		}

		if !handled {
			children := n.Children()
			for i := len(children) - 1; i >= 0; i-- {
				stack = append(stack, iterFrame{children[i], f.depth + 1})
			}
		}
	}
}
