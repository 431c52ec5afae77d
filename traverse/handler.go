// Package traverse implements the bounded AST walk and handler dispatch
// engine (spec.md §4.4, component C4). It owns cycle, depth, fragment and
// time safety valves; construct-specific lineage rules live in the
// handlers package and are registered here by AST kind.
package traverse

import "github.com/sql-lineage/tsqllineage/ast"

// Handler implements the lineage rule for one or more AST node shapes
// (spec.md §4.5). CanHandle performs a structural match; Handle does the
// work. A true return from Handle means "fully processed — do not descend
// into children"; false falls back to the engine's default child walk.
type Handler interface {
	CanHandle(n ast.Node) bool
	Handle(n ast.Node, w *Walker) (bool, error)
}

// HandlerFunc adapts a plain function pair to the Handler interface for
// handlers with no state of their own.
type HandlerFunc struct {
	Matches func(n ast.Node) bool
	Run     func(n ast.Node, w *Walker) (bool, error)
}

func (f HandlerFunc) CanHandle(n ast.Node) bool                 { return f.Matches(n) }
func (f HandlerFunc) Handle(n ast.Node, w *Walker) (bool, error) { return f.Run(n, w) }

type registryEntry struct {
	handler  Handler
	priority int
	seq      int // registration order, breaks priority ties (§9)
}
