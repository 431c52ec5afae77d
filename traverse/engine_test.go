package traverse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/catalog"
	"github.com/sql-lineage/tsqllineage/context"
	"github.com/sql-lineage/tsqllineage/intern"
	"github.com/sql-lineage/tsqllineage/lineage"
)

func newTestCtx() *context.Context {
	g := lineage.New(intern.New(false), intern.NewSequence(0))
	return context.New(g, catalog.Empty{}, intern.New(false))
}

func TestDefaultDescentVisitsAllChildren(t *testing.T) {
	leaf1 := &ast.Literal{Base: ast.NewBase(ast.Location{})}
	leaf2 := &ast.Literal{Base: ast.NewBase(ast.Location{})}
	bin := &ast.BinaryExpr{Base: ast.NewBase(ast.Location{}), Left: leaf1, Right: leaf2, Op: "+"}

	var visitedKinds []ast.Kind
	e := NewEngine()
	e.Register(ast.KindLiteral, HandlerFunc{
		Matches: func(n ast.Node) bool { return true },
		Run: func(n ast.Node, w *Walker) (bool, error) {
			visitedKinds = append(visitedKinds, n.Kind())
			return true, nil
		},
	}, 0)

	w := e.Walk(bin, newTestCtx())
	assert.False(t, w.Incomplete)
	assert.Len(t, visitedKinds, 2)
}

func TestHandlerPriorityOrder(t *testing.T) {
	lit := &ast.Literal{Base: ast.NewBase(ast.Location{})}
	e := NewEngine()
	var winner string
	e.Register(ast.KindLiteral, HandlerFunc{
		Matches: func(n ast.Node) bool { return true },
		Run:     func(n ast.Node, w *Walker) (bool, error) { winner = "low"; return true, nil },
	}, 0)
	e.Register(ast.KindLiteral, HandlerFunc{
		Matches: func(n ast.Node) bool { return true },
		Run:     func(n ast.Node, w *Walker) (bool, error) { winner = "high"; return true, nil },
	}, 10)

	e.Walk(lit, newTestCtx())
	assert.Equal(t, "high", winner)
}

func TestCycleGuardVisitsOnce(t *testing.T) {
	lit := &ast.Literal{Base: ast.NewBase(ast.Location{})}
	paren := &ast.ParenExpr{Base: ast.NewBase(ast.Location{}), Expr: lit}
	count := 0
	e := NewEngine()
	e.Register(ast.KindLiteral, HandlerFunc{
		Matches: func(n ast.Node) bool { return true },
		Run:     func(n ast.Node, w *Walker) (bool, error) { count++; return true, nil },
	}, 0)

	w := e.Walk(paren, newTestCtx())
	_ = w.Visit(lit) // re-entry after the walk already visited it
	assert.Equal(t, 1, count)
}

func TestHandlerErrorRecordsDiagnosticAndSuppressesDescent(t *testing.T) {
	lit := &ast.Literal{Base: ast.NewBase(ast.Location{})}
	paren := &ast.ParenExpr{Base: ast.NewBase(ast.Location{}), Expr: lit}
	litVisits := 0
	e := NewEngine()
	e.Register(ast.KindParen, HandlerFunc{
		Matches: func(n ast.Node) bool { return true },
		Run:     func(n ast.Node, w *Walker) (bool, error) { return false, assertErr },
	}, 0)
	e.Register(ast.KindLiteral, HandlerFunc{
		Matches: func(n ast.Node) bool { return true },
		Run:     func(n ast.Node, w *Walker) (bool, error) { litVisits++; return true, nil },
	}, 0)

	actx := newTestCtx()
	e.Walk(paren, actx)
	assert.Len(t, actx.Diagnostics, 1)
	assert.Equal(t, "Internal", actx.Diagnostics[0].Kind)
	assert.Equal(t, 0, litVisits)
}

var assertErr = assertError("boom")

type assertError string

func (e assertError) Error() string { return string(e) }

func TestWalkIterativeShapeIdenticalToWalk(t *testing.T) {
	leaf1 := &ast.Literal{Base: ast.NewBase(ast.Location{})}
	leaf2 := &ast.Literal{Base: ast.NewBase(ast.Location{})}
	bin := &ast.BinaryExpr{Base: ast.NewBase(ast.Location{}), Left: leaf1, Right: leaf2, Op: "+"}

	var visited int
	e := NewEngine()
	e.Register(ast.KindLiteral, HandlerFunc{
		Matches: func(n ast.Node) bool { return true },
		Run:     func(n ast.Node, w *Walker) (bool, error) { visited++; return true, nil },
	}, 0)

	w := e.WalkIterative(bin, newTestCtx())
	assert.False(t, w.Incomplete)
	assert.Equal(t, 2, visited)
}

func TestDepthGuardAbortsSubtreeOnly(t *testing.T) {
	inner := &ast.Literal{Base: ast.NewBase(ast.Location{})}
	outer := inner
	for i := 0; i < 5; i++ {
		outer = &ast.ParenExpr{Base: ast.NewBase(ast.Location{}), Expr: outer}
	}
	visited := 0
	e := NewEngine(WithMaxDepth(2))
	e.Register(ast.KindLiteral, HandlerFunc{
		Matches: func(n ast.Node) bool { return true },
		Run:     func(n ast.Node, w *Walker) (bool, error) { visited++; return true, nil },
	}, 0)

	actx := newTestCtx()
	e.Walk(outer, actx)
	assert.Equal(t, 0, visited)
	assert.NotEmpty(t, actx.Diagnostics)
	assert.Equal(t, "BudgetExceeded", actx.Diagnostics[0].Kind)
}
