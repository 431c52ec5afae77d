package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/catalog"
	"github.com/sql-lineage/tsqllineage/context"
	"github.com/sql-lineage/tsqllineage/intern"
	"github.com/sql-lineage/tsqllineage/lineage"
	"github.com/sql-lineage/tsqllineage/traverse"
)

// newTestEngine builds a fully-wired engine, graph, and context the way
// batch.Runner does, but without the batch package's concurrency machinery
// — these tests drive one statement at a time (spec.md §8's worked
// examples, S1-S6).
func newTestEngine() (*context.Context, *lineage.Graph, *traverse.Engine) {
	in := intern.New(false)
	seq := intern.NewSequence(0)
	g := lineage.New(in, seq)
	actx := context.New(g, catalog.Empty{}, in)
	engine := traverse.NewEngine()
	Register(engine)
	return actx, g, engine
}

func loc() ast.Location { return ast.Location{} }

func colRef(parts ...string) *ast.ColumnRef {
	return &ast.ColumnRef{Base: ast.NewBase(loc()), Name: ast.MultipartName{Parts: parts}}
}

func varRef(name string) *ast.VariableRef {
	return &ast.VariableRef{Base: ast.NewBase(loc()), Name: name}
}

func lit(text string) *ast.Literal {
	return &ast.Literal{Base: ast.NewBase(loc()), Text: text}
}

func namedTable(name string) *ast.NamedTable {
	return &ast.NamedTable{Base: ast.NewBase(loc()), Object: ast.SchemaObjectName{Name: name}}
}

func scalarItem(expr ast.Expression, alias string) *ast.ScalarItem {
	return &ast.ScalarItem{Base: ast.NewBase(loc()), Expr: expr, Alias: alias}
}

// findEdge returns the first edge of kind from src to tgt, if any.
func findEdge(g *lineage.Graph, src, tgt string, kind lineage.EdgeKind) *lineage.Edge {
	for _, e := range g.OutEdges(src) {
		if e.TargetID == tgt && e.Kind == kind {
			return e
		}
	}
	return nil
}

// S1: SELECT a, b+1 AS c FROM t;
// Expect: t.a->out.a[Direct,"select"], t.b->out.c[Indirect,"+"].
func TestScenarioS1_SelectWithExpression(t *testing.T) {
	actx, g, engine := newTestEngine()

	sel := &ast.Select{
		Base: ast.NewBase(loc()),
		Query: &ast.QuerySpecification{
			Base: ast.NewBase(loc()),
			SelectItems: []ast.SelectItem{
				scalarItem(colRef("a"), ""),
				scalarItem(&ast.BinaryExpr{Base: ast.NewBase(loc()), Op: "+", Left: colRef("b"), Right: lit("1")}, "c"),
			},
			From: namedTable("t"),
		},
	}
	engine.Walk(sel, actx)

	outID, ok := g.TableID("out")
	require.True(t, ok)
	tID, ok := g.TableID("t")
	require.True(t, ok)

	aOut, ok := g.ColumnID(outID, "a")
	require.True(t, ok)
	cOut, ok := g.ColumnID(outID, "c")
	require.True(t, ok)
	aSrc, ok := g.ColumnID(tID, "a")
	require.True(t, ok)
	bSrc, ok := g.ColumnID(tID, "b")
	require.True(t, ok)

	edge := findEdge(g, aSrc, aOut, lineage.EdgeDirect)
	require.NotNil(t, edge)
	assert.Equal(t, "select", edge.Operation)

	edge = findEdge(g, bSrc, cOut, lineage.EdgeIndirect)
	require.NotNil(t, edge)
	assert.Equal(t, "+", edge.Operation)
}

// S2: INSERT INTO r(x,y) SELECT a, UPPER(b) FROM t;
// Expect: t.a->r.x[Direct,"insert"], t.b->r.y[Indirect,"upper"].
func TestScenarioS2_InsertSelect(t *testing.T) {
	actx, g, engine := newTestEngine()

	ins := &ast.Insert{
		Base:    ast.NewBase(loc()),
		Target:  ast.SchemaObjectName{Name: "r"},
		Columns: []string{"x", "y"},
		Source: &ast.Select{
			Base: ast.NewBase(loc()),
			Query: &ast.QuerySpecification{
				Base: ast.NewBase(loc()),
				SelectItems: []ast.SelectItem{
					scalarItem(colRef("a"), ""),
					scalarItem(&ast.FunctionCall{Base: ast.NewBase(loc()), Name: "UPPER", Args: []ast.Expression{colRef("b")}}, ""),
				},
				From: namedTable("t"),
			},
		},
	}
	engine.Walk(ins, actx)

	rID, ok := g.TableID("r")
	require.True(t, ok)
	tID, ok := g.TableID("t")
	require.True(t, ok)

	xID, ok := g.ColumnID(rID, "x")
	require.True(t, ok)
	yID, ok := g.ColumnID(rID, "y")
	require.True(t, ok)
	aID, ok := g.ColumnID(tID, "a")
	require.True(t, ok)
	bID, ok := g.ColumnID(tID, "b")
	require.True(t, ok)

	edge := findEdge(g, aID, xID, lineage.EdgeDirect)
	require.NotNil(t, edge)
	assert.Equal(t, "insert", edge.Operation)

	edge = findEdge(g, bID, yID, lineage.EdgeIndirect)
	require.NotNil(t, edge)
	assert.Equal(t, "upper", edge.Operation)
}

// S3: WITH q AS (SELECT a FROM t) SELECT a FROM q;
// Expect: a CTE table q with column a; t.a->q.a[Direct,"select"],
// q.a->out.a[Direct,"select"].
func TestScenarioS3_CTE(t *testing.T) {
	actx, g, engine := newTestEngine()

	sel := &ast.Select{
		Base: ast.NewBase(loc()),
		With: &ast.WithClause{
			CTEs: []ast.CTE{
				{
					Name: "q",
					Query: &ast.Select{
						Base: ast.NewBase(loc()),
						Query: &ast.QuerySpecification{
							Base:        ast.NewBase(loc()),
							SelectItems: []ast.SelectItem{scalarItem(colRef("a"), "")},
							From:        namedTable("t"),
						},
					},
				},
			},
		},
		Query: &ast.QuerySpecification{
			Base:        ast.NewBase(loc()),
			SelectItems: []ast.SelectItem{scalarItem(colRef("a"), "")},
			From:        namedTable("q"),
		},
	}
	engine.Walk(sel, actx)

	qID, ok := g.TableID("q")
	require.True(t, ok)
	qTbl, ok := g.Table(qID)
	require.True(t, ok)
	assert.Equal(t, lineage.TableCTE, qTbl.Type)

	tID, ok := g.TableID("t")
	require.True(t, ok)
	outID, ok := g.TableID("out")
	require.True(t, ok)

	tA, ok := g.ColumnID(tID, "a")
	require.True(t, ok)
	qA, ok := g.ColumnID(qID, "a")
	require.True(t, ok)
	outA, ok := g.ColumnID(outID, "a")
	require.True(t, ok)

	edge := findEdge(g, tA, qA, lineage.EdgeDirect)
	require.NotNil(t, edge)
	assert.Equal(t, "select", edge.Operation)

	edge = findEdge(g, qA, outA, lineage.EdgeDirect)
	require.NotNil(t, edge)
	assert.Equal(t, "select", edge.Operation)
}

// S4: SELECT t.a FROM t JOIN u ON t.a = u.a;
// Expect: a Join edge t.a<->u.a, and t.a->out.a[Direct,"select"]. This is
// the regression test for the ON-clause snapshot-ordering bug: resolving
// the join condition must create t.a/u.a before left/right membership is
// checked, or no Join edge is ever recorded for catalog-less tables.
func TestScenarioS4_JoinCondition(t *testing.T) {
	actx, g, engine := newTestEngine()

	on := &ast.Comparison{
		Base:  ast.NewBase(loc()),
		Op:    "=",
		Left:  colRef("t", "a"),
		Right: colRef("u", "a"),
	}
	sel := &ast.Select{
		Base: ast.NewBase(loc()),
		Query: &ast.QuerySpecification{
			Base:        ast.NewBase(loc()),
			SelectItems: []ast.SelectItem{scalarItem(colRef("t", "a"), "")},
			From: &ast.JoinedTable{
				Base:     ast.NewBase(loc()),
				Left:     namedTable("t"),
				Right:    namedTable("u"),
				JoinKind: ast.JoinInner,
				On:       on,
			},
		},
	}
	engine.Walk(sel, actx)

	tID, ok := g.TableID("t")
	require.True(t, ok)
	uID, ok := g.TableID("u")
	require.True(t, ok)
	outID, ok := g.TableID("out")
	require.True(t, ok)

	tA, ok := g.ColumnID(tID, "a")
	require.True(t, ok)
	uA, ok := g.ColumnID(uID, "a")
	require.True(t, ok)
	outA, ok := g.ColumnID(outID, "a")
	require.True(t, ok)

	joinEdge := findEdge(g, tA, uA, lineage.EdgeJoin)
	require.NotNil(t, joinEdge, "expected a Join edge between t.a and u.a")
	assert.Equal(t, string(ast.JoinInner), joinEdge.Operation)
	assert.NotNil(t, findEdge(g, uA, tA, lineage.EdgeJoin), "Join edges are recorded in both directions")

	edge := findEdge(g, tA, outA, lineage.EdgeDirect)
	require.NotNil(t, edge)
	assert.Equal(t, "select", edge.Operation)
}

// S5: DECLARE @v INT = 1; SET @v = @v + 1;
// Expect: SET's self-reference produces the self-loop edge @v->@v
// [Indirect,"+"] named by spec.md §8; the literal initializer contributes
// no edge of its own since a literal has no source columns.
func TestScenarioS5_DeclareAndSetVariable(t *testing.T) {
	actx, g, engine := newTestEngine()

	decl := &ast.Declare{Base: ast.NewBase(loc()), Name: "@v", Type: "INT", Initial: lit("1")}
	engine.Walk(decl, actx)

	set := &ast.SetVariable{
		Base: ast.NewBase(loc()),
		Name: "@v",
		Expr: &ast.BinaryExpr{Base: ast.NewBase(loc()), Op: "+", Left: varRef("@v"), Right: lit("1")},
	}
	engine.Walk(set, actx)

	vID, ok := actx.GetVariable("@v")
	require.True(t, ok)

	edge := findEdge(g, vID, vID, lineage.EdgeIndirect)
	require.NotNil(t, edge, "expected a self-loop edge on @v from the SET assignment")
	assert.Equal(t, "+", edge.Operation)
}

// S6: SELECT CASE WHEN a>0 THEN b ELSE c END AS r FROM t;
// Expect: a CASE Expression node; t.a->CASE[Filter], t.b->CASE[Indirect],
// t.c->CASE[Indirect], CASE->out.r[Indirect,"case"].
func TestScenarioS6_SearchedCase(t *testing.T) {
	actx, g, engine := newTestEngine()

	caseExpr := &ast.SearchedCase{
		Base: ast.NewBase(loc()),
		Whens: []ast.WhenThen{
			{
				When: &ast.Comparison{Base: ast.NewBase(loc()), Op: ">", Left: colRef("a"), Right: lit("0")},
				Then: colRef("b"),
			},
		},
		Else: colRef("c"),
	}
	sel := &ast.Select{
		Base: ast.NewBase(loc()),
		Query: &ast.QuerySpecification{
			Base:        ast.NewBase(loc()),
			SelectItems: []ast.SelectItem{scalarItem(caseExpr, "r")},
			From:        namedTable("t"),
		},
	}
	engine.Walk(sel, actx)

	tID, ok := g.TableID("t")
	require.True(t, ok)
	outID, ok := g.TableID("out")
	require.True(t, ok)

	aID, ok := g.ColumnID(tID, "a")
	require.True(t, ok)
	bID, ok := g.ColumnID(tID, "b")
	require.True(t, ok)
	cID, ok := g.ColumnID(tID, "c")
	require.True(t, ok)
	rID, ok := g.ColumnID(outID, "r")
	require.True(t, ok)

	var caseID string
	for _, e := range g.OutEdges(aID) {
		if e.Kind == lineage.EdgeFilter {
			caseID = e.TargetID
		}
	}
	require.NotEmpty(t, caseID, "expected a Filter edge from t.a into the CASE expression node")

	expr, ok := g.Expression(caseID)
	require.True(t, ok)
	assert.Equal(t, "case", expr.ExprType)

	assert.NotNil(t, findEdge(g, bID, caseID, lineage.EdgeIndirect))
	assert.NotNil(t, findEdge(g, cID, caseID, lineage.EdgeIndirect))

	edge := findEdge(g, caseID, rID, lineage.EdgeIndirect)
	require.NotNil(t, edge)
	assert.Equal(t, "case", edge.Operation)
}
