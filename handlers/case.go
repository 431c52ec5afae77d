package handlers

import (
	"fmt"

	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/context"
	"github.com/sql-lineage/tsqllineage/lineage"
)

// handleSearchedCase implements spec.md §4.5.6 for `CASE WHEN cond THEN v
// ... ELSE v END`: a fresh Expression node is the target of every arm's
// source columns; WHEN conditions contribute Filter edges, THEN/ELSE
// values contribute Indirect edges. The node ID is returned so the caller
// (extractExpr) can treat the whole CASE as a single source.
func handleSearchedCase(actx *context.Context, g *lineage.Graph, visible []string, n *ast.SearchedCase) string {
	caseID := g.AddExpression(fmt.Sprintf("CASE_%d", n.ID()), "", "case", "")
	for _, arm := range n.Whens {
		if cond, ok := arm.When.(ast.BooleanExpression); ok {
			linkEdges(g, extractBoolean(actx, g, visible, cond), caseID, lineage.EdgeFilter, "case-when", "")
		}
		linkEdges(g, extractExpr(actx, g, visible, arm.Then).columns, caseID, lineage.EdgeIndirect, "case", "")
	}
	if n.Else != nil {
		linkEdges(g, extractExpr(actx, g, visible, n.Else).columns, caseID, lineage.EdgeIndirect, "case", "")
	}
	return caseID
}

// handleSimpleCase implements spec.md §4.5.6 for `CASE input WHEN v THEN r
// ... ELSE r END`: the input expression also contributes, and each WHEN
// comparison value is linked as Filter (it gates which THEN fires, exactly
// like a searched CASE's condition).
func handleSimpleCase(actx *context.Context, g *lineage.Graph, visible []string, n *ast.SimpleCase) string {
	caseID := g.AddExpression(fmt.Sprintf("CASE_%d", n.ID()), "", "case", "")
	inputCols := extractExpr(actx, g, visible, n.Input).columns
	for _, arm := range n.Whens {
		linkEdges(g, inputCols, caseID, lineage.EdgeFilter, "case-when", "")
		if whenExpr, ok := arm.When.(ast.Expression); ok {
			linkEdges(g, extractExpr(actx, g, visible, whenExpr).columns, caseID, lineage.EdgeFilter, "case-when", "")
		}
		linkEdges(g, extractExpr(actx, g, visible, arm.Then).columns, caseID, lineage.EdgeIndirect, "case", "")
	}
	if n.Else != nil {
		linkEdges(g, extractExpr(actx, g, visible, n.Else).columns, caseID, lineage.EdgeIndirect, "case", "")
	}
	return caseID
}

// linkEdges adds one edge from every id in sources to target, skipping
// duplicates via the graph's own E2 dedup.
func linkEdges(g *lineage.Graph, sources []string, target string, kind lineage.EdgeKind, operation, sql string) {
	for _, src := range sources {
		_, _ = g.AddEdge(src, target, kind, operation, sql)
	}
}
