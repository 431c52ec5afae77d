package handlers

import (
	"fmt"
	"strings"

	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/context"
	"github.com/sql-lineage/tsqllineage/lineage"
)

// handleWindowFunc implements spec.md §4.5.7: PARTITION BY contributes
// GroupBy edges, ORDER BY within the window is dependency-only (no edge),
// ROWS/RANGE frame bounds contribute Filter edges, and the function's own
// arguments contribute Indirect edges, all into a fresh Expression node
// representing the window result.
func handleWindowFunc(actx *context.Context, g *lineage.Graph, visible []string, n *ast.WindowFunc) string {
	winID := g.AddExpression(fmt.Sprintf("WINDOW_%d", n.ID()), "", "window", "")

	for _, p := range n.Over.PartitionBy {
		linkEdges(g, extractExpr(actx, g, visible, p).columns, winID, lineage.EdgeGroupBy, "partition-by", "")
	}
	for _, o := range n.Over.OrderBy {
		extractExpr(actx, g, visible, o.Expr) // dependency tracking only, no edge (§4.5.7)
	}
	if n.Over.FrameStart != nil {
		linkEdges(g, extractExpr(actx, g, visible, n.Over.FrameStart).columns, winID, lineage.EdgeFilter, "frame", "")
	}
	if n.Over.FrameEnd != nil {
		linkEdges(g, extractExpr(actx, g, visible, n.Over.FrameEnd).columns, winID, lineage.EdgeFilter, "frame", "")
	}
	for _, a := range n.Args {
		linkEdges(g, extractExpr(actx, g, visible, a).columns, winID, lineage.EdgeIndirect, strings.ToLower(n.Name), "")
	}
	return winID
}
