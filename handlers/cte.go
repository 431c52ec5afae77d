package handlers

import (
	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/context"
	"github.com/sql-lineage/tsqllineage/lineage"
)

// processWithClause implements spec.md §4.5.5: CTEs are processed in
// declaration order, each minting a CTE-typed Table. The binding is
// registered before the inner query is projected so a CTE may reference
// itself (recursive CTEs) or an earlier sibling.
func processWithClause(actx *context.Context, g *lineage.Graph, w *ast.WithClause) {
	if w == nil {
		return
	}
	actx.ProcessingWithClause = true
	defer func() { actx.ProcessingWithClause = false }()

	for _, cte := range w.CTEs {
		id := g.AddTable(cte.Name, "", "", lineage.TableCTE)
		for _, col := range cte.Columns {
			_, _ = g.AddColumn(id, col, "", true, false, false)
		}
		actx.RegisterCTE(cte.Name, id)

		actx.ProcessingCTE = true
		if cte.Query != nil {
			processSelectInto(actx, g, cte.Query, id, "select")
		}
		actx.ProcessingCTE = false
	}
}

// processSelectInto projects a *ast.Select (itself possibly carrying its
// own nested WITH clause) onto target, used uniformly by CTE bodies,
// derived tables, top-level SELECT, and SELECT ... INTO.
func processSelectInto(actx *context.Context, g *lineage.Graph, sel *ast.Select, target string, operation string) {
	if sel.With != nil {
		processWithClause(actx, g, sel.With)
	}
	ProjectQuery(actx, g, sel.Query, target, operation)
}
