package handlers

import (
	"fmt"

	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/context"
	"github.com/sql-lineage/tsqllineage/lineage"
)

// ProjectQuery projects query's output columns onto target, the shared
// engine behind top-level SELECT, SELECT...INTO, CTEs, and derived tables
// (spec.md §4.5.2, §4.5.5, §4.5.9; SPEC_FULL.md §C.3 derived tables);
// INSERT...SELECT pairs onto its target through CollectProjectionPairs
// instead. operation labels Direct/identity edges ("select",
// "select-into", ...).
func ProjectQuery(actx *context.Context, g *lineage.Graph, query ast.QueryExpression, target string, operation string) {
	switch q := query.(type) {
	case *ast.QuerySpecification:
		projectQuerySpec(actx, g, q, target, operation)
	case *ast.BinaryQuery:
		ProjectQuery(actx, g, q.Left, target, operation)
		applySetOpArm(actx, g, q.Right, target, setOpLabel(q.Op))
	case *ast.Parenthesized:
		ProjectQuery(actx, g, q.Query, target, operation)
	}
}

func setOpLabel(op ast.SetOp) string {
	switch op {
	case ast.SetOpUnion:
		return "union"
	case ast.SetOpUnionAll:
		return "union-all"
	case ast.SetOpIntersect:
		return "intersect"
	case ast.SetOpExcept:
		return "except"
	default:
		return "union"
	}
}

// applySetOpArm implements spec.md §4.5.2's set-operation rule: every
// right-arm column at ordinal i adds an Indirect edge to the left-arm
// target column at ordinal i.
func applySetOpArm(actx *context.Context, g *lineage.Graph, query ast.QueryExpression, target string, label string) {
	pairs := CollectProjectionPairs(actx, g, query)
	tbl, ok := g.Table(target)
	if !ok {
		return
	}
	for i, p := range pairs {
		if i >= len(tbl.Columns) {
			break
		}
		linkEdges(g, p.columns, tbl.Columns[i], lineage.EdgeIndirect, label, "")
	}
}

// projPair is one ordinal select-item's extracted sources together with
// whatever is needed to pair it positionally onto a target column list
// without minting a throwaway table: INSERT's explicit/inferred column
// list (spec.md §4.5.8) and UNION-family set operations (§4.5.2) both
// consume this shape directly.
type projPair struct {
	columns []string
	direct  bool // true when the item is exactly a ColumnReference (identity, E3)
	label   string
	name    string // natural column name, used when the caller has no explicit name of its own
}

// CollectProjectionPairs returns query's select items in ordinal order as
// projPairs, resolving FROM and extracting each item's source columns but
// adding no target columns and no projection edges (FROM resolution and
// expression extraction still record their own tables, stub columns,
// CASE/window nodes and join/filter edges). Used by INSERT's positional column
// pairing (spec.md §4.5.8) and set-operation arms (§4.5.2) to project onto
// an existing target column list instead of inferring fresh columns.
func CollectProjectionPairs(actx *context.Context, g *lineage.Graph, query ast.QueryExpression) []projPair {
	switch q := query.(type) {
	case *ast.QuerySpecification:
		visible := resolveFrom(actx, g, q.From)
		var out []projPair
		for _, item := range q.SelectItems {
			out = append(out, projPairsForItem(actx, g, visible, item)...)
		}
		return out
	case *ast.BinaryQuery:
		return CollectProjectionPairs(actx, g, q.Left)
	case *ast.Parenthesized:
		return CollectProjectionPairs(actx, g, q.Query)
	default:
		return nil
	}
}

func projPairsForItem(actx *context.Context, g *lineage.Graph, visible []string, item ast.SelectItem) []projPair {
	switch it := item.(type) {
	case *ast.ScalarItem:
		name := it.Alias
		if name == "" {
			if cr, ok := it.Expr.(*ast.ColumnRef); ok {
				name = cr.Name.Last()
			} else {
				name = fmt.Sprintf("expr%d", it.ID())
			}
		}
		r := extractExpr(actx, g, visible, it.Expr)
		_, direct := it.Expr.(*ast.ColumnRef)
		return []projPair{{columns: r.columns, direct: direct, label: r.label, name: name}}
	case *ast.StarItem:
		var out []projPair
		for _, tid := range starTables(actx, it.Qualifier, visible) {
			if tbl, ok := g.Table(tid); ok {
				for _, c := range tbl.Columns {
					name := ""
					if col, ok := g.Column(c); ok {
						name = col.Name
					}
					out = append(out, projPair{columns: []string{c}, direct: true, name: name})
				}
			}
		}
		return out
	default:
		return nil
	}
}

func starTables(actx *context.Context, qualifier string, visible []string) []string {
	if qualifier == "" {
		return visible
	}
	if id, ok := actx.LookupTable(actx.ResolveAlias(qualifier)); ok {
		return []string{id}
	}
	return nil
}

func projectQuerySpec(actx *context.Context, g *lineage.Graph, q *ast.QuerySpecification, target string, operation string) {
	actx.PushScope(context.ScopeQuery, "")
	defer actx.PopScope()

	visible := resolveFrom(actx, g, q.From)
	outputExpr := g.AddExpression(fmt.Sprintf("QUERY_%d", q.ID()), "", "query-output", "")

	for _, item := range q.SelectItems {
		projectSelectItem(actx, g, visible, item, target, operation)
	}

	if q.Where != nil {
		linkEdges(g, extractBoolean(actx, g, visible, q.Where), outputExpr, lineage.EdgeFilter, "where", "")
	}
	if q.Having != nil {
		linkEdges(g, extractBoolean(actx, g, visible, q.Having), outputExpr, lineage.EdgeFilter, "having", "")
	}
	for _, gb := range q.GroupBy {
		linkEdges(g, extractExpr(actx, g, visible, gb.Expr).columns, outputExpr, lineage.EdgeGroupBy, "group-by", "")
	}
	for _, ob := range q.OrderBy {
		extractExpr(actx, g, visible, ob.Expr) // dependency tracking only, no edge (§4.5.4)
	}
}

// projectSelectItem implements spec.md §4.5.2 for one projection item:
// Direct when the expression is exactly a ColumnReference, Indirect
// otherwise, and the StarItem expansion rule (including the placeholder
// StarColumnN fallback when the source has no known columns).
func projectSelectItem(actx *context.Context, g *lineage.Graph, visible []string, item ast.SelectItem, target string, operation string) {
	switch it := item.(type) {
	case *ast.ScalarItem:
		name := it.Alias
		synthetic := false
		if name == "" {
			if cr, ok := it.Expr.(*ast.ColumnRef); ok {
				name = cr.Name.Last()
			} else {
				name = fmt.Sprintf("expr%d", it.ID())
				synthetic = true
			}
		}
		colID, err := g.AddColumn(target, name, "", true, false, synthetic)
		if err != nil {
			return
		}
		r := extractExpr(actx, g, visible, it.Expr)
		kind := lineage.EdgeIndirect
		label := r.label
		if _, isCol := it.Expr.(*ast.ColumnRef); isCol {
			kind = lineage.EdgeDirect
			label = operation
		} else if label == "" {
			label = "expression"
		}
		linkEdges(g, r.columns, colID, kind, label, "")

	case *ast.StarItem:
		tables := starTables(actx, it.Qualifier, visible)
		for _, tid := range tables {
			tbl, ok := g.Table(tid)
			if !ok {
				continue
			}
			if len(tbl.Columns) == 0 {
				colID, err := g.AddColumn(target, fmt.Sprintf("StarColumn%d", len(targetColumnsSoFar(g, target))), "", true, false, true)
				_ = err
				_ = colID
				continue
			}
			for _, srcCol := range tbl.Columns {
				col, ok := g.Column(srcCol)
				if !ok {
					continue
				}
				colID, err := g.AddColumn(target, col.Name, col.DataType, col.Nullable, col.IsComputed, col.Synthetic)
				if err != nil {
					continue
				}
				_, _ = g.AddEdge(srcCol, colID, lineage.EdgeDirect, operation, "")
			}
		}
	}
}

func targetColumnsSoFar(g *lineage.Graph, target string) []string {
	if tbl, ok := g.Table(target); ok {
		return tbl.Columns
	}
	return nil
}
