package handlers

import (
	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/context"
	"github.com/sql-lineage/tsqllineage/lineage"
	"github.com/sql-lineage/tsqllineage/traverse"
)

// UpdateHandler implements SPEC_FULL.md §C.1: each SET item behaves like an
// INSERT column (Direct with operation "update" for a bare column
// reference; otherwise Indirect, labeled with the expression's own
// operation or "update" when it has none); WHERE contributes Filter edges into a synthetic
// predicate node, same shape as DELETE.
type UpdateHandler struct{}

func (UpdateHandler) CanHandle(n ast.Node) bool { return n.Kind() == ast.KindUpdate }

func (UpdateHandler) Handle(n ast.Node, w *traverse.Walker) (bool, error) {
	u := n.(*ast.Update)
	actx := w.Context()
	g := actx.Graph

	name := objectName(u.Target)
	targetID := resolveOrStubTable(actx, g, name, lineage.TableBase)
	if u.Alias != "" {
		actx.AddTableAlias(u.Alias, name)
	}
	visible := []string{targetID}
	if u.From != nil {
		visible = append(visible, resolveFrom(actx, g, u.From)...)
	}

	for _, item := range u.Set {
		colID, err := g.AddColumn(targetID, item.Column.Last(), "", true, false, false)
		if err != nil {
			continue
		}
		r := extractExpr(actx, g, visible, item.Expr)
		kind, label := lineage.EdgeIndirect, r.label
		if _, isCol := item.Expr.(*ast.ColumnRef); isCol {
			kind, label = lineage.EdgeDirect, "update"
		} else if label == "" {
			label = "update"
		}
		linkEdges(g, r.columns, colID, kind, label, "")
	}

	if u.Where != nil {
		predExpr := g.AddExpression("", "", "predicate", "")
		linkEdges(g, extractBoolean(actx, g, visible, u.Where), predExpr, lineage.EdgeFilter, "where", "")
	}
	return true, nil
}

// DeleteHandler implements SPEC_FULL.md §C.2: DELETE produces no
// column-to-column edges; WHERE columns link into a synthetic
// delete-predicate Expression node.
type DeleteHandler struct{}

func (DeleteHandler) CanHandle(n ast.Node) bool { return n.Kind() == ast.KindDelete }

func (DeleteHandler) Handle(n ast.Node, w *traverse.Walker) (bool, error) {
	d := n.(*ast.Delete)
	actx := w.Context()
	g := actx.Graph

	name := objectName(d.Target)
	targetID := resolveOrStubTable(actx, g, name, lineage.TableBase)
	if d.Alias != "" {
		actx.AddTableAlias(d.Alias, name)
	}
	if d.Where != nil {
		predExpr := g.AddExpression("", "", "delete-predicate", "")
		linkEdges(g, extractBoolean(actx, g, []string{targetID}, d.Where), predExpr, lineage.EdgeFilter, "where", "")
	}
	return true, nil
}

// MergeHandler implements SPEC_FULL.md §C.1: the ON clause contributes
// Join edges exactly like a JOIN predicate; WHEN MATCHED ... UPDATE arms
// behave like UPDATE SET items, WHEN NOT MATCHED ... INSERT arms behave
// like positional INSERT columns, both labeled "merge"; WHEN ... DELETE
// arms contribute no column edges.
type MergeHandler struct{}

func (MergeHandler) CanHandle(n ast.Node) bool { return n.Kind() == ast.KindMerge }

func (MergeHandler) Handle(n ast.Node, w *traverse.Walker) (bool, error) {
	m := n.(*ast.Merge)
	actx := w.Context()
	g := actx.Graph

	name := objectName(m.Target)
	targetID := resolveOrStubTable(actx, g, name, lineage.TableBase)
	sourceIDs := resolveFrom(actx, g, m.Source)
	visible := append([]string{targetID}, sourceIDs...)

	if m.On != nil {
		// Resolve the ON clause once, before taking the target/source column
		// snapshots below: for catalog-less tables resolution is what creates
		// the stub columns that membership is checked against (same ordering
		// bug as handleJoinCondition in from.go).
		onCols := extractBoolean(actx, g, visible, m.On)
		mergeExpr := g.AddExpression("", "", "merge-condition", "")
		linkEdges(g, onCols, mergeExpr, lineage.EdgeFilter, "merge-condition", "")
		mergeJoinEdges(g, onCols, []string{targetID}, sourceIDs)
	}

	for _, when := range m.Whens {
		applyMergeWhen(actx, g, visible, targetID, when)
	}
	return true, nil
}

func mergeJoinEdges(g *lineage.Graph, onCols []string, target, source []string) {
	targetCols := columnsUnder(g, target)
	sourceCols := columnsUnder(g, source)
	for _, c := range onCols {
		if !containsID(targetCols, c) {
			continue
		}
		for _, s := range onCols {
			if containsID(sourceCols, s) {
				_, _ = g.AddEdge(c, s, lineage.EdgeJoin, "merge-condition", "")
				_, _ = g.AddEdge(s, c, lineage.EdgeJoin, "merge-condition", "")
			}
		}
	}
}

func applyMergeWhen(actx *context.Context, g *lineage.Graph, visible []string, targetID string, when ast.MergeWhen) {
	switch {
	case when.IsDelete:
		return
	case len(when.UpdateSet) > 0:
		for _, item := range when.UpdateSet {
			colID, err := g.AddColumn(targetID, item.Column.Last(), "", true, false, false)
			if err != nil {
				continue
			}
			r := extractExpr(actx, g, visible, item.Expr)
			kind := lineage.EdgeIndirect
			if _, isCol := item.Expr.(*ast.ColumnRef); isCol {
				kind = lineage.EdgeDirect
			}
			linkEdges(g, r.columns, colID, kind, "merge", "")
		}
	case len(when.InsertCols) > 0:
		for i, colName := range when.InsertCols {
			if i >= len(when.InsertVals) {
				break
			}
			colID, err := g.AddColumn(targetID, colName, "", true, false, false)
			if err != nil {
				continue
			}
			r := extractExpr(actx, g, visible, when.InsertVals[i])
			kind := lineage.EdgeIndirect
			if _, isCol := when.InsertVals[i].(*ast.ColumnRef); isCol {
				kind = lineage.EdgeDirect
			}
			linkEdges(g, r.columns, colID, kind, "merge", "")
		}
	}
}
