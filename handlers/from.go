package handlers

import (
	"fmt"
	"strings"

	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/context"
	"github.com/sql-lineage/tsqllineage/lineage"
)

func objectName(o ast.SchemaObjectName) string {
	parts := make([]string, 0, 3)
	if o.Database != "" {
		parts = append(parts, o.Database)
	}
	if o.Schema != "" {
		parts = append(parts, o.Schema)
	}
	parts = append(parts, o.Name)
	return strings.Join(parts, ".")
}

// resolveOrStubTable looks up name in the context's registries; if
// unknown, it consults the catalog, and failing that creates a stub Table
// with no catalogued columns (spec.md §6.2: "when the catalog returns
// nothing, the core proceeds with unknown-typed stubs").
func resolveOrStubTable(actx *context.Context, g *lineage.Graph, name string, typ lineage.TableType) string {
	if id, ok := actx.LookupTable(name); ok {
		return id
	}

	schema, db := "", ""
	if meta, ok := actx.Catalog.GetTable(name); ok {
		schema, db = meta.Schema, meta.Database
		id := g.AddTable(name, schema, db, typ)
		for _, col := range meta.Columns {
			_, _ = g.AddColumn(id, col.Name, col.DataType, col.Nullable, col.IsComputed, false)
		}
		actx.RegisterTable(name, id)
		return id
	}

	id := g.AddTable(name, schema, db, typ)
	actx.RegisterTable(name, id)
	return id
}

// resolveFrom processes a FROM-clause TableReference, registering aliases
// and tables in actx and returning the set of table IDs visible for
// unqualified column resolution within the enclosing query (spec.md
// §4.3, §4.5.3; derived tables and PIVOT/UNPIVOT per SPEC_FULL.md §C).
func resolveFrom(actx *context.Context, g *lineage.Graph, ref ast.TableReference) []string {
	if ref == nil {
		return nil
	}
	switch t := ref.(type) {
	case *ast.NamedTable:
		name := objectName(t.Object)
		typ := lineage.TableBase
		if strings.HasPrefix(name, "#") {
			typ = lineage.TableTemp
		} else if strings.HasPrefix(name, "@") {
			typ = lineage.TableVar
		}
		id := resolveOrStubTable(actx, g, name, typ)
		if t.Alias != "" {
			actx.AddTableAlias(t.Alias, name)
		}
		return []string{id}

	case *ast.JoinedTable:
		left := resolveFrom(actx, g, t.Left)
		right := resolveFrom(actx, g, t.Right)
		visible := append(append([]string{}, left...), right...)
		handleJoinCondition(actx, g, visible, left, right, t)
		return visible

	case *ast.DerivedTable:
		return []string{resolveDerivedTable(actx, g, t)}

	case *ast.PivotTable:
		return []string{resolvePivot(actx, g, t)}

	case *ast.UnpivotTable:
		return []string{resolveUnpivot(actx, g, t)}

	case *ast.TableValuedFunction:
		return []string{resolveTableValuedFunction(actx, g, t)}

	default:
		return nil
	}
}

// handleJoinCondition implements spec.md §4.5.3: a Join edge between every
// pair of columns on opposite sides of the predicate (sidedness recorded
// in the operation label), plus Filter edges from every ON-clause column
// into a synthetic join-condition Expression node.
func handleJoinCondition(actx *context.Context, g *lineage.Graph, visible, left, right []string, t *ast.JoinedTable) {
	if t.On == nil {
		return
	}
	// Resolve the ON clause first: for catalog-less tables, resolution is
	// what creates the stub columns (context.ResolveColumn) that left/right
	// membership is then checked against. Snapshotting columnsUnder before
	// resolving would see each side's table with zero columns and never
	// find a match (spec.md §8 S4).
	onCols := extractBoolean(actx, g, visible, t.On)
	leftCols := columnsUnder(g, left)
	rightCols := columnsUnder(g, right)

	joinExpr := g.AddExpression(fmt.Sprintf("JOIN_%d", t.ID()), "", "join", "")
	linkEdges(g, onCols, joinExpr, lineage.EdgeFilter, "join-condition", "")

	for _, c := range onCols {
		if containsID(leftCols, c) {
			for _, r := range rightCols {
				if containsID(onCols, r) {
					_, _ = g.AddEdge(c, r, lineage.EdgeJoin, string(t.JoinKind), "")
					_, _ = g.AddEdge(r, c, lineage.EdgeJoin, string(t.JoinKind), "")
				}
			}
		}
	}
}

func columnsUnder(g *lineage.Graph, tableIDs []string) []string {
	var out []string
	for _, tid := range tableIDs {
		if tbl, ok := g.Table(tid); ok {
			out = append(out, tbl.Columns...)
		}
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, i := range ids {
		if i == id {
			return true
		}
	}
	return false
}

// resolveDerivedTable implements SPEC_FULL.md §C.3: a subquery in FROM is
// modeled like a CTE — a synthetic Derived Table whose columns are
// inferred from the inner projection, registered under its alias.
func resolveDerivedTable(actx *context.Context, g *lineage.Graph, t *ast.DerivedTable) string {
	id := g.AddSyntheticTable(t.Alias, fmt.Sprintf("derived\x1f%d", t.ID()), lineage.TableDerived)
	if t.Query != nil {
		processSelectInto(actx, g, t.Query, id, "select")
	}
	if t.Alias != "" {
		actx.RegisterTable(t.Alias, id)
		actx.AddTableAlias(t.Alias, t.Alias)
	}
	return id
}

// resolvePivot implements SPEC_FULL.md §C.5: the source table resolves
// normally; every source column feeding the aggregate/value column links
// with an Indirect "pivot" edge to the corresponding output column.
func resolvePivot(actx *context.Context, g *lineage.Graph, t *ast.PivotTable) string {
	sourceVisible := resolveFrom(actx, g, t.Source)
	id := g.AddSyntheticTable(t.Alias, fmt.Sprintf("pivot\x1f%d", t.ID()), lineage.TableDerived)

	_, valueColID, err := actx.ResolveColumn(t.ValueColumn.Parts, sourceVisible)
	if err != nil {
		actx.AddDiagnostic(diagnosticKind(err), err.Error(), t.Location())
	}
	for _, label := range t.InValues {
		outColID, cerr := g.AddColumn(id, label, "", true, false, true)
		if cerr == nil && valueColID != "" {
			_, _ = g.AddEdge(valueColID, outColID, lineage.EdgeIndirect, "pivot", "")
		}
	}
	if t.Alias != "" {
		actx.RegisterTable(t.Alias, id)
	}
	return id
}

// resolveUnpivot implements SPEC_FULL.md §C.5: the source columns named in
// InColumns feed the unpivoted value/name column pair.
func resolveUnpivot(actx *context.Context, g *lineage.Graph, t *ast.UnpivotTable) string {
	sourceVisible := resolveFrom(actx, g, t.Source)
	id := g.AddSyntheticTable(t.Alias, fmt.Sprintf("unpivot\x1f%d", t.ID()), lineage.TableDerived)

	valueColID, _ := g.AddColumn(id, t.ValueColumn, "", true, false, true)
	nameColID, _ := g.AddColumn(id, t.NameColumn, "", true, false, true)
	for _, srcName := range t.InColumns {
		if _, srcID, err := actx.ResolveColumn([]string{srcName}, sourceVisible); err == nil {
			_, _ = g.AddEdge(srcID, valueColID, lineage.EdgeIndirect, "unpivot", "")
			_, _ = g.AddEdge(srcID, nameColID, lineage.EdgeIndirect, "unpivot", "")
		}
	}
	if t.Alias != "" {
		actx.RegisterTable(t.Alias, id)
	}
	return id
}

// resolveTableValuedFunction implements SPEC_FULL.md §C.4: a set-returning
// function in FROM is registered as a stub Base table with a single
// placeholder column when no catalog metadata is available, mirroring the
// SELECT * placeholder rule rather than inventing a new fallback.
func resolveTableValuedFunction(actx *context.Context, g *lineage.Graph, t *ast.TableValuedFunction) string {
	name := objectName(t.Name)
	id := resolveOrStubTable(actx, g, name, lineage.TableBase)
	if tbl, ok := g.Table(id); ok && len(tbl.Columns) == 0 {
		_, _ = g.AddColumn(id, "StarColumn0", "", true, false, true)
	}
	if t.Alias != "" {
		actx.AddTableAlias(t.Alias, name)
	}
	return id
}
