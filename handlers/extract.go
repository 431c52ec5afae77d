// Package handlers implements the per-AST-shape lineage rules (spec.md
// §4.5, component C5): SELECT, JOIN, CTE, CASE, window functions, INSERT,
// SELECT INTO, stored procedures, control flow, and the supplemented
// UPDATE/MERGE/DELETE/derived-table/PIVOT/UNPIVOT constructs (SPEC_FULL.md
// §C). Each handler consults the analysis context for name resolution and
// writes nodes/edges into the lineage graph using IDs minted via intern.
package handlers

import (
	"errors"
	"strings"

	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/context"
	"github.com/sql-lineage/tsqllineage/lineage"
)

// sourced is the result of extracting one scalar expression: the column
// IDs it ultimately depends on, and the operation label that best
// describes the transformation (spec.md §4.5.1, §4.5.2).
type sourced struct {
	columns []string
	label   string
}

// extractExpr is the recursive column-reference extractor of spec.md
// §4.5.1: it walks any scalar expression and collects ColumnReference
// leaves through binary/unary ops, parentheses, function calls, CASE, and
// the other constructs named there. CASE and window function expressions
// are richer than a flat source list (§4.5.6, §4.5.7): they mint their own
// Expression node, record their arm-level edges directly, and are
// represented to the caller as a single source — that node's ID — so the
// caller's own edge (e.g. CASE -> select-item target) composes correctly.
func extractExpr(actx *context.Context, g *lineage.Graph, visible []string, expr ast.Expression) sourced {
	if expr == nil {
		return sourced{}
	}
	switch e := expr.(type) {
	case *ast.ColumnRef:
		_, colID, err := actx.ResolveColumn(e.Name.Parts, visible)
		if err != nil {
			actx.AddDiagnostic(diagnosticKind(err), err.Error(), e.Location())
			return sourced{}
		}
		return sourced{columns: []string{colID}}

	case *ast.VariableRef:
		if colID, ok := actx.GetVariable(e.Name); ok {
			return sourced{columns: []string{colID}}
		}
		return sourced{}

	case *ast.Literal:
		return sourced{label: "literal"}

	case *ast.FunctionCall:
		var cols []string
		for _, a := range e.Args {
			cols = append(cols, extractExpr(actx, g, visible, a).columns...)
		}
		return sourced{columns: cols, label: strings.ToLower(e.Name)}

	case *ast.BinaryExpr:
		cols := append(extractExpr(actx, g, visible, e.Left).columns, extractExpr(actx, g, visible, e.Right).columns...)
		return sourced{columns: cols, label: e.Op}

	case *ast.UnaryExpr:
		r := extractExpr(actx, g, visible, e.Expr)
		return sourced{columns: r.columns, label: e.Op}

	case *ast.ParenExpr:
		return extractExpr(actx, g, visible, e.Expr)

	case *ast.Cast:
		r := extractExpr(actx, g, visible, e.Expr)
		return sourced{columns: r.columns, label: "cast"}

	case *ast.Convert:
		cols := extractExpr(actx, g, visible, e.Expr).columns
		cols = append(cols, extractExpr(actx, g, visible, e.Style).columns...)
		return sourced{columns: cols, label: "convert"}

	case *ast.SearchedCase:
		id := handleSearchedCase(actx, g, visible, e)
		return sourced{columns: []string{id}, label: "case"}

	case *ast.SimpleCase:
		id := handleSimpleCase(actx, g, visible, e)
		return sourced{columns: []string{id}, label: "case"}

	case *ast.WindowFunc:
		id := handleWindowFunc(actx, g, visible, e)
		return sourced{columns: []string{id}, label: strings.ToLower(e.Name)}

	default:
		return sourced{}
	}
}

// extractBoolean walks a BooleanExpression and collects every referenced
// column (spec.md §4.5.1: IS NULL, IN, LIKE, comparisons, boolean
// AND/OR/NOT), without minting any nodes of its own. Used by WHERE,
// HAVING, and join-condition processing.
func extractBoolean(actx *context.Context, g *lineage.Graph, visible []string, expr ast.BooleanExpression) []string {
	if expr == nil {
		return nil
	}
	switch e := expr.(type) {
	case *ast.Comparison:
		cols := extractExpr(actx, g, visible, e.Left).columns
		return append(cols, extractExpr(actx, g, visible, e.Right).columns...)
	case *ast.BoolBinary:
		return append(extractBoolean(actx, g, visible, e.Left), extractBoolean(actx, g, visible, e.Right)...)
	case *ast.BoolNot:
		return extractBoolean(actx, g, visible, e.Expr)
	case *ast.ParenBool:
		return extractBoolean(actx, g, visible, e.Expr)
	case *ast.IsNull:
		return extractExpr(actx, g, visible, e.Expr).columns
	case *ast.In:
		cols := extractExpr(actx, g, visible, e.Expr).columns
		for _, v := range e.List {
			cols = append(cols, extractExpr(actx, g, visible, v).columns...)
		}
		return cols
	case *ast.Like:
		return append(extractExpr(actx, g, visible, e.Expr).columns, extractExpr(actx, g, visible, e.Pattern).columns...)
	case *ast.Exists:
		return nil // subquery bodies are out of this extractor's scope (§1 non-goals: no correlated-subquery value tracing)
	default:
		return nil
	}
}

func diagnosticKind(err error) string {
	switch {
	case errors.Is(err, lineage.ErrAmbiguousColumn):
		return "AmbiguousColumn"
	case errors.Is(err, lineage.ErrUnknownIdentifier):
		return "UnknownIdentifier"
	default:
		return "Internal"
	}
}
