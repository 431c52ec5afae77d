package handlers

import (
	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/traverse"
)

// ControlFlowHandler implements spec.md §4.5.11: IF/WHILE/TRY-CATCH/BEGIN-
// END process their child statements in order and contribute no edges of
// their own. The IF/WHILE predicate itself is not walked — it never
// contains an assignment or projection target for lineage to attach to, so
// it is skipped entirely rather than linked to the body.
type ControlFlowHandler struct{}

func (ControlFlowHandler) CanHandle(n ast.Node) bool {
	switch n.Kind() {
	case ast.KindIf, ast.KindWhile, ast.KindTryCatch, ast.KindBeginEnd:
		return true
	default:
		return false
	}
}

func (ControlFlowHandler) Handle(n ast.Node, w *traverse.Walker) (bool, error) {
	var body []ast.Statement
	switch s := n.(type) {
	case *ast.If:
		body = append(append([]ast.Statement{}, s.Then...), s.Else...)
	case *ast.While:
		body = s.Body
	case *ast.TryCatch:
		body = append(append([]ast.Statement{}, s.Try...), s.Catch...)
	case *ast.BeginEnd:
		body = s.Body
	}
	for _, stmt := range body {
		if err := w.Visit(stmt); err != nil {
			return true, err
		}
	}
	return true, nil
}
