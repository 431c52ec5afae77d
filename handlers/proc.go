package handlers

import (
	"fmt"

	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/context"
	"github.com/sql-lineage/tsqllineage/lineage"
	"github.com/sql-lineage/tsqllineage/traverse"
)

// CreateProcHandler implements spec.md §4.5.10: a Procedure-typed Table
// node whose Columns are its formal parameters, processed with
// CurrentProcedure set so nested DECLARE/SET statements attach their
// variables to the procedure rather than the global @@Variables owner.
type CreateProcHandler struct{}

func (CreateProcHandler) CanHandle(n ast.Node) bool { return n.Kind() == ast.KindCreateProc }

func (CreateProcHandler) Handle(n ast.Node, w *traverse.Walker) (bool, error) {
	proc := n.(*ast.CreateProc)
	actx := w.Context()
	g := actx.Graph
	name := objectName(proc.Name)

	id := g.AddTable(name, proc.Name.Schema, proc.Name.Database, lineage.TableProcedure)
	for _, p := range proc.Parameters {
		_, _ = g.AddColumn(id, p.Name, p.Type, true, false, false)
	}
	actx.RegisterTable(name, id)

	saved := actx.CurrentProcedure
	actx.CurrentProcedure = id
	actx.PushScope(context.ScopeProcedure, name)
	defer actx.PopScope()
	for _, stmt := range proc.Body {
		if err := w.Visit(stmt); err != nil {
			actx.CurrentProcedure = saved
			return true, err
		}
	}
	actx.CurrentProcedure = saved
	return true, nil
}

// ExecHandler implements spec.md §4.5.10: arguments link to the resolved
// procedure's parameter columns with Parameter edges. An unresolvable
// procedure gets a stub Table(Procedure) with @Param{N} columns so the
// mapping still has somewhere to land.
type ExecHandler struct{}

func (ExecHandler) CanHandle(n ast.Node) bool { return n.Kind() == ast.KindExec }

func (ExecHandler) Handle(n ast.Node, w *traverse.Walker) (bool, error) {
	e := n.(*ast.Exec)
	actx := w.Context()
	handleExec(actx, actx.Graph, e, "")
	return true, nil
}

// handleExec resolves proc's parameters and records Parameter edges from
// each argument's source columns. When resultTarget is non-empty (the
// INSERT ... EXECUTE case, spec.md §4.5.8), it also adds one Indirect
// "exec-result" edge per argument-derived source column into every column
// already present on resultTarget, since the procedure's true result-set
// shape is unknown to this engine.
func handleExec(actx *context.Context, g *lineage.Graph, e *ast.Exec, resultTarget string) {
	name := objectName(e.Proc)
	procID, known := actx.LookupTable(name)
	if !known {
		procID = g.AddTable(name, "", "", lineage.TableProcedure)
		actx.RegisterTable(name, procID)
	}
	proc, _ := g.Table(procID)

	var argCols []string
	for i, arg := range e.Args {
		srcCols := extractExpr(actx, g, nil, arg.Expr).columns
		argCols = append(argCols, srcCols...)

		paramName := arg.Name
		if paramName == "" {
			if known && i < len(proc.Columns) {
				if p, ok := g.Column(proc.Columns[i]); ok {
					paramName = p.Name
				}
			}
			if paramName == "" {
				paramName = fmt.Sprintf("@Param%d", i+1)
			}
		}
		paramID, err := g.AddColumn(procID, paramName, "", true, false, !known)
		if err != nil {
			continue
		}
		linkEdges(g, srcCols, paramID, lineage.EdgeParameter, "map", "")
	}

	if resultTarget == "" {
		return
	}
	if tbl, ok := g.Table(resultTarget); ok {
		for _, col := range tbl.Columns {
			linkEdges(g, argCols, col, lineage.EdgeIndirect, "exec-result", "")
		}
	}
}

// DeclareHandler implements spec.md §4.5.10: DECLARE @v TYPE [= expr]
// creates the variable column; an initializer contributes Indirect edges
// labeled the same way as a later SET.
type DeclareHandler struct{}

func (DeclareHandler) CanHandle(n ast.Node) bool { return n.Kind() == ast.KindDeclare }

func (DeclareHandler) Handle(n ast.Node, w *traverse.Walker) (bool, error) {
	d := n.(*ast.Declare)
	actx := w.Context()
	colID, err := actx.DeclareVariable(d.Name, d.Type)
	if err != nil {
		return true, nil
	}
	if d.Initial != nil {
		r := extractExpr(actx, actx.Graph, nil, d.Initial)
		label := r.label
		if label == "" {
			label = "assignment"
		}
		linkEdges(actx.Graph, r.columns, colID, lineage.EdgeIndirect, label, "")
	}
	return true, nil
}

// SetVariableHandler implements spec.md §4.5.10: SET @v = expr adds an
// Indirect edge from expr's source columns to @v's column, labeled with
// expr's own operation (e.g. "+" or "sum"), or "assignment" when expr
// carries none (a bare column or variable reference).
type SetVariableHandler struct{}

func (SetVariableHandler) CanHandle(n ast.Node) bool { return n.Kind() == ast.KindSetVariable }

func (SetVariableHandler) Handle(n ast.Node, w *traverse.Walker) (bool, error) {
	s := n.(*ast.SetVariable)
	actx := w.Context()
	colID, err := actx.SetVariable(s.Name)
	if err != nil {
		return true, nil
	}
	r := extractExpr(actx, actx.Graph, nil, s.Expr)
	label := r.label
	if label == "" {
		label = "assignment"
	}
	linkEdges(actx.Graph, r.columns, colID, lineage.EdgeIndirect, label, "")
	return true, nil
}
