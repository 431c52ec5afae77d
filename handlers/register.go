package handlers

import (
	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/traverse"
)

// Register wires every construct handler into engine (component C5's
// assembly point), one Register call per AST Kind the handler matches.
// Every handler here is the only one registered for its kind or kinds, so
// priority is uniform; it is still set explicitly to document that
// dispatch is decided, not incidental (spec.md §9).
func Register(engine *traverse.Engine) {
	const p = 100
	engine.Register(ast.KindSelect, SelectHandler{}, p)
	engine.Register(ast.KindSelectInto, SelectIntoHandler{}, p)
	engine.Register(ast.KindWith, WithHandler{}, p)
	engine.Register(ast.KindInsert, InsertHandler{}, p)
	engine.Register(ast.KindUpdate, UpdateHandler{}, p)
	engine.Register(ast.KindDelete, DeleteHandler{}, p)
	engine.Register(ast.KindMerge, MergeHandler{}, p)
	engine.Register(ast.KindCreateProc, CreateProcHandler{}, p)
	engine.Register(ast.KindExec, ExecHandler{}, p)
	engine.Register(ast.KindDeclare, DeclareHandler{}, p)
	engine.Register(ast.KindSetVariable, SetVariableHandler{}, p)

	cf := ControlFlowHandler{}
	engine.Register(ast.KindIf, cf, p)
	engine.Register(ast.KindWhile, cf, p)
	engine.Register(ast.KindTryCatch, cf, p)
	engine.Register(ast.KindBeginEnd, cf, p)
}
