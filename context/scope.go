package context

// ScopeKind tags a Scope frame with the lexical context it represents
// (spec.md §3.4).
type ScopeKind string

const (
	ScopeGlobal    ScopeKind = "Global"
	ScopeBatch     ScopeKind = "Batch"
	ScopeProcedure ScopeKind = "Procedure"
	ScopeFunction  ScopeKind = "Function"
	ScopeBlock     ScopeKind = "Block"
	ScopeIf        ScopeKind = "If"
	ScopeWhile     ScopeKind = "While"
	ScopeTryCatch  ScopeKind = "TryCatch"
	ScopeQuery     ScopeKind = "Query"
)

// Scope is one LIFO frame of the scope stack: a lexical context (procedure
// body, block, query) and the names it owns. Variables is keyed by
// canonical variable name -> lineage.Column ID (spec.md §3.4, §4.3
// declare_variable/set_variable). Aliases is the per-query alias->table
// layer, checked before the context-wide alias map on resolution.
type Scope struct {
	Kind      ScopeKind
	Name      string
	Variables map[string]string
	Aliases   map[string]string
}

func newScope(kind ScopeKind, name string) *Scope {
	return &Scope{
		Kind:      kind,
		Name:      name,
		Variables: make(map[string]string),
		Aliases:   make(map[string]string),
	}
}
