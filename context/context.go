// Package context implements the analysis context (spec.md §3.4, §4.3,
// component C3): the scope stack, alias/table/variable registries, and
// name resolution the construct handlers consult while writing lineage.
//
// This package is unrelated to, and does not embed, the standard library
// context package; the stdlib type is imported under the gocontext alias
// wherever cancellation needs to interoperate with it.
package context

import (
	gocontext "context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/sql-lineage/tsqllineage/ast"
	"github.com/sql-lineage/tsqllineage/catalog"
	"github.com/sql-lineage/tsqllineage/intern"
	"github.com/sql-lineage/tsqllineage/lineage"
)

// Budget bounds a single analysis run (spec.md §6.4).
type Budget struct {
	MaxFragments int
	MaxTime      time.Duration
}

// DefaultBudget matches spec.md §6.4's defaults (max_fragments=100000,
// max_time_ms=60000); MaxDepth is owned by the traversal engine, not here.
var DefaultBudget = Budget{MaxFragments: 100_000, MaxTime: 60 * time.Second}

// Option configures a Context at construction, mirroring the teacher's
// functional-options style (analyzer/option.go).
type Option func(*Context)

// WithBudget overrides the default fragment/time budget.
func WithBudget(b Budget) Option {
	return func(c *Context) { c.budget = b }
}

// WithCancel derives should_stop from an external cancellation signal (the
// batch layer's per-item token, spec.md §5).
func WithCancel(ctx gocontext.Context) Option {
	return func(c *Context) { c.cancelCtx = ctx }
}

// Context is the per-walk analysis context (spec.md §3.4). One Context
// belongs to exactly one script analysis and is never shared across
// concurrent walks (§5); it requires no internal locking.
type Context struct {
	Graph    *lineage.Graph
	Catalog  catalog.Catalog
	interner *intern.Interner

	scopes []*Scope

	globalAliases map[string]string // alias -> canonical table name, layered under per-scope Aliases
	regularTables map[string]string // canonical name -> table id
	tempTables    map[string]string // "#name" -> table id
	tableVars     map[string]string // "@name" -> table id
	cteTables     map[string]string // canonical name -> table id, checked before regularTables

	variablesOwner string // table id of the synthetic @@Variables owner

	CurrentProcedure     string // table id of the procedure currently being processed, "" if none
	ProcessingCTE        bool
	ProcessingWithClause bool
	Scratch              map[string]interface{}

	budget        Budget
	startedAt     time.Time
	fragmentCount int64
	cancelCtx     gocontext.Context

	Diagnostics []Diagnostic
}

// Diagnostic is a recorded error with AST source location (spec.md §7,
// SPEC_FULL.md §C.6). Location is whatever the ingested AST node exposes;
// it is the zero value when the node carries no position info.
type Diagnostic struct {
	Kind     string
	Message  string
	Location ast.Location
}

// New creates a Context rooted in a single Global scope.
func New(g *lineage.Graph, cat catalog.Catalog, interner *intern.Interner, opts ...Option) *Context {
	c := &Context{
		Graph:         g,
		Catalog:       cat,
		interner:      interner,
		globalAliases: make(map[string]string),
		regularTables: make(map[string]string),
		tempTables:    make(map[string]string),
		tableVars:     make(map[string]string),
		cteTables:     make(map[string]string),
		Scratch:       make(map[string]interface{}),
		budget:        DefaultBudget,
		startedAt:     time.Now(),
	}
	c.scopes = []*Scope{newScope(ScopeGlobal, "")}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Context) canon(s string) string { return c.interner.Canonical(c.interner.Intern(s)) }

// PushScope opens a new frame (spec.md §4.3 push_scope).
func (c *Context) PushScope(kind ScopeKind, name string) {
	c.scopes = append(c.scopes, newScope(kind, name))
}

// PopScope closes the innermost frame. Popping the Global scope is a
// no-op, not an error (spec.md §4.3).
func (c *Context) PopScope() {
	if len(c.scopes) <= 1 {
		return
	}
	c.scopes = c.scopes[:len(c.scopes)-1]
}

// CurrentScope returns the innermost frame.
func (c *Context) CurrentScope() *Scope {
	return c.scopes[len(c.scopes)-1]
}

// Tick advances the fragment budget and should be called by the traversal
// engine once per visited fragment (spec.md §4.4).
func (c *Context) Tick() {
	atomic.AddInt64(&c.fragmentCount, 1)
}

// ShouldStop reports whether the walk must unwind: cancellation requested,
// or the fragment/time budget exceeded (spec.md §4.3 should_stop). It is
// sampled by the traversal engine between fragments; handlers never check
// it mid-construct.
func (c *Context) ShouldStop() bool {
	if c.cancelCtx != nil {
		select {
		case <-c.cancelCtx.Done():
			return true
		default:
		}
	}
	if c.budget.MaxFragments > 0 && atomic.LoadInt64(&c.fragmentCount) > int64(c.budget.MaxFragments) {
		return true
	}
	if c.budget.MaxTime > 0 && time.Since(c.startedAt) > c.budget.MaxTime {
		return true
	}
	return false
}

// AddDiagnostic records a non-fatal error with its AST location (spec.md
// §4.5.12, §7).
func (c *Context) AddDiagnostic(kind, message string, loc ast.Location) {
	c.Diagnostics = append(c.Diagnostics, Diagnostic{Kind: kind, Message: message, Location: loc})
}

// AddTableAlias registers alias -> canonical table name in the innermost
// scope's alias layer (spec.md §4.3 add_table_alias).
func (c *Context) AddTableAlias(alias, tableName string) {
	c.CurrentScope().Aliases[c.canon(alias)] = c.canon(tableName)
}

// ResolveAlias returns the canonical table name for name_or_alias, walking
// the scope stack innermost-first before falling back to the global alias
// map, or returns the input unchanged if no mapping exists (spec.md §4.3).
func (c *Context) ResolveAlias(nameOrAlias string) string {
	key := c.canon(nameOrAlias)
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if t, ok := c.scopes[i].Aliases[key]; ok {
			return t
		}
	}
	if t, ok := c.globalAliases[key]; ok {
		return t
	}
	return key
}

// RegisterTable records name -> id, routing by prefix into the temp,
// table-variable, or regular registry (spec.md §4.3 register_table):
// names beginning with `#` are temp tables, `@` are table variables,
// otherwise regular tables.
func (c *Context) RegisterTable(name, id string) {
	cname := c.canon(name)
	switch {
	case strings.HasPrefix(cname, "#"):
		c.tempTables[cname] = id
	case strings.HasPrefix(cname, "@"):
		c.tableVars[cname] = id
	default:
		c.regularTables[cname] = id
	}
}

// RegisterCTE records a CTE binding, consulted before regular tables
// during resolution (spec.md §4.3 register_cte).
func (c *Context) RegisterCTE(name, id string) {
	c.cteTables[c.canon(name)] = id
}

// LookupTable resolves name against CTEs first, then temp tables, table
// variables, and regular tables, in that order.
func (c *Context) LookupTable(name string) (string, bool) {
	cname := c.canon(name)
	if id, ok := c.cteTables[cname]; ok {
		return id, true
	}
	if id, ok := c.tempTables[cname]; ok {
		return id, true
	}
	if id, ok := c.tableVars[cname]; ok {
		return id, true
	}
	id, ok := c.regularTables[cname]
	return id, ok
}

// variablesOwnerID returns (creating if necessary) the table ID acting as
// the synthetic owner of degenerate variable columns: the current
// procedure, or the global `@@Variables` pseudo-table (spec.md §4.3
// declare_variable).
func (c *Context) variablesOwnerID() string {
	if c.CurrentProcedure != "" {
		return c.CurrentProcedure
	}
	if c.variablesOwner == "" {
		c.variablesOwner = c.Graph.AddTable("@@Variables", "", "", lineage.TableProcedure)
	}
	return c.variablesOwner
}

// DeclareVariable registers a variable in the innermost scope (or
// globally, when the current scope is Global), modeled as a Column under
// the synthetic variables owner (spec.md §4.3).
func (c *Context) DeclareVariable(name, sqlType string) (string, error) {
	owner := c.variablesOwnerID()
	colID, err := c.Graph.AddColumn(owner, name, sqlType, true, false, false)
	if err != nil {
		return "", fmt.Errorf("declare variable %q: %w", name, err)
	}
	c.CurrentScope().Variables[c.canon(name)] = colID
	return colID, nil
}

// SetVariable walks the scope chain innermost-first looking for an existing
// binding of name; it writes into the nearest enclosing frame that owns
// the name, or creates it in the current scope if unknown (spec.md §4.3).
func (c *Context) SetVariable(name string) (string, error) {
	cname := c.canon(name)
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if id, ok := c.scopes[i].Variables[cname]; ok {
			return id, nil
		}
	}
	return c.DeclareVariable(name, "")
}

// GetVariable resolves name through the same scope chain SetVariable uses,
// without creating anything on a miss.
func (c *Context) GetVariable(name string) (string, bool) {
	cname := c.canon(name)
	for i := len(c.scopes) - 1; i >= 0; i-- {
		if id, ok := c.scopes[i].Variables[cname]; ok {
			return id, true
		}
	}
	return "", false
}
