package lineage

import (
	"fmt"
	"sort"

	"github.com/sql-lineage/tsqllineage/intern"
)

// Graph is the per-analysis lineage graph (spec.md §3, component C2). One
// Graph belongs to exactly one walk; per §5 it is never shared across
// concurrent analyses, so it carries no internal locking. Table and Column
// never form an owning cycle: Table.Columns lists owned column IDs, Column
// stores its OwnerID (§9).
type Graph struct {
	interner *intern.Interner
	seq      *intern.Sequence

	nodes   map[string]Node
	tables  map[string]*Table
	columns map[string]*Column
	exprs   map[string]*Expression

	tableByNameKind map[string]string // canonical-name\x1fkind -> table id (N add_table idempotency, E1.2)
	tableByName     map[string]string // canonical-name -> most recently added table id (table_id lookup)
	columnByOwner   map[string]string // owner-id\x1fcanonical-col-name -> column id (add_column idempotency)

	edges     map[string]*Edge
	edgeDedup map[dedupeKey]string
	outEdges  map[string][]string
	inEdges   map[string][]string

	hasher *intern.Hasher

	// Incomplete is set once a walk unwinds early due to cancellation or a
	// budget (spec.md §5, §7); compaction and statistics still run against
	// whatever was recorded.
	Incomplete bool

	// HashWarnings accumulates the collision-fallback warnings spec.md
	// §4.1's hash_id collision policy calls for ("fall back to a fresh
	// sequential ID and log a warning").
	HashWarnings []string
}

// New creates an empty Graph. interner canonicalizes names (N4); seq mints
// node/edge IDs (spec.md §4.1). The interner is typically shared across
// concurrent analyses; seq, like the Graph itself, belongs to one analysis
// (§5).
func New(interner *intern.Interner, seq *intern.Sequence) *Graph {
	g := &Graph{
		interner:        interner,
		seq:             seq,
		nodes:           make(map[string]Node),
		tables:          make(map[string]*Table),
		columns:         make(map[string]*Column),
		exprs:           make(map[string]*Expression),
		tableByNameKind: make(map[string]string),
		tableByName:     make(map[string]string),
		columnByOwner:   make(map[string]string),
		edges:           make(map[string]*Edge),
		edgeDedup:       make(map[dedupeKey]string),
		outEdges:        make(map[string][]string),
		inEdges:         make(map[string][]string),
	}
	g.hasher = intern.NewHasher(seq, func(msg string) { g.HashWarnings = append(g.HashWarnings, msg) })
	return g
}

func (g *Graph) canon(s string) string { return g.interner.Canonical(g.interner.Intern(s)) }

// AddTable returns the existing table ID if name is already present with
// the same TableType, otherwise mints and registers a new Table node.
func (g *Graph) AddTable(name, schema, database string, typ TableType) string {
	cname := g.canon(name)
	key := cname + "\x1f" + string(typ)
	if id, ok := g.tableByNameKind[key]; ok {
		return id
	}

	id := g.seq.Next("tbl")
	t := &Table{NodeID: id, Name: cname, Schema: schema, Database: database, Type: typ}
	g.tables[id] = t
	g.nodes[id] = t
	g.tableByNameKind[key] = id
	g.tableByName[cname] = id
	return id
}

// AddSyntheticTable mints a Table keyed by a content-addressed digest of
// contentKey rather than by display name (spec.md §4.1 `hash_id`): the
// motivating case is a derived table, PIVOT, or UNPIVOT source, where two
// unrelated subqueries can legitimately share the same alias text in
// different scopes (so name+kind dedup would wrongly merge them) while the
// same AST fragment reached twice — via recursion into a nested source, or
// a handler re-entering the same FROM clause — must still resolve to one
// node. Callers should derive contentKey from something stable per AST
// fragment (e.g. the fragment's own node ID), not from the display name.
func (g *Graph) AddSyntheticTable(displayName, contentKey string, typ TableType) string {
	id := g.hasher.HashID("tbl", contentKey)
	if _, ok := g.tables[id]; ok {
		return id
	}
	t := &Table{NodeID: id, Name: g.canon(displayName), Type: typ}
	g.tables[id] = t
	g.nodes[id] = t
	return id
}

// AddColumn mints (or returns, if already present) a Column under owner.
// Fails with ErrUnknownOwner if owner does not name a live Table (N1).
func (g *Graph) AddColumn(owner, name, dataType string, nullable, isComputed, synthetic bool) (string, error) {
	ownerTable, ok := g.tables[owner]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownOwner, owner)
	}

	cname := g.canon(name)
	key := owner + "\x1f" + cname
	if id, ok := g.columnByOwner[key]; ok {
		return id, nil
	}

	id := g.seq.Next("col")
	c := &Column{
		NodeID:     id,
		Name:       cname,
		OwnerID:    owner,
		DataType:   dataType,
		Nullable:   nullable,
		IsComputed: isComputed,
		Synthetic:  synthetic,
	}
	g.columns[id] = c
	g.nodes[id] = c
	g.columnByOwner[key] = id
	ownerTable.Columns = append(ownerTable.Columns, id) // N2
	return id, nil
}

// AddExpression always mints a new Expression node (spec.md §4.2): unlike
// tables and columns, expressions have no stable identity to dedupe on.
func (g *Graph) AddExpression(name, sqlText, exprType, resultType string) string {
	id := g.seq.Next("expr")
	e := &Expression{NodeID: id, Name: name, ExprType: exprType, SQLText: sqlText, ResultType: resultType}
	g.exprs[id] = e
	g.nodes[id] = e
	return id
}

// AddEdge records src->tgt, deduplicating on (source, target, kind,
// operation) per E2 and returning the existing edge's ID on a repeat
// insert. Fails with ErrInternal if either endpoint is not a live node (E1).
func (g *Graph) AddEdge(src, tgt string, kind EdgeKind, operation, sql string) (string, error) {
	if _, ok := g.nodes[src]; !ok {
		return "", fmt.Errorf("%w: edge source %q is not a live node", ErrInternal, src)
	}
	if _, ok := g.nodes[tgt]; !ok {
		return "", fmt.Errorf("%w: edge target %q is not a live node", ErrInternal, tgt)
	}

	e := &Edge{SourceID: src, TargetID: tgt, Kind: kind, Operation: operation, SQLExpression: sql}
	key := e.dedupeKey()
	if id, ok := g.edgeDedup[key]; ok {
		return id, nil
	}

	id := g.seq.Next("edge")
	e.EdgeID = id
	g.edges[id] = e
	g.edgeDedup[key] = id
	g.outEdges[src] = append(g.outEdges[src], id)
	g.inEdges[tgt] = append(g.inEdges[tgt], id)
	return id, nil
}

// ColumnID looks up a column by owner table ID and column name.
func (g *Graph) ColumnID(owner, name string) (string, bool) {
	id, ok := g.columnByOwner[owner+"\x1f"+g.canon(name)]
	return id, ok
}

// TableID looks up a table by canonical name, regardless of TableType.
// When more than one TableType shares a name, the most recently added
// table wins; callers needing kind-specific resolution (e.g. a CTE
// shadowing a base table of the same name) should resolve through the
// analysis context's registries instead, which apply the correct
// precedence rules (spec.md §4.3).
func (g *Graph) TableID(name string) (string, bool) {
	id, ok := g.tableByName[g.canon(name)]
	return id, ok
}

// HasNode reports whether id names a live node of any kind (P1, P2).
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// Node returns the node for id, if live.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Table returns the Table for id, if id names a live Table node.
func (g *Graph) Table(id string) (*Table, bool) {
	t, ok := g.tables[id]
	return t, ok
}

// Column returns the Column for id, if id names a live Column node.
func (g *Graph) Column(id string) (*Column, bool) {
	c, ok := g.columns[id]
	return c, ok
}

// Expression returns the Expression for id, if id names a live Expression node.
func (g *Graph) Expression(id string) (*Expression, bool) {
	e, ok := g.exprs[id]
	return e, ok
}

// SourcesOf returns the direct neighbors that feed into node via an
// incoming edge: the nodes at the other end of every edge targeting node.
func (g *Graph) SourcesOf(node string) []string {
	ids := g.inEdges[node]
	out := make([]string, 0, len(ids))
	for _, eid := range ids {
		out = append(out, g.edges[eid].SourceID)
	}
	return out
}

// TargetsOf returns the direct neighbors node feeds into: the nodes at the
// other end of every edge sourced from node.
func (g *Graph) TargetsOf(node string) []string {
	ids := g.outEdges[node]
	out := make([]string, 0, len(ids))
	for _, eid := range ids {
		out = append(out, g.edges[eid].TargetID)
	}
	return out
}

// OutEdges returns the Edge values leaving node.
func (g *Graph) OutEdges(node string) []*Edge {
	ids := g.outEdges[node]
	out := make([]*Edge, 0, len(ids))
	for _, eid := range ids {
		out = append(out, g.edges[eid])
	}
	return out
}

// InEdges returns the Edge values entering node.
func (g *Graph) InEdges(node string) []*Edge {
	ids := g.inEdges[node]
	out := make([]*Edge, 0, len(ids))
	for _, eid := range ids {
		out = append(out, g.edges[eid])
	}
	return out
}

// Paths enumerates simple paths from src to tgt, bounded by maxDepth and
// stopping at cycles (spec.md §4.2 `paths`).
func (g *Graph) Paths(src, tgt string, maxDepth int) [][]string {
	var results [][]string
	visited := map[string]bool{src: true}
	path := []string{src}

	var walk func(cur string, depth int)
	walk = func(cur string, depth int) {
		if cur == tgt && len(path) > 1 {
			cp := make([]string, len(path))
			copy(cp, path)
			results = append(results, cp)
			return
		}
		if depth >= maxDepth {
			return
		}
		for _, next := range g.TargetsOf(cur) {
			if visited[next] {
				continue
			}
			visited[next] = true
			path = append(path, next)
			walk(next, depth+1)
			path = path[:len(path)-1]
			visited[next] = false
		}
	}
	walk(src, 0)
	return results
}

// Compact removes Expression nodes with no outgoing edges and any node
// unreachable from the given set of declared output node IDs (spec.md
// §3.3). After Compact, every remaining Expression node has ≥ 1 outgoing
// edge (P3).
func (g *Graph) Compact(outputs []string) {
	reachable := make(map[string]bool, len(g.nodes))
	var mark func(id string)
	mark = func(id string) {
		if reachable[id] {
			return
		}
		reachable[id] = true
		for _, src := range g.SourcesOf(id) {
			mark(src)
		}
		if c, ok := g.columns[id]; ok {
			reachable[c.OwnerID] = true
		}
	}
	for _, id := range outputs {
		mark(id)
	}

	for id, e := range g.exprs {
		if len(g.outEdges[id]) == 0 {
			delete(g.exprs, id)
			delete(g.nodes, id)
			_ = e
			continue
		}
		if len(outputs) > 0 && !reachable[id] {
			delete(g.exprs, id)
			delete(g.nodes, id)
		}
	}

	if len(outputs) == 0 {
		return
	}
	for id := range g.tables {
		if !reachable[id] {
			g.removeTable(id)
		}
	}
	for _, t := range g.tables {
		kept := t.Columns[:0]
		for _, colID := range t.Columns {
			if reachable[colID] {
				kept = append(kept, colID)
				continue
			}
			if c, ok := g.columns[colID]; ok {
				delete(g.columnByOwner, t.NodeID+"\x1f"+c.Name)
			}
			delete(g.columns, colID)
			delete(g.nodes, colID)
		}
		t.Columns = kept
	}
}

func (g *Graph) removeTable(id string) {
	t, ok := g.tables[id]
	if !ok {
		return
	}
	for _, colID := range t.Columns {
		delete(g.columns, colID)
		delete(g.nodes, colID)
	}
	delete(g.tables, id)
	delete(g.nodes, id)
}

// Statistics reports live node counts per kind.
func (g *Graph) Statistics() map[NodeKind]int {
	return map[NodeKind]int{
		KindTable:      len(g.tables),
		KindColumn:     len(g.columns),
		KindExpression: len(g.exprs),
	}
}

// EdgeCount reports the number of live edges, for property tests (P4).
func (g *Graph) EdgeCount() int { return len(g.edges) }

// AllTables returns every live Table, ordered by ID for deterministic
// serialization (spec.md §6.3).
func (g *Graph) AllTables() []*Table {
	out := make([]*Table, 0, len(g.tables))
	for _, t := range g.tables {
		out = append(out, t)
	}
	sortByID(out, func(t *Table) string { return t.NodeID })
	return out
}

// AllColumns returns every live Column, ordered by ID.
func (g *Graph) AllColumns() []*Column {
	out := make([]*Column, 0, len(g.columns))
	for _, c := range g.columns {
		out = append(out, c)
	}
	sortByID(out, func(c *Column) string { return c.NodeID })
	return out
}

// AllExpressions returns every live Expression, ordered by ID.
func (g *Graph) AllExpressions() []*Expression {
	out := make([]*Expression, 0, len(g.exprs))
	for _, e := range g.exprs {
		out = append(out, e)
	}
	sortByID(out, func(e *Expression) string { return e.NodeID })
	return out
}

// AllEdges returns every live Edge, ordered by ID.
func (g *Graph) AllEdges() []*Edge {
	out := make([]*Edge, 0, len(g.edges))
	for _, e := range g.edges {
		out = append(out, e)
	}
	sortByID(out, func(e *Edge) string { return e.EdgeID })
	return out
}

func sortByID[T any](items []T, key func(T) string) {
	sort.Slice(items, func(i, j int) bool { return key(items[i]) < key(items[j]) })
}
