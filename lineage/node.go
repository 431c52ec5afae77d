package lineage

// Node is the common contract every lineage graph vertex satisfies: a
// stable ID and its NodeKind tag (spec.md §3.1, N3 "IDs are unique across
// kinds").
type Node interface {
	ID() string
	Kind() NodeKind
}

// Table is a physical table, view, temp table, table variable, CTE
// binding, procedure, or derived (subquery) table (spec.md §3.1).
// Columns holds the owned Column IDs, maintained as an index on insert
// (N2) rather than discovered by scanning — Table and Column never form an
// owning cycle (§9): Table stores column IDs, Column stores its owner's ID.
type Table struct {
	NodeID   string
	Name     string // canonical (case-folded) name
	Schema   string
	Database string
	Type     TableType
	Columns  []string
}

func (t *Table) ID() string     { return t.NodeID }
func (t *Table) Kind() NodeKind { return KindTable }

// Column belongs to exactly one Table (N1). Synthetic marks columns
// created without catalog metadata backing them — a `SELECT *` expansion
// placeholder (including one inside a CTE body), a stub for an unresolved
// identifier, or a projection column named exprN because its expression
// had no alias (§9's "synthetic = true" note).
type Column struct {
	NodeID     string
	Name       string
	OwnerID    string
	DataType   string
	Nullable   bool
	IsComputed bool
	Synthetic  bool
}

func (c *Column) ID() string     { return c.NodeID }
func (c *Column) Kind() NodeKind { return KindColumn }

// Expression is a non-column value flowing through the graph: a CASE
// result, a window function, an aggregate, or any other scalar expression
// that is itself a lineage source or target (spec.md §3.1). OwnerID, when
// set, names the synthetic owner (e.g. the enclosing query's output
// expression scope) used for diagnostics; it plays no role in resolution.
type Expression struct {
	NodeID     string
	Name       string
	ExprType   string // "case", "window", "aggregate", "cast", "scalar", ...
	SQLText    string
	ResultType string
	OwnerID    string
}

func (e *Expression) ID() string     { return e.NodeID }
func (e *Expression) Kind() NodeKind { return KindExpression }
