// Package lineage implements the column-level lineage graph (spec.md §3,
// component C2): typed nodes, typed edges, and the indices that make name
// and neighbor lookups O(1).
package lineage

// NodeKind is the closed tagged-variant taxonomy a graph Node belongs to
// (spec.md §3.1). Kept as a string-backed enum with exhaustive switches
// rather than runtime reflection, per §9's redesign note — the teacher's
// analyzer/linage.AccessKind is the model for this pattern.
type NodeKind string

const (
	KindTable      NodeKind = "Table"
	KindColumn     NodeKind = "Column"
	KindExpression NodeKind = "Expression"
)

// TableType distinguishes the origin of a Table node. Derived is a
// SPEC_FULL.md §C.3 addition for subqueries in FROM, alongside the
// distilled spec's Base/View/CTE/Temp/TableVar/Procedure set.
type TableType string

const (
	TableBase      TableType = "Base"
	TableView      TableType = "View"
	TableCTE       TableType = "CTE"
	TableTemp      TableType = "Temp"
	TableVar       TableType = "TableVar"
	TableProcedure TableType = "Procedure"
	TableDerived   TableType = "Derived"
)

// EdgeKind is the closed taxonomy of lineage edge kinds (spec.md §3.2).
type EdgeKind string

const (
	EdgeDirect    EdgeKind = "Direct"
	EdgeIndirect  EdgeKind = "Indirect"
	EdgeJoin      EdgeKind = "Join"
	EdgeFilter    EdgeKind = "Filter"
	EdgeParameter EdgeKind = "Parameter"
	EdgeGroupBy   EdgeKind = "GroupBy"
	EdgeWindow    EdgeKind = "Window"
)
