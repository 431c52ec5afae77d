package ast

// TableReference is the sum type of FROM-clause shapes from spec.md §6.1:
// Named, Joined, Derived, plus the PIVOT/UNPIVOT/table-valued-function
// shapes added in SPEC_FULL.md §C.
type TableReference interface {
	Node
	isTableReference()
}

// SchemaObjectName is a (possibly multipart) table name: `t`, `dbo.t`,
// `db.dbo.t`.
type SchemaObjectName struct {
	Database string
	Schema   string
	Name     string
}

// NamedTable is a reference to a physical table, view, temp table, table
// variable, or CTE binding by name.
type NamedTable struct {
	Base
	Object SchemaObjectName
	Alias  string
}

func (n *NamedTable) Kind() Kind       { return KindNamedTable }
func (n *NamedTable) Children() []Node { return nil }
func (*NamedTable) isTableReference()  {}

// JoinKind enumerates the join sidedness recorded on Join edges (§4.5.3).
type JoinKind string

const (
	JoinInner JoinKind = "inner"
	JoinLeft  JoinKind = "left"
	JoinRight JoinKind = "right"
	JoinFull  JoinKind = "full"
	JoinCross JoinKind = "cross"
)

// JoinedTable is `left <kind> JOIN right ON on`.
type JoinedTable struct {
	Base
	Left, Right TableReference
	JoinKind    JoinKind
	On          BooleanExpression
	Using       []string // USING(col, ...) — natural-join-style column list
	Natural     bool
}

func (n *JoinedTable) Kind() Kind { return KindJoinedTable }
func (n *JoinedTable) Children() []Node {
	kids := nodes(n.Left, n.Right)
	if n.On != nil {
		kids = append(kids, n.On)
	}
	return kids
}
func (*JoinedTable) isTableReference() {}

// DerivedTable is `(SELECT ...) AS alias` or a LATERAL derived table.
type DerivedTable struct {
	Base
	Query   *Select
	Alias   string
	Lateral bool
}

func (n *DerivedTable) Kind() Kind { return KindDerivedTable }
func (n *DerivedTable) Children() []Node {
	if n.Query == nil {
		return nil
	}
	return []Node{n.Query}
}
func (*DerivedTable) isTableReference() {}

// PivotTable is `source PIVOT(agg(valueCol) FOR pivotCol IN (...)) AS alias`.
type PivotTable struct {
	Base
	Source        TableReference
	AggFunc       string
	ValueColumn   MultipartName
	PivotColumn   MultipartName
	InValues      []string
	Alias         string
}

func (n *PivotTable) Kind() Kind { return KindPivotTable }
func (n *PivotTable) Children() []Node {
	if n.Source == nil {
		return nil
	}
	return []Node{n.Source}
}
func (*PivotTable) isTableReference() {}

// UnpivotTable is `source UNPIVOT(valueCol FOR nameCol IN (...)) AS alias`.
type UnpivotTable struct {
	Base
	Source      TableReference
	ValueColumn string
	NameColumn  string
	InColumns   []string
	Alias       string
}

func (n *UnpivotTable) Kind() Kind { return KindUnpivotTable }
func (n *UnpivotTable) Children() []Node {
	if n.Source == nil {
		return nil
	}
	return []Node{n.Source}
}
func (*UnpivotTable) isTableReference() {}

// TableValuedFunction is `FROM dbo.fn(...)`, `OPENQUERY(...)`, or
// `OPENROWSET(...)`, treated opaquely per SPEC_FULL.md §C.4.
type TableValuedFunction struct {
	Base
	Name  SchemaObjectName
	Args  []Expression
	Alias string
}

func (n *TableValuedFunction) Kind() Kind { return KindTableValuedFunction }
func (n *TableValuedFunction) Children() []Node {
	kids := make([]Node, 0, len(n.Args))
	for _, a := range n.Args {
		kids = append(kids, a)
	}
	return kids
}
func (*TableValuedFunction) isTableReference() {}
