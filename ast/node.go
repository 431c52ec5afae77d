// Package ast defines the structural contract the lineage engine requires
// of a T-SQL abstract syntax tree. The concrete parser is an external
// collaborator (see spec.md §1, §6.1): this package names the node shapes
// the core understands and never reads source text itself.
package ast

import "sync/atomic"

// Kind identifies the concrete shape of an AST fragment.
type Kind string

const (
	KindScript Kind = "Script"
	KindBatch  Kind = "Batch"

	KindSelect      Kind = "Select"
	KindInsert      Kind = "Insert"
	KindUpdate      Kind = "Update"
	KindDelete      Kind = "Delete"
	KindMerge       Kind = "Merge"
	KindCreateProc  Kind = "CreateProc"
	KindExec        Kind = "Exec"
	KindDeclare     Kind = "Declare"
	KindSetVariable Kind = "SetVariable"
	KindIf          Kind = "If"
	KindWhile       Kind = "While"
	KindTryCatch    Kind = "TryCatch"
	KindBeginEnd    Kind = "BeginEnd"
	KindWith        Kind = "With"
	KindSelectInto  Kind = "SelectInto"

	KindQuerySpecification Kind = "QuerySpecification"
	KindBinaryQuery        Kind = "BinaryQuery"
	KindParenthesized      Kind = "Parenthesized"

	KindSelectItemStar   Kind = "SelectItemStar"
	KindSelectItemScalar Kind = "SelectItemScalar"

	KindNamedTable           Kind = "NamedTable"
	KindJoinedTable          Kind = "JoinedTable"
	KindDerivedTable         Kind = "DerivedTable"
	KindPivotTable           Kind = "PivotTable"
	KindUnpivotTable         Kind = "UnpivotTable"
	KindTableValuedFunction  Kind = "TableValuedFunction"

	KindColumnRef    Kind = "ColumnRef"
	KindFunctionCall Kind = "FunctionCall"
	KindBinary       Kind = "Binary"
	KindUnary        Kind = "Unary"
	KindParen        Kind = "Paren"
	KindSearchedCase Kind = "SearchedCase"
	KindSimpleCase   Kind = "SimpleCase"
	KindWindowFunc   Kind = "WindowFunc"
	KindCast         Kind = "Cast"
	KindConvert      Kind = "Convert"
	KindLiteral      Kind = "Literal"
	KindVariableRef  Kind = "VariableRef"

	KindComparison Kind = "Comparison"
	KindBoolBinary Kind = "BoolBinary"
	KindBoolNot    Kind = "BoolNot"
	KindIsNull     Kind = "IsNull"
	KindIn         Kind = "In"
	KindLike       Kind = "Like"
	KindExists     Kind = "Exists"
)

// Location is best-effort source position info supplied by the external
// parser. A zero Location means the parser did not provide one.
type Location struct {
	Line   int
	Column int
	Offset int
	Text   string
}

// Node is the minimal structural contract the traversal engine requires of
// every AST fragment: a kind for dispatch, a stable identity for the cycle
// guard, children for default descent, and a best-effort source location
// for diagnostics. Any parser's node type satisfies this by embedding Base
// or implementing the four methods directly.
type Node interface {
	Kind() Kind
	ID() uint64
	Location() Location
	Children() []Node
}

var idSeq uint64

// NextID mints a process-wide unique node identity. Parsers that build
// nodes through this package get cycle-guard identity for free; parsers
// that mint their own IDs only need ID() to be stable and unique within
// one parse.
func NextID() uint64 {
	return atomic.AddUint64(&idSeq, 1)
}

// Base is embedded by every concrete node type in this package to satisfy
// ID() and Location() uniformly.
type Base struct {
	NodeID uint64
	Loc    Location
}

func (b Base) ID() uint64        { return b.NodeID }
func (b Base) Location() Location { return b.Loc }

// NewBase allocates a Base with a fresh identity and the given location.
func NewBase(loc Location) Base {
	return Base{NodeID: NextID(), Loc: loc}
}

// nodes filters out nil entries, letting Children() implementations build
// their result with optional AST children (e.g. a Select with no WHERE
// clause) passed in directly: nodes(s.From, s.Where, s.GroupBy).
func nodes(ns ...Node) []Node {
	out := make([]Node, 0, len(ns))
	for _, n := range ns {
		if n == nil {
			continue
		}
		out = append(out, n)
	}
	return out
}
