package ast

// QueryExpression is the sum type of query shapes from spec.md §6.1:
// QuerySpecification, BinaryQuery, Parenthesized.
type QueryExpression interface {
	Node
	isQueryExpression()
}

// SelectItem is the sum type Star | Scalar of a SELECT projection item.
type SelectItem interface {
	Node
	isSelectItem()
}

// StarItem is `SELECT *` or `SELECT t.*`.
type StarItem struct {
	Base
	Qualifier string // table/alias name, or "" for a bare `*`
}

func (n *StarItem) Kind() Kind       { return KindSelectItemStar }
func (n *StarItem) Children() []Node { return nil }
func (*StarItem) isSelectItem()      {}

// ScalarItem is `expr [AS alias]`.
type ScalarItem struct {
	Base
	Expr  Expression
	Alias string
}

func (n *ScalarItem) Kind() Kind       { return KindSelectItemScalar }
func (n *ScalarItem) Children() []Node { return nodes(n.Expr) }
func (*ScalarItem) isSelectItem()      {}

// GroupByItem is one expression of a GROUP BY list.
type GroupByItem struct {
	Expr Expression
}

// IntoClause is the `INTO target` of a SELECT ... INTO statement (§4.5.9).
type IntoClause struct {
	Object SchemaObjectName
}

// QuerySpecification is a single SELECT core: projection, FROM, WHERE,
// GROUP BY, HAVING, ORDER BY.
type QuerySpecification struct {
	Base
	SelectItems []SelectItem
	Into        *IntoClause
	From        TableReference
	Where       BooleanExpression
	GroupBy     []GroupByItem
	Having      BooleanExpression
	OrderBy     []OrderByItem
}

func (n *QuerySpecification) Kind() Kind { return KindQuerySpecification }
func (n *QuerySpecification) Children() []Node {
	var kids []Node
	for _, s := range n.SelectItems {
		kids = append(kids, s)
	}
	if n.From != nil {
		kids = append(kids, n.From)
	}
	if n.Where != nil {
		kids = append(kids, n.Where)
	}
	for _, g := range n.GroupBy {
		if g.Expr != nil {
			kids = append(kids, g.Expr)
		}
	}
	if n.Having != nil {
		kids = append(kids, n.Having)
	}
	for _, o := range n.OrderBy {
		if o.Expr != nil {
			kids = append(kids, o.Expr)
		}
	}
	return kids
}
func (*QuerySpecification) isQueryExpression() {}

// SetOp enumerates UNION / UNION ALL / INTERSECT / EXCEPT.
type SetOp string

const (
	SetOpUnion     SetOp = "union"
	SetOpUnionAll  SetOp = "union-all"
	SetOpIntersect SetOp = "intersect"
	SetOpExcept    SetOp = "except"
)

// BinaryQuery is `left <op> right` (§4.5.2 set operations).
type BinaryQuery struct {
	Base
	Op          SetOp
	Left, Right QueryExpression
}

func (n *BinaryQuery) Kind() Kind       { return KindBinaryQuery }
func (n *BinaryQuery) Children() []Node { return nodes(n.Left, n.Right) }
func (*BinaryQuery) isQueryExpression() {}

// Parenthesized is a parenthesized query expression.
type Parenthesized struct {
	Base
	Query QueryExpression
}

func (n *Parenthesized) Kind() Kind       { return KindParenthesized }
func (n *Parenthesized) Children() []Node { return nodes(n.Query) }
func (*Parenthesized) isQueryExpression() {}

// CTE is one `name [(cols...)] AS (query)` binding of a WITH clause.
type CTE struct {
	Name    string
	Columns []string // explicit column list, may be empty (inferred)
	Query   *Select
}

// WithClause is the `WITH cte, cte, ...` prefix of a statement (§4.5.5).
type WithClause struct {
	CTEs []CTE
}

// Select is a full SELECT statement: an optional WITH clause wrapping a
// query expression.
type Select struct {
	Base
	With  *WithClause
	Query QueryExpression
}

func (n *Select) Kind() Kind { return KindSelect }
func (n *Select) Children() []Node {
	var kids []Node
	if n.With != nil {
		for _, c := range n.With.CTEs {
			if c.Query != nil {
				kids = append(kids, c.Query)
			}
		}
	}
	if n.Query != nil {
		kids = append(kids, n.Query)
	}
	return kids
}

// Statement is the sum type of top-level statement shapes from spec.md
// §6.1.
type Statement interface {
	Node
	isStatement()
}

func (*Select) isStatement() {}

// Script is the root: a sequence of batches.
type Script struct {
	Base
	Batches []*Batch
}

func (n *Script) Kind() Kind { return KindScript }
func (n *Script) Children() []Node {
	kids := make([]Node, 0, len(n.Batches))
	for _, b := range n.Batches {
		kids = append(kids, b)
	}
	return kids
}

// Batch is a sequence of statements separated by GO (or the script's
// entirety, if the parser does not batch).
type Batch struct {
	Base
	Statements []Statement
}

func (n *Batch) Kind() Kind { return KindBatch }
func (n *Batch) Children() []Node {
	kids := make([]Node, 0, len(n.Statements))
	for _, s := range n.Statements {
		kids = append(kids, s)
	}
	return kids
}
