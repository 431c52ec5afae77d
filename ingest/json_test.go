package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sql-lineage/tsqllineage/ast"
)

// insertSelectJSON builds `INSERT INTO r(x,y) SELECT a, UPPER(b) FROM t;` as the
// document shape Decode expects, mirroring spec.md §8's worked example S2.
func insertSelectJSON() []byte {
	return []byte(`{
		"kind": "Script",
		"batches": [{
			"kind": "Batch",
			"statements": [{
				"kind": "Insert",
				"target": {"name": "r"},
				"columns": ["x", "y"],
				"source": {
					"kind": "Select",
					"query": {
						"kind": "QuerySpecification",
						"select_items": [
							{"kind": "SelectItemScalar", "expr": {"kind": "ColumnRef", "name": {"parts": ["a"]}}},
							{"kind": "SelectItemScalar", "expr": {"kind": "FunctionCall", "name": "UPPER", "args": [
								{"kind": "ColumnRef", "name": {"parts": ["b"]}}
							]}}
						],
						"from": {"kind": "NamedTable", "name": {"name": "t"}}
					}
				}
			}]
		}]
	}`)
}

func TestDecodeInsertSelect(t *testing.T) {
	script, err := Decode(insertSelectJSON())
	require.NoError(t, err)
	require.Len(t, script.Batches, 1)
	require.Len(t, script.Batches[0].Statements, 1)

	ins, ok := script.Batches[0].Statements[0].(*ast.Insert)
	require.True(t, ok)
	assert.Equal(t, "r", ins.Target.Name)
	assert.Equal(t, []string{"x", "y"}, ins.Columns)
	require.NotNil(t, ins.Source)

	spec, ok := ins.Source.Query.(*ast.QuerySpecification)
	require.True(t, ok)
	require.Len(t, spec.SelectItems, 2)

	first := spec.SelectItems[0].(*ast.ScalarItem)
	col, ok := first.Expr.(*ast.ColumnRef)
	require.True(t, ok)
	assert.Equal(t, "a", col.Name.Last())

	second := spec.SelectItems[1].(*ast.ScalarItem)
	fn, ok := second.Expr.(*ast.FunctionCall)
	require.True(t, ok)
	assert.Equal(t, "UPPER", fn.Name)
	require.Len(t, fn.Args, 1)

	from, ok := spec.From.(*ast.NamedTable)
	require.True(t, ok)
	assert.Equal(t, "t", from.Object.Name)
}

func TestDecodeRejectsWrongRootKind(t *testing.T) {
	_, err := Decode([]byte(`{"kind": "Select"}`))
	assert.Error(t, err)
}

func TestDecodeJoinedTableWithVariableAndCase(t *testing.T) {
	doc := []byte(`{
		"kind": "Script",
		"batches": [{
			"kind": "Batch",
			"statements": [{
				"kind": "Select",
				"query": {
					"kind": "QuerySpecification",
					"select_items": [
						{"kind": "SelectItemScalar", "alias": "grp", "expr": {
							"kind": "SearchedCase",
							"whens": [{
								"when": {"kind": "Comparison", "op": "=", "left": {"kind": "ColumnRef", "name": {"parts": ["a", "status"]}}, "right": {"kind": "Literal", "text": "'done'"}},
								"then": {"kind": "Literal", "text": "1"}
							}],
							"else": {"kind": "Literal", "text": "0"}
						}}
					],
					"from": {
						"kind": "JoinedTable",
						"op": "inner",
						"left": {"kind": "NamedTable", "name": {"name": "orders"}, "alias": "a"},
						"right": {"kind": "NamedTable", "name": {"name": "customers"}, "alias": "b"},
						"on": {"kind": "Comparison", "op": "=", "left": {"kind": "ColumnRef", "name": {"parts": ["a", "cust_id"]}}, "right": {"kind": "ColumnRef", "name": {"parts": ["b", "id"]}}}
					},
					"where": {"kind": "IsNull", "expr": {"kind": "VariableRef", "name": "@flag"}, "negate": true}
				}
			}]
		}]
	}`)

	script, err := Decode(doc)
	require.NoError(t, err)
	sel := script.Batches[0].Statements[0].(*ast.Select)
	spec := sel.Query.(*ast.QuerySpecification)

	join, ok := spec.From.(*ast.JoinedTable)
	require.True(t, ok)
	assert.Equal(t, ast.JoinKind("inner"), join.JoinKind)
	left := join.Left.(*ast.NamedTable)
	assert.Equal(t, "a", left.Alias)

	item := spec.SelectItems[0].(*ast.ScalarItem)
	assert.Equal(t, "grp", item.Alias)
	caseExpr, ok := item.Expr.(*ast.SearchedCase)
	require.True(t, ok)
	require.Len(t, caseExpr.Whens, 1)

	where, ok := spec.Where.(*ast.IsNull)
	require.True(t, ok)
	assert.True(t, where.Negate)
	v, ok := where.Expr.(*ast.VariableRef)
	require.True(t, ok)
	assert.Equal(t, "@flag", v.Name)
}
