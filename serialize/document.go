// Package serialize renders a lineage.Graph into the stable wire form
// named by spec.md §6.3: nodes carry { id, kind, name, schema, database,
// table_type | data_type | expression_type, ... }, edges carry
// { id, source_id, target_id, kind, operation, sql_expression }. JSON uses
// encoding/json; YAML uses gopkg.in/yaml.v3, matching the teacher's own
// wire format in analyzer/linage (struct tags carrying the field names).
package serialize

import "github.com/sql-lineage/tsqllineage/lineage"

// TableNode is the wire form of a lineage.Table.
type TableNode struct {
	ID        string   `json:"id" yaml:"id"`
	Kind      string   `json:"kind" yaml:"kind"`
	Name      string   `json:"name" yaml:"name"`
	Schema    string   `json:"schema,omitempty" yaml:"schema,omitempty"`
	Database  string   `json:"database,omitempty" yaml:"database,omitempty"`
	TableType string   `json:"table_type" yaml:"table_type"`
	Columns   []string `json:"columns,omitempty" yaml:"columns,omitempty"`
}

// ColumnNode is the wire form of a lineage.Column.
type ColumnNode struct {
	ID         string `json:"id" yaml:"id"`
	Kind       string `json:"kind" yaml:"kind"`
	Name       string `json:"name" yaml:"name"`
	OwnerID    string `json:"owner_id" yaml:"owner_id"`
	DataType   string `json:"data_type,omitempty" yaml:"data_type,omitempty"`
	Nullable   bool   `json:"nullable" yaml:"nullable"`
	IsComputed bool   `json:"is_computed,omitempty" yaml:"is_computed,omitempty"`
	Synthetic  bool   `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`
}

// ExpressionNode is the wire form of a lineage.Expression.
type ExpressionNode struct {
	ID             string `json:"id" yaml:"id"`
	Kind           string `json:"kind" yaml:"kind"`
	Name           string `json:"name,omitempty" yaml:"name,omitempty"`
	ExpressionType string `json:"expression_type" yaml:"expression_type"`
	SQLText        string `json:"sql_text,omitempty" yaml:"sql_text,omitempty"`
	ResultType     string `json:"result_type,omitempty" yaml:"result_type,omitempty"`
	OwnerID        string `json:"owner_id,omitempty" yaml:"owner_id,omitempty"`
}

// EdgeWire is the wire form of a lineage.Edge.
type EdgeWire struct {
	ID            string `json:"id" yaml:"id"`
	SourceID      string `json:"source_id" yaml:"source_id"`
	TargetID      string `json:"target_id" yaml:"target_id"`
	Kind          string `json:"kind" yaml:"kind"`
	Operation     string `json:"operation,omitempty" yaml:"operation,omitempty"`
	SQLExpression string `json:"sql_expression,omitempty" yaml:"sql_expression,omitempty"`
}

// Document is the full serialized graph: every live node split by shape,
// plus every live edge, in deterministic ID order.
type Document struct {
	Tables      []TableNode      `json:"tables" yaml:"tables"`
	Columns     []ColumnNode     `json:"columns" yaml:"columns"`
	Expressions []ExpressionNode `json:"expressions" yaml:"expressions"`
	Edges       []EdgeWire       `json:"edges" yaml:"edges"`
	Incomplete  bool             `json:"incomplete,omitempty" yaml:"incomplete,omitempty"`
}

// FromGraph flattens g into its wire Document.
func FromGraph(g *lineage.Graph) *Document {
	doc := &Document{Incomplete: g.Incomplete}
	for _, t := range g.AllTables() {
		doc.Tables = append(doc.Tables, TableNode{
			ID: t.ID(), Kind: string(t.Kind()), Name: t.Name, Schema: t.Schema,
			Database: t.Database, TableType: string(t.Type), Columns: t.Columns,
		})
	}
	for _, c := range g.AllColumns() {
		doc.Columns = append(doc.Columns, ColumnNode{
			ID: c.ID(), Kind: string(c.Kind()), Name: c.Name, OwnerID: c.OwnerID,
			DataType: c.DataType, Nullable: c.Nullable, IsComputed: c.IsComputed, Synthetic: c.Synthetic,
		})
	}
	for _, e := range g.AllExpressions() {
		doc.Expressions = append(doc.Expressions, ExpressionNode{
			ID: e.ID(), Kind: string(e.Kind()), Name: e.Name, ExpressionType: e.ExprType,
			SQLText: e.SQLText, ResultType: e.ResultType, OwnerID: e.OwnerID,
		})
	}
	for _, e := range g.AllEdges() {
		doc.Edges = append(doc.Edges, EdgeWire{
			ID: e.EdgeID, SourceID: e.SourceID, TargetID: e.TargetID,
			Kind: string(e.Kind), Operation: e.Operation, SQLExpression: e.SQLExpression,
		})
	}
	return doc
}
