package serialize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sql-lineage/tsqllineage/intern"
	"github.com/sql-lineage/tsqllineage/lineage"
	"github.com/sql-lineage/tsqllineage/serialize"
)

func newGraph() *lineage.Graph {
	in := intern.New(false)
	seq := intern.NewSequence(0)
	return lineage.New(in, seq)
}

func TestFromGraphFlattensTablesColumnsAndEdges(t *testing.T) {
	g := newGraph()
	srcID := g.AddTable("source", "dbo", "", lineage.TableBase)
	srcCol, err := g.AddColumn(srcID, "a", "int", true, false, false)
	assert.NoError(t, err)

	tgtID := g.AddTable("out", "", "", lineage.TableBase)
	tgtCol, err := g.AddColumn(tgtID, "a", "", true, false, false)
	assert.NoError(t, err)

	_, err = g.AddEdge(srcCol, tgtCol, lineage.EdgeDirect, "select", "a")
	assert.NoError(t, err)

	doc := serialize.FromGraph(g)
	assert.Len(t, doc.Tables, 2)
	assert.Len(t, doc.Columns, 2)
	assert.Len(t, doc.Edges, 1)
	assert.Equal(t, "select", doc.Edges[0].Operation)
	assert.Equal(t, "Direct", doc.Edges[0].Kind)
}

func TestMarshalJSONAndYAMLRoundTripShape(t *testing.T) {
	g := newGraph()
	tid := g.AddTable("t", "", "", lineage.TableBase)
	_, err := g.AddColumn(tid, "a", "", true, false, false)
	assert.NoError(t, err)

	jsonBytes, err := serialize.MarshalJSON(g)
	assert.NoError(t, err)
	assert.Contains(t, string(jsonBytes), `"table_type"`)

	yamlBytes, err := serialize.MarshalYAML(g)
	assert.NoError(t, err)
	assert.Contains(t, string(yamlBytes), "table_type")
}
