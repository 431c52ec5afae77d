package lineage

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sql-lineage/tsqllineage/intern"
)

func newTestGraph() *Graph {
	return New(intern.New(false), intern.NewSequence(0))
}

func TestAddTableIdempotent(t *testing.T) {
	g := newTestGraph()
	id1 := g.AddTable("dbo.Customers", "dbo", "", TableBase)
	id2 := g.AddTable("DBO.CUSTOMERS", "dbo", "", TableBase)
	assert.Equal(t, id1, id2)

	cteID := g.AddTable("dbo.Customers", "dbo", "", TableCTE)
	assert.NotEqual(t, id1, cteID)
}

func TestAddColumnUnknownOwner(t *testing.T) {
	g := newTestGraph()
	_, err := g.AddColumn("tbl#999", "a", "int", true, false, false)
	assert.True(t, errors.Is(err, ErrUnknownOwner))
}

func TestAddColumnIdempotentAndOwnerIndex(t *testing.T) {
	g := newTestGraph()
	tID := g.AddTable("t", "dbo", "", TableBase)
	c1, err := g.AddColumn(tID, "a", "int", true, false, false)
	assert.NoError(t, err)
	c2, err := g.AddColumn(tID, "A", "int", true, false, false)
	assert.NoError(t, err)
	assert.Equal(t, c1, c2)

	table, ok := g.Table(tID)
	assert.True(t, ok)
	assert.Equal(t, []string{c1}, table.Columns)
}

func TestAddEdgeDedup(t *testing.T) {
	g := newTestGraph()
	tID := g.AddTable("t", "dbo", "", TableBase)
	c1, _ := g.AddColumn(tID, "a", "int", true, false, false)
	c2, _ := g.AddColumn(tID, "b", "int", true, false, false)

	id1, err := g.AddEdge(c1, c2, EdgeDirect, "select", "a")
	assert.NoError(t, err)
	id2, err := g.AddEdge(c1, c2, EdgeDirect, "select", "a")
	assert.NoError(t, err)
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, g.EdgeCount())

	_, err = g.AddEdge(c1, c2, EdgeIndirect, "select", "a")
	assert.NoError(t, err)
	assert.Equal(t, 2, g.EdgeCount())
}

func TestAddEdgeRequiresLiveNodes(t *testing.T) {
	g := newTestGraph()
	tID := g.AddTable("t", "dbo", "", TableBase)
	c1, _ := g.AddColumn(tID, "a", "int", true, false, false)

	_, err := g.AddEdge(c1, "col#missing", EdgeDirect, "select", "a")
	assert.True(t, errors.Is(err, ErrInternal))
}

func TestSourcesAndTargetsOf(t *testing.T) {
	g := newTestGraph()
	tID := g.AddTable("t", "dbo", "", TableBase)
	c1, _ := g.AddColumn(tID, "a", "int", true, false, false)
	c2, _ := g.AddColumn(tID, "b", "int", true, false, false)
	_, _ = g.AddEdge(c1, c2, EdgeDirect, "select", "a")

	assert.Equal(t, []string{c1}, g.SourcesOf(c2))
	assert.Equal(t, []string{c2}, g.TargetsOf(c1))
}

func TestPathsBoundedAndAcyclic(t *testing.T) {
	g := newTestGraph()
	tID := g.AddTable("t", "dbo", "", TableBase)
	a, _ := g.AddColumn(tID, "a", "int", true, false, false)
	b, _ := g.AddColumn(tID, "b", "int", true, false, false)
	c, _ := g.AddColumn(tID, "c", "int", true, false, false)
	_, _ = g.AddEdge(a, b, EdgeDirect, "select", "")
	_, _ = g.AddEdge(b, c, EdgeDirect, "select", "")
	_, _ = g.AddEdge(c, a, EdgeDirect, "select", "") // cycle

	paths := g.Paths(a, c, 10)
	assert.Len(t, paths, 1)
	assert.Equal(t, []string{a, b, c}, paths[0])
}

func TestCompactDropsDanglingExpressionsAndUnreachableTables(t *testing.T) {
	g := newTestGraph()
	tID := g.AddTable("t", "dbo", "", TableBase)
	a, _ := g.AddColumn(tID, "a", "int", true, false, false)

	danglingExpr := g.AddExpression("orphan", "1+1", "scalar", "int")
	assert.True(t, g.HasNode(danglingExpr))

	outID := g.AddTable("out", "dbo", "", TableDerived)
	outCol, _ := g.AddColumn(outID, "a", "int", true, false, false)
	_, _ = g.AddEdge(a, outCol, EdgeDirect, "select", "a")

	unreachableID := g.AddTable("unused", "dbo", "", TableBase)
	_, _ = g.AddColumn(unreachableID, "z", "int", true, false, false)

	g.Compact([]string{outCol})

	assert.False(t, g.HasNode(danglingExpr))
	assert.False(t, g.HasNode(unreachableID))
	assert.True(t, g.HasNode(tID))
	assert.True(t, g.HasNode(a))
}

func TestStatistics(t *testing.T) {
	g := newTestGraph()
	tID := g.AddTable("t", "dbo", "", TableBase)
	_, _ = g.AddColumn(tID, "a", "int", true, false, false)
	g.AddExpression("e", "1", "scalar", "int")

	stats := g.Statistics()
	assert.Equal(t, 1, stats[KindTable])
	assert.Equal(t, 1, stats[KindColumn])
	assert.Equal(t, 1, stats[KindExpression])
}
