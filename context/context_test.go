package context

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sql-lineage/tsqllineage/catalog"
	"github.com/sql-lineage/tsqllineage/intern"
	"github.com/sql-lineage/tsqllineage/lineage"
)

func newTestCtx() (*Context, *lineage.Graph) {
	g := lineage.New(intern.New(false), intern.NewSequence(0))
	c := New(g, catalog.Empty{}, intern.New(false))
	return c, g
}

func TestScopeStackLIFOAndGlobalPopNoop(t *testing.T) {
	c, _ := newTestCtx()
	assert.Equal(t, ScopeGlobal, c.CurrentScope().Kind)

	c.PushScope(ScopeQuery, "q1")
	assert.Equal(t, ScopeQuery, c.CurrentScope().Kind)
	c.PopScope()
	assert.Equal(t, ScopeGlobal, c.CurrentScope().Kind)

	c.PopScope() // no-op on Global
	assert.Equal(t, ScopeGlobal, c.CurrentScope().Kind)
}

func TestRegisterTableRoutesByPrefix(t *testing.T) {
	c, _ := newTestCtx()
	c.RegisterTable("#Staging", "tbl#1")
	c.RegisterTable("@TableVar", "tbl#2")
	c.RegisterTable("Customers", "tbl#3")

	id, ok := c.LookupTable("#staging")
	assert.True(t, ok)
	assert.Equal(t, "tbl#1", id)

	id, ok = c.LookupTable("@tablevar")
	assert.True(t, ok)
	assert.Equal(t, "tbl#2", id)

	id, ok = c.LookupTable("customers")
	assert.True(t, ok)
	assert.Equal(t, "tbl#3", id)
}

func TestCTEPrecedesRegularTable(t *testing.T) {
	c, _ := newTestCtx()
	c.RegisterTable("q", "tbl#regular")
	c.RegisterCTE("q", "tbl#cte")

	id, ok := c.LookupTable("q")
	assert.True(t, ok)
	assert.Equal(t, "tbl#cte", id)
}

func TestAliasResolution(t *testing.T) {
	c, _ := newTestCtx()
	c.AddTableAlias("t", "dbo.Customers")
	assert.Equal(t, "dbo.customers", c.ResolveAlias("t"))
	assert.Equal(t, "unknownalias", c.ResolveAlias("unknownalias"))
}

func TestDeclareAndSetAndGetVariable(t *testing.T) {
	c, _ := newTestCtx()
	id, err := c.DeclareVariable("@v", "int")
	assert.NoError(t, err)

	got, ok := c.GetVariable("@V")
	assert.True(t, ok)
	assert.Equal(t, id, got)

	same, err := c.SetVariable("@v")
	assert.NoError(t, err)
	assert.Equal(t, id, same)
}

func TestResolveColumnUnqualifiedUnambiguous(t *testing.T) {
	c, g := newTestCtx()
	tID := g.AddTable("t", "dbo", "", lineage.TableBase)
	_, _ = g.AddColumn(tID, "a", "int", true, false, false)

	resolvedTable, resolvedCol, err := c.ResolveColumn([]string{"a"}, []string{tID})
	assert.NoError(t, err)
	assert.Equal(t, tID, resolvedTable)
	col, _ := g.Column(resolvedCol)
	assert.Equal(t, "a", col.Name)
}

func TestResolveColumnAmbiguous(t *testing.T) {
	c, g := newTestCtx()
	t1 := g.AddTable("t1", "dbo", "", lineage.TableBase)
	t2 := g.AddTable("t2", "dbo", "", lineage.TableBase)
	_, _ = g.AddColumn(t1, "a", "int", true, false, false)
	_, _ = g.AddColumn(t2, "a", "int", true, false, false)

	_, _, err := c.ResolveColumn([]string{"a"}, []string{t1, t2})
	assert.True(t, errors.Is(err, lineage.ErrAmbiguousColumn))
}

func TestResolveColumnQualified(t *testing.T) {
	c, g := newTestCtx()
	tID := g.AddTable("t", "dbo", "", lineage.TableBase)
	_, _ = g.AddColumn(tID, "a", "int", true, false, false)
	c.RegisterTable("t", tID)

	resolvedTable, _, err := c.ResolveColumn([]string{"t", "a"}, nil)
	assert.NoError(t, err)
	assert.Equal(t, tID, resolvedTable)
}

func TestShouldStopOnFragmentBudget(t *testing.T) {
	g := lineage.New(intern.New(false), intern.NewSequence(0))
	c := New(g, catalog.Empty{}, intern.New(false), WithBudget(Budget{MaxFragments: 2}))
	assert.False(t, c.ShouldStop())
	c.Tick()
	c.Tick()
	c.Tick()
	assert.True(t, c.ShouldStop())
}
