package batch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sql-lineage/tsqllineage/ast"
)

func simpleScript(tableName string) *ast.Script {
	sel := &ast.Select{
		Base: ast.NewBase(ast.Location{}),
		Query: &ast.QuerySpecification{
			Base:        ast.NewBase(ast.Location{}),
			SelectItems: []ast.SelectItem{&ast.StarItem{Base: ast.NewBase(ast.Location{})}},
			From: &ast.NamedTable{
				Base:   ast.NewBase(ast.Location{}),
				Object: ast.SchemaObjectName{Name: tableName},
			},
		},
	}
	return &ast.Script{
		Base:    ast.NewBase(ast.Location{}),
		Batches: []*ast.Batch{{Base: ast.NewBase(ast.Location{}), Statements: []ast.Statement{sel}}},
	}
}

func TestAnalyzeAllRunsEveryScriptConcurrently(t *testing.T) {
	runner := NewRunner(WithMaxConcurrentBatches(2))
	scripts := []*ast.Script{simpleScript("a"), simpleScript("b"), simpleScript("c")}

	results := runner.AnalyzeAll(context.Background(), scripts)
	assert.Len(t, results, 3)
	for i, r := range results {
		assert.NotNil(t, r.Graph, "script %d", i)
		assert.False(t, r.Incomplete)
	}
}

func TestAnalyzeAllIsolatesGraphsPerScript(t *testing.T) {
	runner := NewRunner()
	results := runner.AnalyzeAll(context.Background(), []*ast.Script{simpleScript("t1"), simpleScript("t2")})

	_, ok1 := results[0].Graph.TableID("t2")
	_, ok2 := results[1].Graph.TableID("t1")
	assert.False(t, ok1)
	assert.False(t, ok2)
}

func TestLockManagerPartitionCountIsPowerOfTwo(t *testing.T) {
	lm := newLockManager(3)
	assert.Equal(t, 16, len(lm.partitions)) // next pow2 >= 4*3=12
}

func TestNextPow2(t *testing.T) {
	assert.Equal(t, 1, nextPow2(0))
	assert.Equal(t, 4, nextPow2(3))
	assert.Equal(t, 16, nextPow2(12))
}

func TestMonitorZeroThresholdNeverTrips(t *testing.T) {
	m := NewMonitor(0)
	assert.NoError(t, m.Check())
}
