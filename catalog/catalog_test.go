package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStaticGetTableAndColumns(t *testing.T) {
	cat := NewStatic(TableMetadata{
		Name:   "Customers",
		Schema: "dbo",
		Columns: []ColumnMetadata{
			{Name: "ID", DataType: "int"},
			{Name: "Name", DataType: "varchar(50)"},
		},
	})

	tbl, ok := cat.GetTable("CUSTOMERS")
	assert.True(t, ok)
	assert.Equal(t, "dbo", tbl.Schema)

	cols := cat.GetColumns("customers")
	assert.Len(t, cols, 2)

	_, ok = cat.GetTable("orders")
	assert.False(t, ok)
}

func TestStaticResolveType(t *testing.T) {
	cat := NewStatic()
	assert.Equal(t, "varchar", cat.ResolveType("VARCHAR(50)"))
	assert.Equal(t, "decimal", cat.ResolveType("DECIMAL(10,2)"))
	assert.Equal(t, "int", cat.ResolveType("INT"))
}

func TestEmptyCatalog(t *testing.T) {
	var cat Catalog = Empty{}
	_, ok := cat.GetTable("anything")
	assert.False(t, ok)
	assert.Nil(t, cat.GetColumns("anything"))
}
