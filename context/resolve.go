package context

import (
	"fmt"
	"strings"

	"github.com/sql-lineage/tsqllineage/lineage"
)

// ResolveColumn resolves a multipart column identifier against in-scope
// tables (spec.md §4.3 resolve_column). parts is the dot-separated
// identifier split by the caller (e.g. ["t", "a"] for `t.a`, ["a"] for a
// bare `a`).
//
//   - length 1: must resolve to a unique column among every table visible
//     in the current scope; more than one match is AmbiguousColumn.
//   - length 2: (table_or_alias, column) — the first part is resolved
//     through ResolveAlias before lookup.
//   - length >= 3: (schema.table, column) — the schema-qualified prefix is
//     joined back into one name and resolved the same way as length 2.
//
// An unknown column on an otherwise-known table creates a synthetic stub
// Column (kind=unknown) so downstream `SELECT *` linking can still find
// it, rather than failing the lookup.
func (c *Context) ResolveColumn(parts []string, visibleTables []string) (tableID, columnID string, err error) {
	switch {
	case len(parts) == 0:
		return "", "", fmt.Errorf("%w: empty column identifier", lineage.ErrUnknownIdentifier)
	case len(parts) == 1:
		return c.resolveUnqualified(parts[0], visibleTables)
	default:
		tableName := c.ResolveAlias(parts[0])
		if len(parts) >= 3 {
			tableName = c.canon(strings.Join(parts[:len(parts)-1], "."))
		}
		return c.resolveQualified(tableName, parts[len(parts)-1])
	}
}

func (c *Context) resolveUnqualified(col string, visibleTables []string) (tableID, columnID string, err error) {
	var matchTable, matchCol string
	matches := 0
	for _, t := range visibleTables {
		if id, ok := c.Graph.ColumnID(t, col); ok {
			matches++
			matchTable, matchCol = t, id
		}
	}
	switch matches {
	case 0:
		if len(visibleTables) != 1 {
			return "", "", fmt.Errorf("%w: column %q", lineage.ErrUnknownIdentifier, col)
		}
		// Exactly one visible table: attach an unknown-typed stub so
		// downstream SELECT * linking still has a column to find.
		id, cerr := c.Graph.AddColumn(visibleTables[0], col, "", true, false, true)
		if cerr != nil {
			return "", "", cerr
		}
		return visibleTables[0], id, nil
	case 1:
		return matchTable, matchCol, nil
	default:
		return matchTable, matchCol, fmt.Errorf("%w: column %q", lineage.ErrAmbiguousColumn, col)
	}
}

func (c *Context) resolveQualified(tableName, col string) (tableID, columnID string, err error) {
	tid, ok := c.LookupTable(tableName)
	if !ok {
		return "", "", fmt.Errorf("%w: table %q", lineage.ErrUnknownIdentifier, tableName)
	}
	id, ok := c.Graph.ColumnID(tid, col)
	if !ok {
		id, err = c.Graph.AddColumn(tid, col, "", true, false, true)
		if err != nil {
			return tid, "", err
		}
	}
	return tid, id, nil
}
