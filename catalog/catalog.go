// Package catalog defines the read-only schema catalog interface the
// lineage engine resolves names against (spec.md §6.2). The catalog itself
// is an external collaborator: this package names the query contract and
// ships one in-memory implementation for tests and small scripts.
package catalog

import "strings"

// ColumnMetadata describes one column as known to the catalog.
type ColumnMetadata struct {
	Name       string
	DataType   string
	Nullable   bool
	IsComputed bool
}

// TableMetadata describes one table, view, or procedure as known to the
// catalog.
type TableMetadata struct {
	Schema   string
	Database string
	Name     string
	Columns  []ColumnMetadata
}

// Catalog is the read-only lookup interface of spec.md §6.2. When it has
// no information about a name, Get* implementations return the zero value
// and false/nil — the core proceeds with unknown-typed stubs rather than
// treating a miss as an error.
type Catalog interface {
	// GetTable returns metadata for canonicalName, if known.
	GetTable(canonicalName string) (TableMetadata, bool)
	// GetColumns returns the known columns of canonicalName, nil if the
	// table itself is unknown or has no catalogued columns.
	GetColumns(canonicalName string) []ColumnMetadata
	// ResolveType maps a raw, parser-supplied type string (e.g. "VARCHAR(50)")
	// to its canonical type string (e.g. "varchar").
	ResolveType(rawType string) string
}

// Static is an in-memory Catalog backed by a fixed table set, suitable for
// tests and single-file analyses that supply their own schema up front.
type Static struct {
	tables map[string]TableMetadata
}

// NewStatic builds a Static catalog from the given tables, keyed by their
// case-folded Name.
func NewStatic(tables ...TableMetadata) *Static {
	s := &Static{tables: make(map[string]TableMetadata, len(tables))}
	for _, t := range tables {
		s.tables[strings.ToLower(t.Name)] = t
	}
	return s
}

func (s *Static) GetTable(canonicalName string) (TableMetadata, bool) {
	t, ok := s.tables[strings.ToLower(canonicalName)]
	return t, ok
}

func (s *Static) GetColumns(canonicalName string) []ColumnMetadata {
	t, ok := s.tables[strings.ToLower(canonicalName)]
	if !ok {
		return nil
	}
	return t.Columns
}

// ResolveType lower-cases and strips any parenthesized length/precision
// suffix, e.g. "VARCHAR(50)" -> "varchar", "DECIMAL(10,2)" -> "decimal".
func (s *Static) ResolveType(rawType string) string {
	t := strings.ToLower(strings.TrimSpace(rawType))
	if idx := strings.IndexByte(t, '('); idx >= 0 {
		t = t[:idx]
	}
	return t
}

// Empty is a Catalog with no knowledge of any table, for analyses run
// without a schema (every lookup misses; the core falls back to stubs).
type Empty struct{}

func (Empty) GetTable(string) (TableMetadata, bool) { return TableMetadata{}, false }
func (Empty) GetColumns(string) []ColumnMetadata     { return nil }
func (Empty) ResolveType(rawType string) string      { return strings.ToLower(rawType) }
