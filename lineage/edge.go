package lineage

// Edge is a typed directed lineage edge (spec.md §3.2). Join edges are
// undirected in meaning but recorded as a source/target pair tagged
// EdgeJoin (E4); callers that need symmetric traversal insert both
// directions explicitly.
type Edge struct {
	EdgeID        string
	SourceID      string
	TargetID      string
	Kind          EdgeKind
	Operation     string // short label: "select", "insert", "case", "cast", "sum", ...
	SQLExpression string // literal SQL text responsible for the edge
}

// dedupeKey is the (source, target, kind, operation) tuple E2 dedupes on.
type dedupeKey struct {
	source, target string
	kind           EdgeKind
	operation      string
}

func (e *Edge) dedupeKey() dedupeKey {
	return dedupeKey{source: e.SourceID, target: e.TargetID, kind: e.Kind, operation: e.Operation}
}
