package serialize

// Statistics reports live node counts per wire kind, the Document analogue
// of lineage.Graph.Statistics — the CLI's stats subcommand works from an
// already-serialized graph, never a live one (SPEC_FULL.md's cmd/tsqllineage
// row: "CLI front end ... over a serialized lineage graph").
func (d *Document) Statistics() map[string]int {
	return map[string]int{
		"table":      len(d.Tables),
		"column":     len(d.Columns),
		"expression": len(d.Expressions),
		"edge":       len(d.Edges),
	}
}

// adjacency builds a source-id -> target-ids index from the edge list.
func (d *Document) adjacency() map[string][]string {
	out := make(map[string][]string, len(d.Edges))
	for _, e := range d.Edges {
		out[e.SourceID] = append(out[e.SourceID], e.TargetID)
	}
	return out
}

// Paths enumerates simple paths from src to tgt, bounded by maxDepth and
// stopping at cycles, mirroring lineage.Graph.Paths (spec.md §4.2) over the
// flattened wire edges instead of a live Graph's adjacency maps.
func (d *Document) Paths(src, tgt string, maxDepth int) [][]string {
	adj := d.adjacency()
	var results [][]string
	visited := map[string]bool{src: true}
	path := []string{src}

	var walk func(cur string, depth int)
	walk = func(cur string, depth int) {
		if cur == tgt && len(path) > 1 {
			cp := make([]string, len(path))
			copy(cp, path)
			results = append(results, cp)
			return
		}
		if depth >= maxDepth {
			return
		}
		for _, next := range adj[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			path = append(path, next)
			walk(next, depth+1)
			path = path[:len(path)-1]
			visited[next] = false
		}
	}
	walk(src, 0)
	return results
}

// FindTable looks up a table node by name (case-sensitive: Document names
// are already canonicalized at serialization time).
func (d *Document) FindTable(name string) (*TableNode, bool) {
	for i := range d.Tables {
		if d.Tables[i].Name == name {
			return &d.Tables[i], true
		}
	}
	return nil, false
}

// FindColumn looks up a column by owner table ID and column name.
func (d *Document) FindColumn(ownerID, name string) (*ColumnNode, bool) {
	for i := range d.Columns {
		if d.Columns[i].OwnerID == ownerID && d.Columns[i].Name == name {
			return &d.Columns[i], true
		}
	}
	return nil, false
}
