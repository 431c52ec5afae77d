package serialize

import (
	"encoding/json"

	"github.com/sql-lineage/tsqllineage/lineage"
)

// MarshalJSON renders g as indented JSON per the §6.3 wire form.
func MarshalJSON(g *lineage.Graph) ([]byte, error) {
	return json.MarshalIndent(FromGraph(g), "", "  ")
}
