package serialize

import (
	"github.com/sql-lineage/tsqllineage/lineage"
	"gopkg.in/yaml.v3"
)

// MarshalYAML renders g as YAML per the §6.3 wire form, the same library
// the teacher uses for its own lineage fixtures (analyzer/linage).
func MarshalYAML(g *lineage.Graph) ([]byte, error) {
	return yaml.Marshal(FromGraph(g))
}
