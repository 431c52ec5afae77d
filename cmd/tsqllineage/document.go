package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sql-lineage/tsqllineage/serialize"
)

// loadDocument reads a previously serialized lineage document back in,
// choosing JSON or YAML by the file's extension. stats and paths both
// operate on an already-serialized graph rather than a live one, so neither
// needs the traversal engine or a catalog.
func loadDocument(path string) (*serialize.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc serialize.Document
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		err = yaml.Unmarshal(data, &doc)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, fmt.Errorf("tsqllineage: decoding %s: %w", path, err)
	}
	return &doc, nil
}
