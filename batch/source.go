package batch

import (
	"context"
	"io"
	"os"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/afs/url"

	"github.com/sql-lineage/tsqllineage/ast"
)

// Decoder turns one serialized AST document's bytes into a Script. The
// concrete wire format is the external parser's concern (spec.md §1: "the
// core never parses characters"); Source only locates and reads files,
// exactly like the teacher's afs.Service walk-and-download in
// analyzer/package.go.
type Decoder func([]byte) (*ast.Script, error)

// Source bulk-ingests serialized AST documents for batched analysis
// (spec.md §5) using an afs.Service so the root can be a local path, S3
// URL, or anything else afs supports.
type Source struct {
	fs afs.Service
}

// NewSource creates a Source backed by afs.New(), the same
// storage-abstraction entry point the teacher uses.
func NewSource() *Source {
	return &Source{fs: afs.New()}
}

// ReadAll walks root, decoding every file whose name matches suffix
// (e.g. ".ast.json") into a Script via decode. Matches analyzePackages'
// fs.Walk + fs.DownloadWithURL shape.
func (s *Source) ReadAll(ctx context.Context, root, suffix string, decode Decoder) ([]*ast.Script, error) {
	var urls []string
	var visitor storage.OnVisit = func(ctx context.Context, baseURL, parent string, info os.FileInfo, reader io.Reader) (bool, error) {
		if info.IsDir() {
			return true, nil
		}
		if !hasSuffix(info.Name(), suffix) {
			return true, nil
		}
		urls = append(urls, url.Join(baseURL, parent, info.Name()))
		return true, nil
	}
	if err := s.fs.Walk(ctx, root, visitor); err != nil {
		return nil, err
	}

	scripts := make([]*ast.Script, 0, len(urls))
	for _, u := range urls {
		data, err := s.fs.DownloadWithURL(ctx, u)
		if err != nil {
			return nil, err
		}
		script, err := decode(data)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, script)
	}
	return scripts, nil
}

func hasSuffix(name, suffix string) bool {
	if suffix == "" {
		return true
	}
	if len(name) < len(suffix) {
		return false
	}
	return name[len(name)-len(suffix):] == suffix
}
