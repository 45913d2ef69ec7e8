package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	graphio "github.com/matzehuels/tasktree/pkg/io"
	"github.com/matzehuels/tasktree/pkg/taskgraph"
)

// File stores the graph as a JSON file.
// Access from one process is serialized; separate processes are not coordinated.
type File struct {
	mu   sync.Mutex
	path string
	opts Options
}

// NewFile creates a file store at path. The file and its directory are
// created on the first Save.
func NewFile(path string, opts Options) *File {
	return &File{path: path, opts: opts}
}

// Load reads the graph file.
func (s *File) Load(ctx context.Context) (g *taskgraph.Graph, err error) {
	start := time.Now()
	defer func() { reportLoad(ctx, "file", start, g, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	g, err = graphio.ImportJSON(s.path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return notFound(err, s.path, s.opts)
	}
	return g, err
}

// Save writes the graph file atomically, creating its directory if needed.
func (s *File) Save(ctx context.Context, g *taskgraph.Graph) (err error) {
	start := time.Now()
	defer func() { reportSave(ctx, "file", start, g, err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return graphio.ExportJSON(g, s.path)
}

// Close does nothing for the file store.
func (s *File) Close() error { return nil }

var _ Store = (*File)(nil)
