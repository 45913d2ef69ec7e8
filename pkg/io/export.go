package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/matzehuels/tasktree/pkg/taskgraph"
)

type record struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	Done         bool   `json:"done"`
	Dependencies []int  `json:"dependencies"`
}

// WriteJSON encodes every task reachable from g's root and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g *taskgraph.Graph, w io.Writer) error {
	out := make(map[string]record)
	for _, r := range g.Reachable() {
		out[strconv.Itoa(r.ID)] = record{
			ID:           r.ID,
			Name:         r.Name,
			Done:         r.Done,
			Dependencies: r.Dependencies,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the JSON encoding of g, as written by [WriteJSON].
func Marshal(g *taskgraph.Graph) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(g, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes g to a JSON file at path.
//
// The graph is first written to a uniquely named temporary file in the same
// directory, flushed to disk, and then renamed over path. If any step fails
// the temporary file is removed and the existing file at path is untouched.
func ExportJSON(g *taskgraph.Graph, path string) (err error) {
	tmp := filepath.Join(filepath.Dir(path), "."+filepath.Base(path)+".tmp-"+uuid.NewString())

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", tmp, err)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	if err = WriteJSON(g, f); err != nil {
		return err
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", tmp, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
