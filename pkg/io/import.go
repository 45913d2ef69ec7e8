package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"

	"github.com/matzehuels/tasktree/pkg/errors"
	"github.com/matzehuels/tasktree/pkg/taskgraph"
)

// inRecord mirrors record with pointer fields so missing keys can be told
// apart from zero values.
type inRecord struct {
	ID           *int    `json:"id"`
	Name         *string `json:"name"`
	Done         bool    `json:"done"`
	Dependencies []int   `json:"dependencies"`
}

// ReadJSON decodes a task graph from r.
//
// ReadJSON returns an error if:
//   - The JSON is malformed, or a record lacks an "id" or "name" field
//   - Anything but whitespace follows the top-level object
//   - A key is not a non-negative integer in canonical form ("1", not "01"
//     or "+1"), or differs from its record's id
//   - An id is so large that no further id can be allocated
//   - There is no record with id 0
//   - A dependency id has no record
//
// On error no graph is returned. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*taskgraph.Graph, error) {
	var data map[string]inRecord
	dec := json.NewDecoder(r)
	if err := dec.Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode graph")
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "decode graph: trailing data after object")
	}

	records := make(map[int]inRecord, len(data))
	for key, rec := range data {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "record key %q is not an integer", key)
		}
		switch {
		case strconv.Itoa(id) != key:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "record key %q is not a canonical integer", key)
		case id < 0:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "record %d: negative id", id)
		case id == math.MaxInt:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "record %d: id leaves no room for new tasks", id)
		case rec.ID == nil:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "record %q: missing id", key)
		case *rec.ID != id:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "record %q: id %d does not match key", key, *rec.ID)
		case rec.Name == nil:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "record %d: missing name", id)
		}
		records[id] = rec
	}

	// Pass 1: every node, no edges.
	nodes := make(map[int]*taskgraph.Node, len(records))
	for id, rec := range records {
		n := taskgraph.NewNode(id, *rec.Name)
		n.SetDone(rec.Done)
		nodes[id] = n
	}

	head, ok := nodes[taskgraph.RootID]
	if !ok {
		return nil, errors.New(errors.ErrCodeMissingRoot, "no record with id %d", taskgraph.RootID)
	}

	// Pass 2: edges, in ascending parent id so the surviving Parent() is stable.
	ids := slices.Sorted(maps.Keys(records))
	for _, id := range ids {
		n := nodes[id]
		for _, depID := range records[id].Dependencies {
			dep, ok := nodes[depID]
			if !ok {
				return nil, errors.New(errors.ErrCodeDanglingDependency, "record %d: dependency %d has no record", id, depID)
			}
			n.AddDependency(dep)
		}
	}

	return taskgraph.FromHead(head, ids[len(ids)-1]+1), nil
}

// Unmarshal decodes a task graph from data, as read by [ReadJSON].
func Unmarshal(data []byte) (*taskgraph.Graph, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads a JSON file at path and returns the decoded graph.
//
// If the file cannot be opened the error wraps the underlying cause with the
// file path for context. ImportJSON returns the same errors as [ReadJSON]
// for malformed content. The file is closed on every path.
func ImportJSON(path string) (*taskgraph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	g, err := ReadJSON(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
