// Package io saves task graphs to, and loads them from, a flat JSON file.
//
// # JSON Format
//
// A file is a single object keyed by the decimal task id. Each value is the
// flat record of one task:
//
//	{
//	  "0": {"id": 0, "name": "root",      "done": false, "dependencies": [1]},
//	  "1": {"id": 1, "name": "tracker",   "done": false, "dependencies": [2, 3]},
//	  "2": {"id": 2, "name": "prototype", "done": true,  "dependencies": []},
//	  "3": {"id": 3, "name": "gui",       "done": false, "dependencies": []}
//	}
//
// Key order and field order carry no meaning. Dependency lists are ordered.
// There is no version field and no checksum.
//
// # Export
//
// [WriteJSON] records every task reachable from the root exactly once, using
// [taskgraph.Graph.Walk]. Tasks reachable through several parents, or through a
// cycle, are written once; tasks not reachable from the root are dropped.
//
// [ExportJSON] writes to a temporary file next to the target and renames it
// into place, so a failed save never leaves a truncated graph behind.
//
// # Import
//
// [ReadJSON] rebuilds the graph in two passes: first every task is created,
// then every dependency edge is attached. Records may therefore reference ids
// that appear later in the file. Edges are attached in ascending id order of
// the parent record, so for a task listed under several parents the
// highest-id parent ends up in [taskgraph.Node.Parent].
//
// The id counter of the loaded graph is reseeded to one more than the
// largest id in the file.
//
// Structural problems are reported as coded errors from
// [github.com/matzehuels/tasktree/pkg/errors]:
//
//   - MISSING_ROOT: no record with id 0
//   - DANGLING_DEPENDENCY: a dependency id with no record of its own
//   - INVALID_FORMAT: malformed JSON, non-integer keys, keys that disagree
//     with the record id, or records without an id or name
//
// No partial graph is ever returned. File system errors are wrapped with %w
// so callers can still test them with errors.Is(err, fs.ErrNotExist).
package io
