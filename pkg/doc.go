// Package pkg provides the libraries behind tasktree.
//
// # Overview
//
// Tasktree keeps a hierarchy of tasks as a directed graph: every task can
// depend on sub-tasks, and a sub-task can be shared by several parents. The
// pkg directory is organized into three areas:
//
//  1. Domain: [taskgraph] (nodes, graph, traversal) and [io] (JSON format)
//  2. Output: [render/nodelink] (DOT, SVG, PNG, HTML) and [render] (PDF)
//  3. Infrastructure: [store] (file and redis snapshots), [cache] (rendered
//     diagrams), [config], [errors], [observability], [buildinfo]
//
// # Architecture
//
// The typical data flow through tasktree:
//
//	graph.json / redis key
//	         ↓
//	    [store] package (load a snapshot through [io])
//	         ↓
//	    [taskgraph] package (create tasks, mark done, link)
//	         ↓
//	    [store] package (save the snapshot atomically)
//
// and for diagrams:
//
//	[taskgraph.Graph.Reachable] → [render/nodelink.ToDOT] → SVG/PNG/HTML/PDF
//
// # Quick Start
//
// Build a graph, save it, and draw it:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/tasktree/pkg/io"
//	    "github.com/matzehuels/tasktree/pkg/render/nodelink"
//	    "github.com/matzehuels/tasktree/pkg/taskgraph"
//	)
//
//	// 1. Build the graph
//	g := taskgraph.New()
//	tracker := g.CreateTask("tracker", g.Head)
//	g.CreateTask("prototype", tracker).SetDone(true)
//	g.CreateTask("gui", tracker)
//
//	// 2. Save it
//	_ = io.ExportJSON(g, "graph.json")
//
//	// 3. Render to SVG
//	svg, _ := nodelink.Render(context.Background(), nodelink.ToDOT(g, nodelink.Options{}), nodelink.FormatSVG)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...          # All tests
//	go test ./pkg/taskgraph/   # Specific package
//	go test -run Example ./... # Examples only
//
// [taskgraph]: https://pkg.go.dev/github.com/matzehuels/tasktree/pkg/taskgraph
// [taskgraph.Graph.Reachable]: https://pkg.go.dev/github.com/matzehuels/tasktree/pkg/taskgraph#Graph.Reachable
// [io]: https://pkg.go.dev/github.com/matzehuels/tasktree/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/tasktree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/tasktree/pkg/render/nodelink
// [render/nodelink.ToDOT]: https://pkg.go.dev/github.com/matzehuels/tasktree/pkg/render/nodelink#ToDOT
// [store]: https://pkg.go.dev/github.com/matzehuels/tasktree/pkg/store
// [cache]: https://pkg.go.dev/github.com/matzehuels/tasktree/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/tasktree/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/tasktree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/tasktree/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/tasktree/pkg/buildinfo
package pkg
