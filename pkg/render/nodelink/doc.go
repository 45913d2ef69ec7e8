// Package nodelink renders task graphs as node-link diagrams.
//
// # Overview
//
// Each task reachable from the root becomes a box labelled "name (id=N)",
// filled green when the task is done and red when it is not. Every dependency
// relation becomes one arrow from the parent task to its dependency. A task
// shared by several parents is drawn once with several incoming arrows.
//
// # Usage
//
// Convert a graph to DOT, then render:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.Render(ctx, dot, nodelink.FormatSVG)
//	page, err := nodelink.RenderHTML(ctx, dot, "tasks")
//
// The DOT source can also be saved and processed with external Graphviz tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process rendering,
// so no Graphviz installation is needed.
package nodelink
