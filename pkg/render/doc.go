// Package render provides output-format helpers shared by tasktree renderers.
//
// # Overview
//
// The node-link renderer in the [nodelink] subpackage turns a task graph into
// Graphviz DOT and renders it in-process to SVG or PNG. PDF output is
// produced from the SVG by [ToPDF], which shells out to rsvg-convert:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{})
//	svg, err := nodelink.Render(ctx, dot, nodelink.FormatSVG)
//	pdf, err := render.ToPDF(ctx, svg)
//
// Renderers are pure consumers of the graph: they read the reachable records
// and never mutate tasks.
package render
