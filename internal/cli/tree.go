package cli

import (
	"fmt"
	"strings"

	"github.com/matzehuels/tasktree/pkg/taskgraph"
)

// treeRow is one line of the outline view of a graph.
type treeRow struct {
	node  *taskgraph.Node
	depth int

	// shared marks a task already shown on an earlier row. Its
	// dependencies are not repeated, which also cuts cycles.
	shared bool
}

// flatten lays the reachable graph out as an outline, depth first, with
// dependencies in their stored order.
func flatten(g *taskgraph.Graph) []treeRow {
	if g.Head == nil {
		return nil
	}

	type frame struct {
		node  *taskgraph.Node
		depth int
	}
	var rows []treeRow
	seen := make(map[int]bool)
	stack := []frame{{g.Head, 0}}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if seen[f.node.ID] {
			rows = append(rows, treeRow{node: f.node, depth: f.depth, shared: true})
			continue
		}
		seen[f.node.ID] = true
		rows = append(rows, treeRow{node: f.node, depth: f.depth})

		deps := f.node.Dependencies
		for i := len(deps) - 1; i >= 0; i-- {
			stack = append(stack, frame{deps[i], f.depth + 1})
		}
	}
	return rows
}

// formatRow renders a row without cursor decoration.
func formatRow(r treeRow) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", r.depth))
	b.WriteString(statusIcon(r.node.Done))
	b.WriteString(" ")
	b.WriteString(r.node.Name)
	b.WriteString(" ")
	b.WriteString(StyleDim.Render(fmt.Sprintf("#%d", r.node.ID)))
	if r.shared {
		b.WriteString(" ")
		b.WriteString(StyleDim.Render(iconShared + " shown above"))
	}
	return b.String()
}
