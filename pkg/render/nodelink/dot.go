package nodelink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/matzehuels/tasktree/pkg/taskgraph"
)

const (
	// DefaultDoneColor fills tasks that are done.
	DefaultDoneColor = "green"
	// DefaultOpenColor fills tasks that are not done.
	DefaultOpenColor = "red"
)

// Options configures node-link diagram generation.
type Options struct {
	// DoneColor and OpenColor are Graphviz color names or "#rrggbb" values.
	// Empty values fall back to DefaultDoneColor and DefaultOpenColor.
	DoneColor string
	OpenColor string

	// LeftToRight lays the diagram out horizontally instead of top-down.
	LeftToRight bool
}

func (o Options) colors() (done, open string) {
	done, open = o.DoneColor, o.OpenColor
	if done == "" {
		done = DefaultDoneColor
	}
	if open == "" {
		open = DefaultOpenColor
	}
	return done, open
}

// ToDOT converts a task graph to Graphviz DOT format.
// Only tasks reachable from the root are included, each exactly once.
func ToDOT(g *taskgraph.Graph, opts Options) string {
	records := g.Reachable()
	done, open := opts.colors()

	rankdir := "TB"
	if opts.LeftToRight {
		rankdir = "LR"
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir)
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	for _, r := range records {
		fmt.Fprintf(&buf, "  %d [%s];\n", r.ID, strings.Join(fmtAttrs(r, done, open), ", "))
	}

	buf.WriteString("\n")
	for _, r := range records {
		for _, dep := range r.Dependencies {
			fmt.Fprintf(&buf, "  %d -> %d;\n", r.ID, dep)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// Label returns the display label of a task: "name (id=N)".
func Label(r taskgraph.Record) string {
	return fmt.Sprintf("%s (id=%d)", r.Name, r.ID)
}

func fmtAttrs(r taskgraph.Record, done, open string) []string {
	color := open
	if r.Done {
		color = done
	}
	return []string{
		fmt.Sprintf("label=%q", Label(r)),
		fmt.Sprintf("fillcolor=%q", color),
	}
}
