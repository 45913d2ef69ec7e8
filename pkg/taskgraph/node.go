package taskgraph

import (
	"fmt"
	"slices"
)

// RootID is the id of the root task. It is never allocated by [Graph.CreateTask].
const RootID = 0

// RootName is the name given to the root task of a fresh graph.
const RootName = "root"

// Node is a single task.
//
// Dependencies hold the edges to child tasks in insertion order. A node owns
// those edges but not the children themselves: the same child may appear in
// the Dependencies of several nodes.
type Node struct {
	ID           int     // Unique within the owning Graph
	Name         string  // Human-readable label
	Done         bool    // Completion flag
	Dependencies []*Node // Child tasks, in insertion order

	parent *Node
}

// NewNode returns a detached node with the given id and name.
//
// Most callers should use [Graph.CreateTask], which allocates ids. NewNode
// exists for decoders that rebuild a graph with known ids; the caller is
// then responsible for id uniqueness.
func NewNode(id int, name string) *Node {
	return &Node{ID: id, Name: name}
}

// SetDone sets the completion flag.
func (n *Node) SetDone(status bool) { n.Done = status }

// Parent returns the node this task was most recently attached to, or nil
// for the root and for detached nodes. See the package documentation for why
// this is not the full parent set.
func (n *Node) Parent() *Node { return n.parent }

// AddDependency appends dep to n's dependencies and makes n the parent of dep.
//
// AddDependency performs no cycle or duplicate-edge check. Attaching a node
// that belongs to a different graph leaves both graphs inconsistent.
func (n *Node) AddDependency(dep *Node) {
	n.Dependencies = append(n.Dependencies, dep)
	dep.parent = n
}

// DependencyIDs returns the ids of n's dependencies in order.
func (n *Node) DependencyIDs() []int {
	ids := make([]int, len(n.Dependencies))
	for i, d := range n.Dependencies {
		ids[i] = d.ID
	}
	return ids
}

// DependsOn reports whether dep is a direct dependency of n.
func (n *Node) DependsOn(dep *Node) bool {
	return slices.Contains(n.Dependencies, dep)
}

// String formats the node as "[id: 1, name: tracker, done: false]".
func (n *Node) String() string {
	return fmt.Sprintf("[id: %d, name: %s, done: %t]", n.ID, n.Name, n.Done)
}

// Record is the flat, pointer-free form of a node: its fields plus the ids
// of its dependencies. Records are what persistence and renderers consume.
type Record struct {
	ID           int
	Name         string
	Done         bool
	Dependencies []int
}

// Record returns the flat form of n.
func (n *Node) Record() Record {
	return Record{
		ID:           n.ID,
		Name:         n.Name,
		Done:         n.Done,
		Dependencies: n.DependencyIDs(),
	}
}
