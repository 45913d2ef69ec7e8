package taskgraph

import "fmt"

// Graph owns a task hierarchy rooted at Head.
//
// The zero value is not usable - use [New] or [FromHead].
type Graph struct {
	// Head is the root task (id 0). It is never a dependency of anything.
	Head *Node

	nextID int
}

// New creates a graph containing only the root task. The first task created
// under it receives id 1.
func New() *Graph {
	return &Graph{
		Head:   NewNode(RootID, RootName),
		nextID: RootID + 1,
	}
}

// FromHead assembles a graph around an already-built root, as decoders do
// after wiring nodes themselves. nextID is the id the next [Graph.CreateTask]
// call will allocate; it must exceed every id reachable from head.
//
// FromHead panics if nextID is not greater than [RootID].
func FromHead(head *Node, nextID int) *Graph {
	if nextID <= RootID {
		panic(fmt.Sprintf("taskgraph: FromHead with nextID %d <= root id", nextID))
	}
	return &Graph{Head: head, nextID: nextID}
}

// NextID returns the id the next [Graph.CreateTask] call will allocate.
func (g *Graph) NextID() int { return g.nextID }

// CreateTask allocates a new task named name and attaches it as the last
// dependency of parent. A nil parent attaches the task under [Graph.Head].
//
// parent must belong to g. Passing a node from another graph is not
// detected and produces an inconsistent graph.
func (g *Graph) CreateTask(name string, parent *Node) *Node {
	if parent == nil {
		parent = g.Head
	}
	n := NewNode(g.nextID, name)
	g.nextID++
	parent.AddDependency(n)
	return n
}

// Find returns the reachable task with the given id.
func (g *Graph) Find(id int) (*Node, bool) {
	var found *Node
	g.Walk(func(n *Node) bool {
		if n.ID == id {
			found = n
			return false
		}
		return true
	})
	return found, found != nil
}

// Len returns the number of tasks reachable from the root, root included.
func (g *Graph) Len() int {
	count := 0
	g.Walk(func(*Node) bool {
		count++
		return true
	})
	return count
}
