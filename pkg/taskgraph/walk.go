package taskgraph

// Walk calls fn for every task reachable from the root, each exactly once,
// until fn returns false.
//
// The traversal keeps an explicit stack and a set of visited ids. A node
// popped a second time (because it is shared, or because the edges form a
// cycle) is skipped, which bounds the walk by the number of distinct ids.
// Children are pushed in dependency order and therefore popped in reverse.
func (g *Graph) Walk(fn func(n *Node) bool) {
	walkFrom(g.Head, fn)
}

func walkFrom(start *Node, fn func(n *Node) bool) {
	if start == nil {
		return
	}
	stack := []*Node{start}
	visited := make(map[int]struct{})

	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if _, seen := visited[n.ID]; seen {
			continue
		}
		visited[n.ID] = struct{}{}

		if !fn(n) {
			return
		}
		stack = append(stack, n.Dependencies...)
	}
}

// Reaches reports whether to can be reached from from by following
// dependency edges. A node always reaches itself.
//
// Callers use it to refuse edges that would close a cycle: adding
// parent -> child creates one exactly when Reaches(child, parent).
func Reaches(from, to *Node) bool {
	found := false
	walkFrom(from, func(n *Node) bool {
		found = n == to
		return !found
	})
	return found
}

// Reachable returns a [Record] for every task reachable from the root, in
// visit order.
func (g *Graph) Reachable() []Record {
	var records []Record
	g.Walk(func(n *Node) bool {
		records = append(records, n.Record())
		return true
	})
	return records
}
