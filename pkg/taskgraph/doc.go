// Package taskgraph models a hierarchy of tasks as a directed graph.
//
// # Overview
//
// A [Graph] owns a fixed root task ([Graph.Head], id 0, named "root"). Every
// other task is created with [Graph.CreateTask], which assigns the next unused
// id and attaches the new task as a dependency of an existing one:
//
//	g := taskgraph.New()
//	tracker := g.CreateTask("tracker", g.Head)
//	proto := g.CreateTask("prototype", tracker)
//	proto.SetDone(true)
//
// Dependencies are ordered. A task may be the dependency of several parents
// (use [Node.AddDependency] to share an existing task), so the structure is a
// DAG in general, and nothing stops a careless caller from building a cycle.
//
// # Parent Back-References
//
// [Node.Parent] is a single slot that is overwritten every time the node is
// attached to a new parent. For a shared task it reports only the most recent
// attachment, not the full set of incoming edges. Code that needs every parent
// must scan the reachable set.
//
// # Traversal
//
// [Graph.Walk] and [Graph.Reachable] visit each task reachable from the root
// exactly once. The walk is iterative, driven by an explicit stack and a set
// of visited ids, so shared dependencies are emitted once and cycles
// terminate. Visit order is depth-first but is not part of the contract;
// only completeness and the per-node dependency order are.
//
// # Concurrency
//
// A Graph is not safe for concurrent use. Id allocation and dependency
// attachment must be serialized by the owner.
package taskgraph
