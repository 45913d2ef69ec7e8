package taskgraph

import (
	"slices"
	"sort"
	"testing"
)

// tracker builds the reference scenario: root -> tracker -> {prototype (done), gui}.
func tracker() (*Graph, map[string]*Node) {
	g := New()
	t1 := g.CreateTask("tracker", g.Head)
	t2 := g.CreateTask("prototype", t1)
	t3 := g.CreateTask("gui", t1)
	t2.SetDone(true)
	return g, map[string]*Node{"tracker": t1, "prototype": t2, "gui": t3}
}

func TestNew(t *testing.T) {
	g := New()
	if g.Head.ID != RootID {
		t.Errorf("Head.ID = %d, want %d", g.Head.ID, RootID)
	}
	if g.Head.Name != RootName {
		t.Errorf("Head.Name = %q, want %q", g.Head.Name, RootName)
	}
	if g.NextID() != 1 {
		t.Errorf("NextID() = %d, want 1", g.NextID())
	}
	if g.Head.Parent() != nil {
		t.Error("root must not have a parent")
	}
}

func TestCreateTask(t *testing.T) {
	g, nodes := tracker()

	tests := []struct {
		name   string
		id     int
		parent *Node
		done   bool
	}{
		{"tracker", 1, g.Head, false},
		{"prototype", 2, nodes["tracker"], true},
		{"gui", 3, nodes["tracker"], false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := nodes[tt.name]
			if n.ID != tt.id {
				t.Errorf("ID = %d, want %d", n.ID, tt.id)
			}
			if n.Parent() != tt.parent {
				t.Errorf("Parent() = %v, want %v", n.Parent(), tt.parent)
			}
			if n.Done != tt.done {
				t.Errorf("Done = %t, want %t", n.Done, tt.done)
			}
		})
	}

	if got := nodes["tracker"].DependencyIDs(); !slices.Equal(got, []int{2, 3}) {
		t.Errorf("tracker deps = %v, want [2 3]", got)
	}
	if g.NextID() != 4 {
		t.Errorf("NextID() = %d, want 4", g.NextID())
	}
}

func TestCreateTask_NilParent(t *testing.T) {
	g := New()
	n := g.CreateTask("top", nil)
	if n.Parent() != g.Head {
		t.Errorf("Parent() = %v, want root", n.Parent())
	}
	if !g.Head.DependsOn(n) {
		t.Error("root should depend on task created with nil parent")
	}
}

func TestSetDone(t *testing.T) {
	g := New()
	n := g.CreateTask("a", g.Head)
	n.SetDone(true)
	if !n.Done {
		t.Fatal("SetDone(true) did not set flag")
	}
	n.SetDone(false)
	if n.Done {
		t.Fatal("SetDone(false) did not clear flag")
	}
	if g.NextID() != 2 {
		t.Errorf("SetDone changed id counter: NextID() = %d", g.NextID())
	}
}

func TestAddDependency_ParentOverwrite(t *testing.T) {
	g := New()
	a := g.CreateTask("a", g.Head)
	b := g.CreateTask("b", g.Head)
	shared := g.CreateTask("shared", a)
	b.AddDependency(shared)

	if shared.Parent() != b {
		t.Errorf("Parent() = %v, want last assigned parent b", shared.Parent())
	}
	if !a.DependsOn(shared) || !b.DependsOn(shared) {
		t.Error("both parents should keep the dependency edge")
	}
}

func TestWalk(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *Graph
		wantIDs []int
	}{
		{
			name:    "RootOnly",
			build:   New,
			wantIDs: []int{0},
		},
		{
			name: "Tracker",
			build: func() *Graph {
				g, _ := tracker()
				return g
			},
			wantIDs: []int{0, 1, 2, 3},
		},
		{
			name: "Diamond",
			build: func() *Graph {
				g := New()
				a := g.CreateTask("a", g.Head)
				b := g.CreateTask("b", g.Head)
				d := g.CreateTask("d", a)
				b.AddDependency(d)
				return g
			},
			wantIDs: []int{0, 1, 2, 3},
		},
		{
			name: "Cycle",
			build: func() *Graph {
				g := New()
				a := g.CreateTask("a", g.Head)
				b := g.CreateTask("b", a)
				c := g.CreateTask("c", b)
				c.AddDependency(a)
				a.AddDependency(a)
				return g
			},
			wantIDs: []int{0, 1, 2, 3},
		},
		{
			name: "CycleThroughRoot",
			build: func() *Graph {
				g := New()
				a := g.CreateTask("a", g.Head)
				a.AddDependency(g.Head)
				return g
			},
			wantIDs: []int{0, 1},
		},
		{
			name: "UnreachablePruned",
			build: func() *Graph {
				g := New()
				g.CreateTask("a", g.Head)
				orphan := NewNode(g.NextID(), "orphan")
				orphan.AddDependency(NewNode(99, "orphan-child"))
				return g
			},
			wantIDs: []int{0, 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := tt.build()
			var ids []int
			g.Walk(func(n *Node) bool {
				ids = append(ids, n.ID)
				return true
			})
			sort.Ints(ids)
			if !slices.Equal(ids, tt.wantIDs) {
				t.Errorf("visited = %v, want %v", ids, tt.wantIDs)
			}
			if g.Len() != len(tt.wantIDs) {
				t.Errorf("Len() = %d, want %d", g.Len(), len(tt.wantIDs))
			}
		})
	}
}

func TestWalk_Stop(t *testing.T) {
	g, _ := tracker()
	calls := 0
	g.Walk(func(*Node) bool {
		calls++
		return calls < 2
	})
	if calls != 2 {
		t.Errorf("Walk continued after fn returned false: %d calls", calls)
	}
}

func TestWalk_DepthFirst(t *testing.T) {
	g, _ := tracker()
	var ids []int
	g.Walk(func(n *Node) bool {
		ids = append(ids, n.ID)
		return true
	})
	// Children are pushed in order and popped last-first.
	if want := []int{0, 1, 3, 2}; !slices.Equal(ids, want) {
		t.Errorf("visit order = %v, want %v", ids, want)
	}
}

func TestReachable(t *testing.T) {
	g, _ := tracker()
	records := g.Reachable()

	byID := make(map[int]Record, len(records))
	for _, r := range records {
		if _, dup := byID[r.ID]; dup {
			t.Fatalf("duplicate record for id %d", r.ID)
		}
		byID[r.ID] = r
	}

	if got := byID[0].Dependencies; !slices.Equal(got, []int{1}) {
		t.Errorf("root deps = %v, want [1]", got)
	}
	if got := byID[1].Dependencies; !slices.Equal(got, []int{2, 3}) {
		t.Errorf("tracker deps = %v, want [2 3]", got)
	}
	if !byID[2].Done || byID[3].Done {
		t.Errorf("done flags = %t/%t, want true/false", byID[2].Done, byID[3].Done)
	}
	if byID[3].Dependencies == nil || len(byID[3].Dependencies) != 0 {
		t.Errorf("leaf deps = %#v, want empty non-nil slice", byID[3].Dependencies)
	}
}

func TestReachable_SharedOnce(t *testing.T) {
	g := New()
	a := g.CreateTask("a", g.Head)
	b := g.CreateTask("b", g.Head)
	shared := g.CreateTask("shared", a)
	b.AddDependency(shared)

	count := 0
	for _, r := range g.Reachable() {
		if r.ID == shared.ID {
			count++
		}
	}
	if count != 1 {
		t.Errorf("shared node emitted %d times, want 1", count)
	}
}

func TestFind(t *testing.T) {
	g, nodes := tracker()

	if n, ok := g.Find(3); !ok || n != nodes["gui"] {
		t.Errorf("Find(3) = %v, %t; want gui", n, ok)
	}
	if n, ok := g.Find(0); !ok || n != g.Head {
		t.Errorf("Find(0) = %v, %t; want root", n, ok)
	}
	if _, ok := g.Find(42); ok {
		t.Error("Find(42) should report false")
	}
}

func TestFromHead(t *testing.T) {
	head := NewNode(RootID, RootName)
	head.AddDependency(NewNode(7, "seven"))

	g := FromHead(head, 8)
	if n := g.CreateTask("next", nil); n.ID != 8 {
		t.Errorf("CreateTask after FromHead allocated %d, want 8", n.ID)
	}

	for _, next := range []int{RootID, -5} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("FromHead(head, %d) did not panic", next)
				}
			}()
			FromHead(NewNode(RootID, RootName), next)
		}()
	}
}

func TestNodeString(t *testing.T) {
	n := NewNode(4, "deadlines")
	if got, want := n.String(), "[id: 4, name: deadlines, done: false]"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestReaches(t *testing.T) {
	g := New()
	a := g.CreateTask("a", g.Head)
	b := g.CreateTask("b", a)
	c := g.CreateTask("c", g.Head)

	tests := []struct {
		name     string
		from, to *Node
		want     bool
	}{
		{"self", a, a, true},
		{"child", a, b, true},
		{"transitive", g.Head, b, true},
		{"upward", b, a, false},
		{"sibling", a, c, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Reaches(tt.from, tt.to); got != tt.want {
				t.Errorf("Reaches(%d, %d) = %t, want %t", tt.from.ID, tt.to.ID, got, tt.want)
			}
		})
	}

	// Terminates on a cycle that does not contain the target.
	b.AddDependency(a)
	if Reaches(a, c) {
		t.Error("Reaches(a, c) = true through unrelated cycle")
	}
}
