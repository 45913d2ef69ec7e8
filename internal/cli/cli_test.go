package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/tasktree/pkg/errors"
	graphio "github.com/matzehuels/tasktree/pkg/io"
	"github.com/matzehuels/tasktree/pkg/taskgraph"
)

// testEnv runs commands against a graph file in a temp directory.
type testEnv struct {
	t    *testing.T
	dir  string
	file string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	return &testEnv{t: t, dir: dir, file: filepath.Join(dir, "graph.json")}
}

// run executes one command line and returns its stdout.
func (e *testEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var out, logs bytes.Buffer
	c := New(&out, &logs, LogInfo)
	root := c.RootCommand()
	root.SetErr(&logs)
	root.SetArgs(append([]string{
		"--config", filepath.Join(e.dir, "missing.toml"),
		"--file", e.file,
	}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *testEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	if err != nil {
		e.t.Fatalf("%v: %v", args, err)
	}
	return out
}

func (e *testEnv) graph() *taskgraph.Graph {
	e.t.Helper()
	g, err := graphio.ImportJSON(e.file)
	if err != nil {
		e.t.Fatalf("ImportJSON: %v", err)
	}
	return g
}

func (e *testEnv) task(g *taskgraph.Graph, id int) *taskgraph.Node {
	e.t.Helper()
	n, ok := g.Find(id)
	if !ok {
		e.t.Fatalf("task %d not found", id)
	}
	return n
}

// tracker builds 0 -> [1], 1 -> [2, 3] with 2 done.
func (e *testEnv) tracker() {
	e.mustRun("init")
	e.mustRun("add", "tracker")
	e.mustRun("add", "--parent", "1", "prototype")
	e.mustRun("add", "-p", "1", "gui")
	e.mustRun("done", "2")
}

func TestInit(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun("init")
	if !strings.Contains(out, e.file) {
		t.Errorf("output should name the graph file, got %q", out)
	}

	g := e.graph()
	if g.Len() != 1 || g.NextID() != 1 {
		t.Errorf("Len() = %d, NextID() = %d, want 1, 1", g.Len(), g.NextID())
	}
}

func TestInit_Existing(t *testing.T) {
	e := newTestEnv(t)
	e.tracker()

	_, err := e.run("init")
	if !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Fatalf("init over existing graph: err = %v, want INVALID_INPUT", err)
	}
	if e.graph().Len() != 4 {
		t.Error("refused init must leave the graph untouched")
	}

	e.mustRun("init", "--force")
	if got := e.graph().Len(); got != 1 {
		t.Errorf("after init --force Len() = %d, want 1", got)
	}
}

func TestInit_ForceReplacesCorruptFile(t *testing.T) {
	e := newTestEnv(t)
	if err := os.WriteFile(e.file, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := e.run("init"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("init over corrupt file: err = %v, want INVALID_FORMAT", err)
	}
	e.mustRun("init", "--force")
	e.graph()
}

func TestTrackerScenario(t *testing.T) {
	e := newTestEnv(t)
	e.tracker()

	g := e.graph()
	if g.NextID() != 4 {
		t.Errorf("NextID() = %d, want 4", g.NextID())
	}
	if got := g.Head.DependencyIDs(); len(got) != 1 || got[0] != 1 {
		t.Errorf("root dependencies = %v, want [1]", got)
	}
	tracker := e.task(g, 1)
	if got := tracker.DependencyIDs(); len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("tracker dependencies = %v, want [2 3]", got)
	}
	if !e.task(g, 2).Done {
		t.Error("prototype should be done")
	}
	if e.task(g, 3).Done {
		t.Error("gui should be open")
	}
}

func TestAdd(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode errors.Code
	}{
		{"joins words", []string{"add", "write", "the", "docs"}, ""},
		{"unknown parent", []string{"add", "--parent", "42", "x"}, errors.ErrCodeTaskNotFound},
		{"negative parent", []string{"add", "--parent", "-1", "x"}, errors.ErrCodeTaskNotFound},
		{"control characters", []string{"add", "bad\x00name"}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.mustRun("init")

			_, err := e.run(tt.args...)
			if tt.wantCode == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("err = %v, want %s", err, tt.wantCode)
			}
			if e.graph().Len() != 1 {
				t.Error("failed add must not change the graph")
			}
		})
	}

	t.Run("name stored joined", func(t *testing.T) {
		e := newTestEnv(t)
		e.mustRun("add", "write", "the", "docs")
		if got := e.task(e.graph(), 1).Name; got != "write the docs" {
			t.Errorf("Name = %q", got)
		}
	})
}

func TestAdd_CreatesMissingGraph(t *testing.T) {
	e := newTestEnv(t)
	out := e.mustRun("add", "first")
	if !strings.Contains(out, "first") {
		t.Errorf("output = %q, want task name", out)
	}
	if e.graph().Len() != 2 {
		t.Error("add should create the graph when none exists")
	}
}

func TestDoneUndone(t *testing.T) {
	e := newTestEnv(t)
	e.tracker()

	e.mustRun("done", "1", "3")
	g := e.graph()
	for _, id := range []int{1, 2, 3} {
		if !e.task(g, id).Done {
			t.Errorf("task %d should be done", id)
		}
	}

	e.mustRun("undone", "2")
	if e.task(e.graph(), 2).Done {
		t.Error("task 2 should be open after undone")
	}
}

func TestDone_Errors(t *testing.T) {
	e := newTestEnv(t)
	e.tracker()

	if _, err := e.run("done", "3", "99"); !errors.Is(err, errors.ErrCodeTaskNotFound) {
		t.Errorf("err = %v, want TASK_NOT_FOUND", err)
	}
	if e.task(e.graph(), 3).Done {
		t.Error("a failing done must not mark any task")
	}

	if _, err := e.run("done", "abc"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

func TestCommandsRequireGraph(t *testing.T) {
	for _, args := range [][]string{{"done", "1"}, {"link", "1", "2"}, {"list"}, {"render", "-F", "dot"}} {
		t.Run(args[0], func(t *testing.T) {
			e := newTestEnv(t)
			_, err := e.run(args...)
			if !errors.Is(err, errors.ErrCodeFileNotFound) {
				t.Errorf("err = %v, want FILE_NOT_FOUND", err)
			}
		})
	}
}

func TestLink(t *testing.T) {
	e := newTestEnv(t)
	e.tracker()
	e.mustRun("add", "docs")

	// Share prototype (2) under docs (4).
	e.mustRun("link", "4", "2")

	g := e.graph()
	if !e.task(g, 4).DependsOn(e.task(g, 2)) {
		t.Fatal("docs should depend on prototype")
	}
	if !e.task(g, 1).DependsOn(e.task(g, 2)) {
		t.Error("tracker should still depend on prototype")
	}
	if g.Len() != 5 {
		t.Errorf("Len() = %d, want 5 (shared task counted once)", g.Len())
	}
}

func TestLink_Refused(t *testing.T) {
	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"cycle", []string{"link", "2", "1"}, errors.ErrCodeInvalidInput},
		{"self", []string{"link", "3", "3"}, errors.ErrCodeInvalidInput},
		{"duplicate", []string{"link", "1", "2"}, errors.ErrCodeInvalidInput},
		{"root as child", []string{"link", "1", "0"}, errors.ErrCodeInvalidInput},
		{"unknown child", []string{"link", "1", "9"}, errors.ErrCodeTaskNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEnv(t)
			e.tracker()
			before, _ := os.ReadFile(e.file)

			_, err := e.run(tt.args...)
			if !errors.Is(err, tt.code) {
				t.Fatalf("err = %v, want %s", err, tt.code)
			}
			after, _ := os.ReadFile(e.file)
			if !bytes.Equal(before, after) {
				t.Error("refused link must not rewrite the graph")
			}
		})
	}
}

func TestList(t *testing.T) {
	e := newTestEnv(t)
	e.tracker()

	out := e.mustRun("list")
	for _, want := range []string{"tracker", "prototype", "gui", "done", "open", "2, 3", "4 tasks", "next id 4"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
}

func TestList_Tree(t *testing.T) {
	e := newTestEnv(t)
	e.tracker()
	e.mustRun("add", "docs")
	e.mustRun("link", "4", "2")

	out := e.mustRun("list", "--tree")
	if !strings.Contains(out, "    ● prototype #2") {
		t.Errorf("prototype should be indented under tracker:\n%s", out)
	}
	if !strings.Contains(out, "shown above") {
		t.Errorf("shared task should be marked:\n%s", out)
	}
}

func TestRender(t *testing.T) {
	e := newTestEnv(t)
	e.tracker()

	t.Run("dot to stdout", func(t *testing.T) {
		out := e.mustRun("render", "-F", "dot")
		for _, want := range []string{"digraph G {", "1 -> 2;", `label="gui (id=3)"`} {
			if !strings.Contains(out, want) {
				t.Errorf("dot output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("svg to file", func(t *testing.T) {
		path := filepath.Join(e.dir, "graph.svg")
		e.mustRun("render", "-o", path)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Contains(data, []byte("<svg")) {
			t.Error("output should be SVG")
		}
	})

	t.Run("html inferred from extension", func(t *testing.T) {
		path := filepath.Join(e.dir, "graph.html")
		e.mustRun("render", "-o", path)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Contains(data, []byte("<!DOCTYPE html>")) {
			t.Error("output should be an HTML page")
		}
	})

	t.Run("svg is cached", func(t *testing.T) {
		entries, err := filepath.Glob(filepath.Join(e.dir, "cache", "tasktree", "render", "*", "*.json"))
		if err != nil {
			t.Fatal(err)
		}
		if len(entries) == 0 {
			t.Error("render should populate the render cache")
		}
	})

	t.Run("no-cache", func(t *testing.T) {
		out := e.mustRun("render", "--no-cache", "-F", "svg")
		if !strings.Contains(out, "<svg") {
			t.Error("stdout should hold the SVG")
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := e.run("render", "-F", "gif"); !errors.Is(err, errors.ErrCodeInvalidInput) {
			t.Errorf("err = %v, want INVALID_INPUT", err)
		}
	})
}

func TestResolveFormat(t *testing.T) {
	tests := []struct {
		format, output string
		want           string
		wantErr        bool
	}{
		{"", "", "svg", false},
		{"png", "", "png", false},
		{"", "out.PNG", "png", false},
		{"", "out.gv", "dot", false},
		{"dot", "out.svg", "dot", false},
		{"", "out.txt", "", true},
		{"jpeg", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format+"|"+tt.output, func(t *testing.T) {
			got, err := resolveFormat(tt.format, tt.output)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("resolveFormat(%q, %q) = %q, want %q", tt.format, tt.output, got, tt.want)
			}
		})
	}
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "from-config.json")
	cfgPath := filepath.Join(dir, "config.toml")
	cfg := "[store]\nbackend = \"file\"\nfile = \"" + filepath.ToSlash(file) + "\"\n"
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}

	var out, logs bytes.Buffer
	c := New(&out, &logs, LogInfo)
	root := c.RootCommand()
	root.SetErr(&logs)
	root.SetArgs([]string{"--config", cfgPath, "init"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(file); err != nil {
		t.Errorf("graph should be created at the configured path: %v", err)
	}
}

func TestUnknownStore(t *testing.T) {
	e := newTestEnv(t)
	if _, err := e.run("--store", "mongo", "list"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}
