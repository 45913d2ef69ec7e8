package store

import (
	"context"
	stderrors "errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/tasktree/pkg/config"
	"github.com/matzehuels/tasktree/pkg/errors"
	"github.com/matzehuels/tasktree/pkg/observability"
	"github.com/matzehuels/tasktree/pkg/taskgraph"
)

// runStoreContract exercises behaviour every backend must share.
func runStoreContract(t *testing.T, newStore func(opts Options) Store) {
	ctx := context.Background()

	t.Run("missing graph", func(t *testing.T) {
		s := newStore(Options{})
		defer s.Close()

		_, err := s.Load(ctx)
		assert.True(t, errors.Is(err, errors.ErrCodeFileNotFound), "got %v", err)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("create if missing", func(t *testing.T) {
		s := newStore(Options{CreateIfMissing: true})
		defer s.Close()

		g, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, g.Len())
		assert.Equal(t, 1, g.NextID())
	})

	t.Run("round trip", func(t *testing.T) {
		s := newStore(Options{})
		defer s.Close()

		g := taskgraph.New()
		t1 := g.CreateTask("tracker", g.Head)
		g.CreateTask("prototype", t1).SetDone(true)
		g.CreateTask("gui", t1)
		require.NoError(t, s.Save(ctx, g))

		got, err := s.Load(ctx)
		require.NoError(t, err)
		assert.ElementsMatch(t, g.Reachable(), got.Reachable())
		assert.Equal(t, 4, got.NextID())

		// A second save replaces the snapshot.
		got.CreateTask("deadlines", nil)
		require.NoError(t, s.Save(ctx, got))
		again, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, again.Len())
	})
}

func TestFile_Contract(t *testing.T) {
	runStoreContract(t, func(opts Options) Store {
		return NewFile(filepath.Join(t.TempDir(), "nested", "graph.json"), opts)
	})
}

func TestRedis_Contract(t *testing.T) {
	runStoreContract(t, func(opts Options) Store {
		mr := miniredis.RunT(t)
		client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
		return NewRedisFromClient(client, "tasktree:test", opts)
	})
}

func TestFile_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graph.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"1": {"id": 1, "name": "x"}}`), 0o644))

	s := NewFile(path, Options{CreateIfMissing: true})
	_, err := s.Load(context.Background())
	assert.True(t, errors.Is(err, errors.ErrCodeMissingRoot), "got %v", err)
}

func TestRedis_StoredDocument(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	s := NewRedisFromClient(client, "graph", Options{})
	defer s.Close()

	g := taskgraph.New()
	g.CreateTask("tracker", g.Head)
	require.NoError(t, s.Save(context.Background(), g))

	raw, err := mr.Get("graph")
	require.NoError(t, err)
	assert.Contains(t, raw, `"name": "tracker"`)
}

func TestRedis_CorruptDocument(t *testing.T) {
	mr := miniredis.RunT(t)
	require.NoError(t, mr.Set("graph", "not json"))
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	s := NewRedisFromClient(client, "graph", Options{CreateIfMissing: true})
	defer s.Close()

	_, err := s.Load(context.Background())
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidFormat), "got %v", err)
}

func TestRedis_Unavailable(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr(), MaxRetries: -1})
	s := NewRedisFromClient(client, "graph", Options{})
	defer s.Close()
	mr.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := s.Load(ctx)
	assert.True(t, errors.Is(err, errors.ErrCodeStoreUnavailable), "got %v", err)
	err = s.Save(ctx, taskgraph.New())
	assert.True(t, errors.Is(err, errors.ErrCodeStoreUnavailable), "got %v", err)
}

func TestOpen(t *testing.T) {
	s, err := Open(config.StoreConfig{Backend: config.BackendFile, File: "/tmp/x.json"}, Options{})
	require.NoError(t, err)
	assert.IsType(t, &File{}, s)

	s, err = Open(config.StoreConfig{Backend: config.BackendRedis, Redis: config.RedisConfig{Addr: "localhost:0", Key: "k"}}, Options{})
	require.NoError(t, err)
	assert.IsType(t, &Redis{}, s)
	assert.NoError(t, s.Close())

	_, err = Open(config.StoreConfig{Backend: "etcd"}, Options{})
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
}

type recordingHooks struct {
	loads, saves []int
	failures     int
}

func (h *recordingHooks) OnLoad(_ context.Context, _ string, tasks int, _ time.Duration, err error) {
	if err != nil {
		h.failures++
		return
	}
	h.loads = append(h.loads, tasks)
}

func (h *recordingHooks) OnSave(_ context.Context, _ string, tasks int, _ time.Duration, err error) {
	if err != nil {
		h.failures++
		return
	}
	h.saves = append(h.saves, tasks)
}

func TestFile_ReportsHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	s := NewFile(filepath.Join(t.TempDir(), "graph.json"), Options{})

	_, err := s.Load(ctx)
	require.Error(t, err)

	g := taskgraph.New()
	g.CreateTask("a", nil)
	require.NoError(t, s.Save(ctx, g))
	_, err = s.Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, hooks.failures)
	assert.Equal(t, []int{2}, hooks.saves)
	assert.Equal(t, []int{2}, hooks.loads)
}

func TestFile_SaveFailureKeepsExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "graph.json")
	s := NewFile(path, Options{})
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, taskgraph.New()))

	// Make the directory read-only so the temp file cannot be created.
	require.NoError(t, os.Chmod(dir, 0o500))
	defer os.Chmod(dir, 0o755)
	if f, err := os.Create(filepath.Join(dir, "probe")); err == nil {
		f.Close()
		t.Skip("directory permissions not enforced (running as root?)")
	}

	g := taskgraph.New()
	g.CreateTask("lost", nil)
	err := s.Save(ctx, g)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, fs.ErrPermission), "got %v", err)

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Len())
}
