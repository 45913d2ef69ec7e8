// Package store persists whole task graphs.
//
// A [Store] saves and loads one complete graph snapshot. Two backends are
// provided:
//
//   - [File]: the JSON file format of [github.com/matzehuels/tasktree/pkg/io],
//     written atomically
//   - [Redis]: the same JSON document stored under a single redis key
//
// Both report a missing graph as FILE_NOT_FOUND (wrapping fs.ErrNotExist)
// unless created with CreateIfMissing, in which case Load returns a fresh
// graph holding only the root. Neither backend merges concurrent writers:
// the last Save wins.
package store

import (
	"context"
	"time"

	"github.com/matzehuels/tasktree/pkg/config"
	"github.com/matzehuels/tasktree/pkg/errors"
	"github.com/matzehuels/tasktree/pkg/observability"
	"github.com/matzehuels/tasktree/pkg/taskgraph"
)

// Store loads and saves a task graph snapshot.
type Store interface {
	Load(ctx context.Context) (*taskgraph.Graph, error)
	Save(ctx context.Context, g *taskgraph.Graph) error
	Close() error
}

// Options configures store behaviour shared by all backends.
type Options struct {
	// CreateIfMissing makes Load return a new root-only graph when nothing
	// has been saved yet.
	CreateIfMissing bool
}

// Open creates the store selected by cfg.
func Open(cfg config.StoreConfig, opts Options) (Store, error) {
	switch cfg.Backend {
	case config.BackendFile, "":
		return NewFile(cfg.File, opts), nil
	case config.BackendRedis:
		return NewRedis(cfg.Redis, opts), nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown store backend %q", cfg.Backend)
	}
}

func notFound(cause error, what string, opts Options) (*taskgraph.Graph, error) {
	if opts.CreateIfMissing {
		return taskgraph.New(), nil
	}
	return nil, errors.Wrap(errors.ErrCodeFileNotFound, cause, "no task graph at %s (run init first)", what)
}

func reportLoad(ctx context.Context, backend string, start time.Time, g *taskgraph.Graph, err error) {
	tasks := 0
	if err == nil {
		tasks = g.Len()
	}
	observability.Store().OnLoad(ctx, backend, tasks, time.Since(start), err)
}

func reportSave(ctx context.Context, backend string, start time.Time, g *taskgraph.Graph, err error) {
	tasks := 0
	if err == nil {
		tasks = g.Len()
	}
	observability.Store().OnSave(ctx, backend, tasks, time.Since(start), err)
}
