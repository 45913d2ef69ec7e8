// Package cli implements the tasktree command-line interface.
//
// The commands edit one task graph, loaded from and saved to the store
// selected by the config file (see [config.Load]) and the global flags.
// Each editing command runs load, mutate, save against the store, so two
// invocations never share in-memory state.
//
// # Commands
//
//   - init: create an empty graph holding only the root
//   - add, done, undone, link: edit tasks
//   - list: print the reachable tasks as a table or a tree
//   - render: draw the graph as DOT, SVG, PNG, PDF, or HTML
//   - browse: interactive terminal view
//   - serve: read-only HTTP API with metrics
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers are
// passed through context.Context.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/matzehuels/tasktree/pkg/buildinfo"
	"github.com/matzehuels/tasktree/pkg/cache"
	"github.com/matzehuels/tasktree/pkg/config"
	"github.com/matzehuels/tasktree/pkg/errors"
	"github.com/matzehuels/tasktree/pkg/render/nodelink"
	"github.com/matzehuels/tasktree/pkg/store"
	"github.com/matzehuels/tasktree/pkg/taskgraph"
)

const (
	// appName is the application name used for directories and display.
	appName = "tasktree"

	// renderCacheTTL bounds how long unused rendered diagrams are kept.
	renderCacheTTL = 7 * 24 * time.Hour
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	out io.Writer

	// Global flags.
	configPath string
	filePath   string
	backend    string

	cfg config.Config
}

// New creates a CLI that prints command output to out and logs to logw.
func New(out, logw io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(logw, level),
		out:    out,
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:               appName,
		Short:             "Tasktree tracks tasks as a graph of sub-tasks",
		Long:              `Tasktree keeps a hierarchy of tasks, where any task can depend on sub-tasks shared with other tasks, and draws it as a diagram.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.SetOut(c.out)

	flags := root.PersistentFlags()
	flags.StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&c.filePath, "file", "", "task graph file (selects the file store)")
	flags.StringVar(&c.backend, "store", "", `store backend: "file" or "redis"`)

	root.AddCommand(c.initCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.doneCommand(true))
	root.AddCommand(c.doneCommand(false))
	root.AddCommand(c.linkCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())

	return root
}

// setup loads the config, applies flag overrides, and attaches the logger
// to the command context.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	path := c.configPath
	if path == "" {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}

	if c.filePath != "" {
		cfg.Store.File = c.filePath
		if c.backend == "" {
			cfg.Store.Backend = config.BackendFile
		}
	}
	if c.backend != "" {
		cfg.Store.Backend = c.backend
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))

	c.Logger.Debug("Config loaded", "path", path, "store", c.location())
	return nil
}

// =============================================================================
// Store Helpers
// =============================================================================

// location describes where the graph lives, for messages.
func (c *CLI) location() string {
	if c.cfg.Store.Backend == config.BackendRedis {
		return fmt.Sprintf("redis://%s/%s", c.cfg.Store.Redis.Addr, c.cfg.Store.Redis.Key)
	}
	return c.cfg.Store.File
}

func (c *CLI) renderOptions() nodelink.Options {
	return nodelink.Options{
		DoneColor:   c.cfg.Render.DoneColor,
		OpenColor:   c.cfg.Render.OpenColor,
		LeftToRight: c.cfg.Render.LeftToRight,
	}
}

// load reads the current graph. A missing graph is an error unless
// createIfMissing is set.
func (c *CLI) load(ctx context.Context, createIfMissing bool) (*taskgraph.Graph, error) {
	s, err := store.Open(c.cfg.Store, store.Options{CreateIfMissing: createIfMissing})
	if err != nil {
		return nil, err
	}
	defer s.Close()
	return s.Load(ctx)
}

// update loads the graph, applies fn, and saves the result. Nothing is
// saved when fn fails.
func (c *CLI) update(ctx context.Context, createIfMissing bool, fn func(g *taskgraph.Graph) error) error {
	s, err := store.Open(c.cfg.Store, store.Options{CreateIfMissing: createIfMissing})
	if err != nil {
		return err
	}
	defer s.Close()

	g, err := s.Load(ctx)
	if err != nil {
		return err
	}
	if err := fn(g); err != nil {
		return err
	}
	if err := s.Save(ctx, g); err != nil {
		return err
	}
	loggerFromContext(ctx).Debug("Saved task graph", "tasks", g.Len(), "next_id", g.NextID())
	return nil
}

// newRenderCache returns the render cache for the configured backend: a
// directory under the user cache dir for the file store, or keys next to
// the graph for the redis store.
func (c *CLI) newRenderCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	if c.cfg.Store.Backend == config.BackendRedis {
		r := c.cfg.Store.Redis
		return cache.NewRedisCache(&redis.Options{
			Addr:     r.Addr,
			Password: r.Password,
			DB:       r.DB,
		}, r.Key+":render:")
	}

	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache()
	}
	fc, err := cache.NewFileCache(filepath.Join(dir, "render"))
	if err != nil {
		c.Logger.Warn("Render cache disabled", "err", err)
		return cache.NewNullCache()
	}
	return fc
}

// cacheDir returns the cache directory using XDG standard (~/.cache/tasktree/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// findTask resolves a task id argument against g.
func findTask(g *taskgraph.Graph, arg string) (*taskgraph.Node, error) {
	id, err := errors.ParseTaskID(arg)
	if err != nil {
		return nil, err
	}
	n, ok := g.Find(id)
	if !ok {
		return nil, errors.New(errors.ErrCodeTaskNotFound, "no task with id %d", id)
	}
	return n, nil
}
