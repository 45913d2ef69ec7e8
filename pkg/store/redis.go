package store

import (
	"context"
	stderrors "errors"
	"io/fs"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/matzehuels/tasktree/pkg/config"
	"github.com/matzehuels/tasktree/pkg/errors"
	graphio "github.com/matzehuels/tasktree/pkg/io"
	"github.com/matzehuels/tasktree/pkg/taskgraph"
)

// Redis stores the graph as one JSON document under a single key.
type Redis struct {
	client *backend.Client
	key    string
	opts   Options
}

// NewRedis creates a redis store from cfg.
func NewRedis(cfg config.RedisConfig, opts Options) *Redis {
	client := backend.NewClient(&backend.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisFromClient(client, cfg.Key, opts)
}

// NewRedisFromClient creates a redis store from an existing client.
func NewRedisFromClient(client *backend.Client, key string, opts Options) *Redis {
	return &Redis{client: client, key: key, opts: opts}
}

// Load fetches and decodes the graph document.
func (s *Redis) Load(ctx context.Context) (g *taskgraph.Graph, err error) {
	start := time.Now()
	defer func() { reportLoad(ctx, "redis", start, g, err) }()

	data, err := s.client.Get(ctx, s.key).Bytes()
	if stderrors.Is(err, backend.Nil) {
		return notFound(fs.ErrNotExist, "redis key "+s.key, s.opts)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStoreUnavailable, err, "get %s", s.key)
	}
	return graphio.Unmarshal(data)
}

// Save encodes the graph and replaces the document in one SET.
func (s *Redis) Save(ctx context.Context, g *taskgraph.Graph) (err error) {
	start := time.Now()
	defer func() { reportSave(ctx, "redis", start, g, err) }()

	data, err := graphio.Marshal(g)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStoreUnavailable, err, "set %s", s.key)
	}
	return nil
}

// Close closes the underlying client.
func (s *Redis) Close() error { return s.client.Close() }

var _ Store = (*Redis)(nil)
