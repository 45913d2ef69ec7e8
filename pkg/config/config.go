// Package config loads tasktree settings from a TOML file.
//
// The file is optional. Every field has a default, and the CLI overrides
// individual values with flags after loading:
//
//	[store]
//	backend = "file"                 # "file" or "redis"
//	file = "~/.local/share/tasktree/graph.json"
//
//	[store.redis]
//	addr = "localhost:6379"
//	key = "tasktree:graph"
//
//	[render]
//	done_color = "green"
//	open_color = "red"
//
//	[server]
//	addr = ":8080"
//
// Unknown keys are rejected so typos do not silently fall back to defaults.
package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	terrors "github.com/matzehuels/tasktree/pkg/errors"
)

const appName = "tasktree"

// Store backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Config is the full set of tasktree settings.
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Render RenderConfig `toml:"render"`
	Server ServerConfig `toml:"server"`
}

// StoreConfig selects and configures the graph store.
type StoreConfig struct {
	Backend string      `toml:"backend"`
	File    string      `toml:"file"`
	Redis   RedisConfig `toml:"redis"`
}

// RedisConfig configures the redis snapshot store.
type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Key      string `toml:"key"`
}

// RenderConfig configures node-link diagrams.
type RenderConfig struct {
	DoneColor   string `toml:"done_color"`
	OpenColor   string `toml:"open_color"`
	LeftToRight bool   `toml:"left_to_right"`
}

// ServerConfig configures the read-only HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Store: StoreConfig{
			Backend: BackendFile,
			File:    filepath.Join(dataDir(), "graph.json"),
			Redis: RedisConfig{
				Addr: "localhost:6379",
				Key:  appName + ":graph",
			},
		},
		Render: RenderConfig{
			DoneColor: "green",
			OpenColor: "red",
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Load reads the TOML file at path on top of [Default].
// A missing file is not an error; Load then returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, terrors.Wrap(terrors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, terrors.New(terrors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	cfg.Store.File = expandHome(cfg.Store.File)
	return cfg, cfg.Validate()
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	switch c.Store.Backend {
	case BackendFile:
		if c.Store.File == "" {
			return terrors.New(terrors.ErrCodeInvalidInput, "store.file must be set for the file backend")
		}
	case BackendRedis:
		if c.Store.Redis.Addr == "" || c.Store.Redis.Key == "" {
			return terrors.New(terrors.ErrCodeInvalidInput, "store.redis.addr and store.redis.key must be set for the redis backend")
		}
	default:
		return terrors.New(terrors.ErrCodeInvalidInput, "unknown store backend %q (want %q or %q)", c.Store.Backend, BackendFile, BackendRedis)
	}
	return nil
}

// DefaultPath returns the config file location using the XDG standard
// (~/.config/tasktree/config.toml).
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", appName+".toml")
	}
	return filepath.Join(home, ".config", appName, "config.toml")
}

// dataDir returns the data directory using the XDG standard (~/.local/share/tasktree/).
func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", appName)
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
