// Package config loads router settings from a TOML file.
//
// The file is optional. [Load] looks at $ROUTER_CONFIG first, then
// $XDG_CONFIG_HOME/mazeroute/config.toml (or the platform's user config
// directory); when neither exists the built-in [Default] applies. Values
// present in the file override the defaults one by one:
//
//	[router]
//	collision_penalty = 20
//	max_requeues = 10000
//
//	[cache]
//	backend = "file"      # file, redis or none
//	ttl = "168h"
//	prefix = "mazeroute:v1:"
//
//	[server]
//	addr = ":8080"
//	workers = 4
//	job_budget = "30s"
//	store = "memory"      # memory or mongo
//
//	[log]
//	level = "info"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mazeroute/pkg/cache"
	apperr "github.com/matzehuels/mazeroute/pkg/errors"
	"github.com/matzehuels/mazeroute/pkg/maze"
	"github.com/matzehuels/mazeroute/pkg/route"
)

// EnvPath names the environment variable holding an explicit config path.
const EnvPath = "ROUTER_CONFIG"

// Config is the full set of file-backed settings.
type Config struct {
	Router RouterConfig `toml:"router"`
	Cache  CacheConfig  `toml:"cache"`
	Server ServerConfig `toml:"server"`
	Log    LogConfig    `toml:"log"`
}

// RouterConfig tunes the rip-up-and-reroute loop. The search budget of the
// CLI is fixed and not configurable here.
type RouterConfig struct {
	CollisionPenalty int `toml:"collision_penalty"`
	MaxRequeues      int `toml:"max_requeues"`
}

// CacheConfig selects the result cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend"`
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	TTL       Duration `toml:"ttl"`
	Prefix    string   `toml:"prefix"`
}

// ServerConfig configures the HTTP job service.
type ServerConfig struct {
	Addr          string   `toml:"addr"`
	Workers       int      `toml:"workers"`
	JobBudget     Duration `toml:"job_budget"`
	Store         string   `toml:"store"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
}

// LogConfig sets the default log level. The -v flag still forces debug.
type LogConfig struct {
	Level string `toml:"level"`
}

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Job stores.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
)

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Router: RouterConfig{
			CollisionPenalty: maze.DefaultCollisionPenalty,
			MaxRequeues:      route.DefaultMaxRequeues,
		},
		Cache: CacheConfig{
			Backend:   BackendFile,
			RedisAddr: "localhost:6379",
			TTL:       Duration(7 * 24 * time.Hour),
			Prefix:    cache.DefaultKeyPrefix,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			Workers:       4,
			JobBudget:     Duration(30 * time.Second),
			Store:         StoreMemory,
			MongoURI:      "mongodb://localhost:27017",
			MongoDatabase: "mazeroute",
		},
		Log: LogConfig{Level: "info"},
	}
}

// RouteOptions converts the router section into search options with the
// given budget.
func (c Config) RouteOptions(budget time.Duration) route.Options {
	return route.Options{
		Budget:           budget,
		MaxRequeues:      c.Router.MaxRequeues,
		CollisionPenalty: c.Router.CollisionPenalty,
	}
}

// Validate rejects unknown enum values and out-of-range numbers.
func (c Config) Validate() error {
	if c.Router.CollisionPenalty < 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "router.collision_penalty must not be negative")
	}
	switch c.Cache.Backend {
	case BackendFile, BackendRedis, BackendNone:
	default:
		return apperr.New(apperr.ErrCodeInvalidConfig, "cache.backend %q: want file, redis or none", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}
	if c.Server.Workers <= 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "server.workers must be positive")
	}
	if c.Server.JobBudget <= 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "server.job_budget must be positive")
	}
	switch c.Server.Store {
	case StoreMemory, StoreMongo:
	default:
		return apperr.New(apperr.ErrCodeInvalidConfig, "server.store %q: want memory or mongo", c.Server.Store)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return apperr.New(apperr.ErrCodeInvalidConfig, "log.level %q: want debug, info, warn or error", c.Log.Level)
	}
	return nil
}

// Path returns the config file location Load would read, and whether it
// was set explicitly through EnvPath.
func Path() (string, bool) {
	if p := os.Getenv(EnvPath); p != "" {
		return p, true
	}
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		var err error
		if dir, err = os.UserConfigDir(); err != nil {
			return "", false
		}
	}
	return filepath.Join(dir, "mazeroute", "config.toml"), false
}

// Load reads the config file from [Path]. A missing default file yields
// [Default]; a missing explicit file is an error.
func Load() (Config, error) {
	path, explicit := Path()
	if path == "" {
		return Default(), nil
	}
	cfg, err := LoadFile(path)
	if !explicit && errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads the config file at path over the defaults.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Default(), fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML data over the defaults and validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Default(), apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "parse config")
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Default(), apperr.New(apperr.ErrCodeInvalidConfig, "unknown config key %q", undec[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}
