// Package cli implements the router command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mazeroute/pkg/buildinfo"
	"github.com/matzehuels/mazeroute/pkg/cache"
	"github.com/matzehuels/mazeroute/pkg/config"
	"github.com/matzehuels/mazeroute/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "mazeroute"

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
	Config config.Config
}

// New creates a new CLI instance with a default logger and the built-in
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// LoadConfig reads the configuration file and applies its log level.
// verbose forces debug logging.
func (c *CLI) LoadConfig(verbose bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	c.Config = cfg

	level := LogInfo
	if lvl, err := log.ParseLevel(cfg.Log.Level); err == nil {
		level = lvl
	}
	if verbose {
		level = LogDebug
	}
	c.SetLogLevel(level)
	return nil
}

// loadConfigOrDefault is LoadConfig for the bare route command, which must
// always produce an output file: a broken config file only warns.
func (c *CLI) loadConfigOrDefault(verbose bool) {
	if err := c.LoadConfig(verbose); err != nil {
		c.Logger.Warn("ignoring config, using defaults", "error", err)
		c.Config = config.Default()
		if verbose {
			c.SetLogLevel(LogDebug)
		}
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
// Invoked with two arguments it routes an input file into an output file.
func (c *CLI) RootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "router <input_file> <output_file>",
		Short: "Route two-pin nets through a blocked grid",
		Long: `router connects each net's source and target pins through a grid with
obstacles, so that no two nets share a cell, while keeping the total number
of used cells small.

The input file lists the grid size, the blocked rectangles and the nets.
The output file lists each net's path as straight segments, or FAILED for
nets that could not be routed.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		Args:         cobra.ExactArgs(2),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.HasParent() {
				c.loadConfigOrDefault(verbose)
				return nil
			}
			return c.LoadConfig(verbose)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRoute(cmd.Context(), args[0], args[1])
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	// Register all subcommands
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	var keyer cache.Keyer
	if p := c.Config.Cache.Prefix; p != "" {
		keyer = cache.NewScopedKeyer(nil, p)
	}
	return pipeline.NewRunner(backend, keyer, c.Logger), nil
}

// newCache opens the configured cache backend. An unreachable Redis server
// degrades to no caching rather than failing the command.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}

	var (
		backend cache.Cache
		err     error
	)
	switch cfg.Backend {
	case config.BackendRedis:
		backend, err = cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.RedisAddr, "error", err)
			return cache.NewNullCache(), nil
		}
	default:
		dir, derr := c.cacheDir()
		if derr != nil {
			return cache.NewNullCache(), nil
		}
		backend, err = cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
	}
	return cache.WithTTL(backend, cfg.TTL.Std()), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the per-user default
// (~/.cache/mazeroute on Linux).
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cache.DefaultDir()
}
