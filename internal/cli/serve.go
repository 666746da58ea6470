package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mazeroute/pkg/config"
	"github.com/matzehuels/mazeroute/pkg/jobs"
	"github.com/matzehuels/mazeroute/pkg/observability"
	"github.com/matzehuels/mazeroute/pkg/observability/prom"
	"github.com/matzehuels/mazeroute/pkg/server"
)

// serveOpts overrides the [server] section of the config file.
type serveOpts struct {
	addr    string
	workers int
	store   string
}

// serveCommand creates the serve command, which runs the HTTP job API.
func (c *CLI) serveCommand() *cobra.Command {
	var opts serveOpts

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the routing HTTP API",
		Long: `Run the routing HTTP API.

Jobs are submitted with POST /v1/jobs and polled with GET /v1/jobs/{id}.
A pool of workers routes them in the background, sharing the result cache
with the CLI. Prometheus metrics are served on /metrics.

Settings come from the [server] section of the config file; flags override
them. With store = "mongo" jobs are kept in MongoDB and survive restarts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "listen address (default from config, :8080)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "number of concurrent routing jobs")
	cmd.Flags().StringVar(&opts.store, "store", "", "job store: memory or mongo")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, opts serveOpts) error {
	cfg := c.Config.Server
	if opts.addr != "" {
		cfg.Addr = opts.addr
	}
	if opts.workers > 0 {
		cfg.Workers = opts.workers
	}
	if opts.store != "" {
		cfg.Store = opts.store
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	store, err := c.newJobStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Close(context.WithoutCancel(ctx))

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	hooks, err := prom.New(reg)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}
	observability.SetRouterHooks(hooks)
	observability.SetPipelineHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetHTTPHooks(hooks)
	defer observability.Reset()

	srv := server.New(server.Config{
		Addr:             cfg.Addr,
		Workers:          cfg.Workers,
		JobBudget:        cfg.JobBudget.Std(),
		MaxRequeues:      c.Config.Router.MaxRequeues,
		CollisionPenalty: c.Config.Router.CollisionPenalty,
		Runner:           runner,
		Store:            store,
		Gatherer:         reg,
		Logger:           c.Logger,
	})

	printInfo("Serving on %s", StyleHighlight.Render(cfg.Addr))
	printNextStep("Submit a job", "curl --data-binary @case.in http://"+dialAddr(cfg.Addr)+"/v1/jobs")

	err = srv.Run(ctx)
	if errors.Is(err, context.Canceled) || (err == nil && ctx.Err() != nil) {
		printSuccess("Server stopped")
		return nil
	}
	return err
}

// newJobStore opens the configured job store.
func (c *CLI) newJobStore(ctx context.Context, cfg config.ServerConfig) (jobs.Store, error) {
	switch cfg.Store {
	case config.StoreMongo:
		store, err := jobs.NewMongoStore(ctx, jobs.MongoConfig{
			URI:      cfg.MongoURI,
			Database: cfg.MongoDatabase,
		})
		if err != nil {
			return nil, fmt.Errorf("open job store: %w", err)
		}
		c.Logger.Info("using mongo job store", "database", cfg.MongoDatabase)
		return store, nil
	case config.StoreMemory, "":
		return jobs.NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("unknown job store %q (want memory or mongo)", cfg.Store)
}

// dialAddr turns a listen address like ":8080" into one a client can use.
func dialAddr(addr string) string {
	if strings.HasPrefix(addr, ":") {
		return "localhost" + addr
	}
	return addr
}
