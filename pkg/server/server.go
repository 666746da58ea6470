// Package server exposes the router as an HTTP job service.
//
// Clients submit a routing problem and poll for the result:
//
//	POST /v1/jobs                      submit input (text body or JSON), 202 + job
//	GET  /v1/jobs                      list recent jobs
//	GET  /v1/jobs/{id}                 job status, summary and solution
//	GET  /v1/jobs/{id}/output          routed nets in the text output format
//	GET  /v1/jobs/{id}/render/{format} dot, svg, png, pdf or json artifact
//	GET  /healthz                      liveness
//	GET  /metrics                      Prometheus metrics, when configured
//
// A fixed pool of workers drains the job queue. Each job runs through the
// shared [pipeline.Runner], so repeated inputs are served from the cache.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/mazeroute/pkg/jobs"
	"github.com/matzehuels/mazeroute/pkg/pipeline"
)

// Defaults for unset Config fields.
const (
	DefaultWorkers   = 4
	DefaultQueueSize = 64
	DefaultJobBudget = 30 * time.Second
	DefaultMaxInput  = 8 << 20

	shutdownTimeout = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	// Addr is the listen address for Run.
	Addr string

	// Workers is the number of concurrent routing jobs.
	Workers int

	// QueueSize bounds the number of accepted but unstarted jobs.
	QueueSize int

	// JobBudget is the default and maximum search budget of a job.
	JobBudget time.Duration

	// MaxInput limits the request body size in bytes.
	MaxInput int64

	// MaxRequeues and CollisionPenalty apply to jobs that do not set them.
	MaxRequeues      int
	CollisionPenalty int

	Runner *pipeline.Runner
	Store  jobs.Store

	// Gatherer, when set, is served on /metrics.
	Gatherer prometheus.Gatherer

	Logger *log.Logger
}

// Server is the HTTP job service.
type Server struct {
	cfg    Config
	runner *pipeline.Runner
	store  jobs.Store
	logger *log.Logger
	queue  chan string
	active sync.Map // ids of jobs being processed
	router chi.Router
}

// New creates a server. A nil Runner gets an uncached one; a nil Store an
// in-memory one.
func New(cfg Config) *Server {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultWorkers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultQueueSize
	}
	if cfg.JobBudget <= 0 {
		cfg.JobBudget = DefaultJobBudget
	}
	if cfg.MaxInput <= 0 {
		cfg.MaxInput = DefaultMaxInput
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	if cfg.Store == nil {
		cfg.Store = jobs.NewMemoryStore()
	}

	s := &Server{
		cfg:    cfg,
		runner: cfg.Runner,
		store:  cfg.Store,
		logger: cfg.Logger,
		queue:  make(chan string, cfg.QueueSize),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.cfg.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/v1/jobs", func(r chi.Router) {
		r.Post("/", s.createJob)
		r.Get("/", s.listJobs)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.getJob)
			r.Get("/output", s.jobOutput)
			r.Get("/render/{format}", s.renderJob)
		})
	})
	return r
}

// Handler returns the HTTP handler. Jobs accepted through it only run while
// [Server.Work] or [Server.Run] is active.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP on cfg.Addr and runs the worker pool until ctx is done,
// then shuts the listener down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Work(ctx)
	})
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.cfg.Addr, "workers", s.cfg.Workers)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", s.cfg.Addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(sctx)
	})
	return g.Wait()
}

// Work runs the worker pool until ctx is done. Jobs left queued or running
// in the store by a previous process are enqueued again first.
func (s *Server) Work(ctx context.Context) error {
	s.resume(ctx)

	g, ctx := errgroup.WithContext(ctx)
	for i := range s.cfg.Workers {
		g.Go(func() error {
			s.worker(ctx, i)
			return nil
		})
	}
	return g.Wait()
}
