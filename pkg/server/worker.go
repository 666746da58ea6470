package server

import (
	"context"
	"time"

	apperr "github.com/matzehuels/mazeroute/pkg/errors"
	"github.com/matzehuels/mazeroute/pkg/jobs"
	"github.com/matzehuels/mazeroute/pkg/pipeline"
)

// enqueue hands a job id to the worker pool without blocking.
func (s *Server) enqueue(id string) bool {
	select {
	case s.queue <- id:
		return true
	default:
		return false
	}
}

func (s *Server) resume(ctx context.Context) {
	list, err := s.store.List(ctx, 0)
	if err != nil {
		s.logger.Warn("could not list unfinished jobs", "error", err)
		return
	}
	for _, j := range list {
		if j.Status.Finished() {
			continue
		}
		if !s.enqueue(j.ID) {
			s.logger.Warn("queue full, job not resumed", "job", j.ID)
			continue
		}
		s.logger.Debug("resumed job", "job", j.ID, "status", j.Status)
	}
}

func (s *Server) worker(ctx context.Context, n int) {
	logger := s.logger.With("worker", n)
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-s.queue:
			s.process(ctx, id)
		}
		logger.Debug("idle", "queued", len(s.queue))
	}
}

// process runs one job and records its outcome. The final update uses a
// context that outlives shutdown so a finished job is never lost.
func (s *Server) process(ctx context.Context, id string) {
	if _, busy := s.active.LoadOrStore(id, struct{}{}); busy {
		return
	}
	defer s.active.Delete(id)

	logger := s.logger.With("job", id)
	store := context.WithoutCancel(ctx)

	j, err := s.store.Get(ctx, id)
	if err != nil {
		logger.Error("load job", "error", err)
		return
	}
	if j.Status.Finished() {
		return
	}

	j.Status = jobs.StatusRunning
	j.StartedAt = time.Now().UTC()
	if err := s.store.Update(ctx, j); err != nil {
		logger.Error("mark running", "error", err)
		return
	}
	logger.Info("job started", "source", j.Source, "budget", j.Options.Budget)

	res, err := s.runner.Execute(ctx, pipeline.Options{
		Input:            j.Input,
		Source:           j.Source,
		Budget:           j.Options.Budget,
		MaxRequeues:      j.Options.MaxRequeues,
		CollisionPenalty: j.Options.CollisionPenalty,
		Formats:          []string{pipeline.FormatTXT},
		Logger:           logger,
	})

	if ctx.Err() != nil {
		// Cut off by shutdown: leave it for resume on the next start.
		j.Status = jobs.StatusQueued
		j.StartedAt = time.Time{}
		if err := s.store.Update(store, j); err != nil {
			logger.Error("requeue job", "error", err)
			return
		}
		logger.Info("job requeued on shutdown")
		return
	}

	j.FinishedAt = time.Now().UTC()
	switch {
	case err != nil:
		j.Status = jobs.StatusFailed
		j.Error = apperr.UserMessage(err)
	default:
		j.Status = jobs.StatusDone
		j.Output = res.Artifacts[pipeline.FormatTXT]
		j.Solution = res.Solution
		j.Result = &jobs.Result{
			Cost:     res.Stats.Cost,
			Failed:   res.Stats.Failed,
			Attempts: res.Search.Attempts,
			Fallback: res.Search.Fallback,
			Cached:   res.CacheInfo.RouteHit,
		}
	}

	if err := s.store.Update(store, j); err != nil {
		logger.Error("save job", "error", err)
		return
	}
	logger.Info("job finished", "status", j.Status, "duration", j.FinishedAt.Sub(j.StartedAt))
}
