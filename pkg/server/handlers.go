package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mazeroute/pkg/cache"
	apperr "github.com/matzehuels/mazeroute/pkg/errors"
	gridio "github.com/matzehuels/mazeroute/pkg/io"
	"github.com/matzehuels/mazeroute/pkg/jobs"
	"github.com/matzehuels/mazeroute/pkg/pipeline"
)

const defaultListLimit = 50

// jobRequest is the JSON form of a job submission. A text body carries the
// input directly, with the other fields as query parameters.
type jobRequest struct {
	Input            string `json:"input"`
	Source           string `json:"source,omitempty"`
	Budget           string `json:"budget,omitempty"`
	MaxRequeues      int    `json:"max_requeues,omitempty"`
	CollisionPenalty int    `json:"collision_penalty,omitempty"`
}

var contentTypes = map[string]string{
	pipeline.FormatTXT:  "text/plain; charset=utf-8",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatDOT:  "text/vnd.graphviz",
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
}

func (s *Server) createJob(w http.ResponseWriter, r *http.Request) {
	req, err := s.decodeJobRequest(w, r)
	if err != nil {
		s.writeError(w, err)
		return
	}

	if _, err := gridio.ReadInput(bytes.NewReader([]byte(req.Input))); err != nil {
		s.writeError(w, err)
		return
	}
	opts, err := s.jobOptions(req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if req.Source == "" {
		req.Source = "request"
	}

	j := jobs.New(req.Source, []byte(req.Input), opts)
	if err := s.store.Create(r.Context(), j); err != nil {
		s.writeError(w, err)
		return
	}
	if !s.enqueue(j.ID) {
		j.Status = jobs.StatusFailed
		j.Error = "job queue is full"
		j.FinishedAt = time.Now().UTC()
		if err := s.store.Update(r.Context(), j); err != nil {
			s.logger.Error("save rejected job", "job", j.ID, "error", err)
		}
		s.writeJSONError(w, http.StatusServiceUnavailable, "", j.Error)
		return
	}

	s.logger.Debug("job queued", "job", j.ID, "bytes", len(j.Input))
	w.Header().Set("Location", "/v1/jobs/"+j.ID)
	s.writeJSON(w, http.StatusAccepted, j)
}

func (s *Server) decodeJobRequest(w http.ResponseWriter, r *http.Request) (jobRequest, error) {
	var req jobRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxInput))
	if err != nil {
		return req, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "read body")
	}

	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mt == "application/json" {
		if err := json.Unmarshal(body, &req); err != nil {
			return req, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "decode request")
		}
	} else {
		q := r.URL.Query()
		req.Input = string(body)
		req.Source = q.Get("source")
		req.Budget = q.Get("budget")
		if req.MaxRequeues, err = queryInt(q.Get("max_requeues")); err != nil {
			return req, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "max_requeues")
		}
		if req.CollisionPenalty, err = queryInt(q.Get("collision_penalty")); err != nil {
			return req, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "collision_penalty")
		}
	}

	if len(req.Input) == 0 {
		return req, apperr.New(apperr.ErrCodeInvalidInput, "input is required")
	}
	return req, nil
}

// jobOptions fills unset fields from the server config and caps the budget
// at JobBudget.
func (s *Server) jobOptions(req jobRequest) (jobs.Options, error) {
	opts := jobs.Options{
		Budget:           s.cfg.JobBudget,
		MaxRequeues:      req.MaxRequeues,
		CollisionPenalty: req.CollisionPenalty,
	}
	if req.Budget != "" {
		d, err := time.ParseDuration(req.Budget)
		if err != nil || d <= 0 {
			return opts, apperr.New(apperr.ErrCodeInvalidInput, "invalid budget %q", req.Budget)
		}
		opts.Budget = min(d, s.cfg.JobBudget)
	}
	if req.CollisionPenalty < 0 {
		return opts, apperr.New(apperr.ErrCodeInvalidInput, "collision_penalty must not be negative")
	}
	if opts.MaxRequeues == 0 {
		opts.MaxRequeues = s.cfg.MaxRequeues
	}
	if opts.CollisionPenalty == 0 {
		opts.CollisionPenalty = s.cfg.CollisionPenalty
	}
	return opts, nil
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	limit := defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeJSONError(w, http.StatusBadRequest, apperr.ErrCodeInvalidInput, "invalid 'limit' parameter")
			return
		}
		limit = n
	}

	list, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	for _, j := range list {
		j.Solution = nil
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) getJob(w http.ResponseWriter, r *http.Request) {
	j, err := s.lookup(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, j)
}

func (s *Server) jobOutput(w http.ResponseWriter, r *http.Request) {
	j, ok := s.finishedJob(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatTXT])
	_, _ = w.Write(j.Output)
}

func (s *Server) renderJob(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, err)
		return
	}
	j, ok := s.finishedJob(w, r)
	if !ok {
		return
	}
	if j.Solution == nil {
		s.writeError(w, fmt.Errorf("job %s has no solution", j.ID))
		return
	}

	g, err := gridio.ReadInput(bytes.NewReader(j.Input))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := gridio.ApplySolution(g, j.Solution); err != nil {
		s.writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := gridio.WriteJSON(j.Solution, &buf); err != nil {
		s.writeError(w, err)
		return
	}

	artifacts, _, err := s.runner.RenderWithCacheInfo(r.Context(), g, cache.Hash(buf.Bytes()), pipeline.Options{
		Formats: []string{format},
		Labels:  r.URL.Query().Get("labels") == "true",
		Logger:  s.logger,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	_, _ = w.Write(artifacts[format])
}

func (s *Server) lookup(r *http.Request) (*jobs.Job, error) {
	id := chi.URLParam(r, "id")
	j, err := s.store.Get(r.Context(), id)
	if errors.Is(err, jobs.ErrNotFound) {
		return nil, apperr.Wrap(apperr.ErrCodeNotFound, err, "job %s", id)
	}
	return j, err
}

// finishedJob loads the job and writes an error response unless it is done.
func (s *Server) finishedJob(w http.ResponseWriter, r *http.Request) (*jobs.Job, bool) {
	j, err := s.lookup(r)
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	switch j.Status {
	case jobs.StatusDone:
		return j, true
	case jobs.StatusFailed:
		s.writeJSONError(w, http.StatusUnprocessableEntity, "", "job failed: "+j.Error)
	default:
		s.writeJSONError(w, http.StatusConflict, "", "job is "+string(j.Status))
	}
	return nil, false
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("write response", "error", err)
	}
}

func (s *Server) writeJSONError(w http.ResponseWriter, status int, code apperr.Code, msg string) {
	body := map[string]string{"error": msg}
	if code != "" {
		body["code"] = string(code)
	}
	s.writeJSON(w, status, body)
}

// writeError maps coded errors to HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := apperr.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidFormat, apperr.ErrCodeInvalidConfig:
		status = http.StatusBadRequest
	case apperr.ErrCodeNotFound:
		status = http.StatusNotFound
	}

	msg := apperr.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		msg = "internal error"
	}
	s.writeJSONError(w, status, code, msg)
}

func queryInt(v string) (int, error) {
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}
