package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mazeroute/pkg/jobs"
	"github.com/matzehuels/mazeroute/pkg/observability"
	"github.com/matzehuels/mazeroute/pkg/observability/prom"
)

const crossing = `.row 3
.col 7
.block 0
.net 2
a 3 0 3 2
b 1 1 5 1
`

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// startServer serves s over httptest and runs its workers until the test ends.
func startServer(t *testing.T, cfg Config) (*Server, *httptest.Server) {
	t.Helper()
	if cfg.Logger == nil {
		cfg.Logger = quietLogger()
	}
	s := New(cfg)
	ts := httptest.NewServer(s.Handler())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Work(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		ts.Close()
		cancel()
		<-done
	})
	return s, ts
}

func submit(t *testing.T, ts *httptest.Server, contentType, body string) (*http.Response, jobs.Job) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/jobs", contentType, strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	var j jobs.Job
	if resp.StatusCode == http.StatusAccepted {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&j))
	}
	return resp, j
}

func getJSON(t *testing.T, url string, v any) int {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if v != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
	}
	return resp.StatusCode
}

func waitDone(t *testing.T, ts *httptest.Server, id string) jobs.Job {
	t.Helper()
	var j jobs.Job
	require.Eventually(t, func() bool {
		j = jobs.Job{}
		getJSON(t, ts.URL+"/v1/jobs/"+id, &j)
		return j.Status.Finished()
	}, 5*time.Second, 10*time.Millisecond)
	return j
}

func TestJobLifecycle(t *testing.T) {
	_, ts := startServer(t, Config{})

	resp, j := submit(t, ts, "text/plain", crossing)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "/v1/jobs/"+j.ID, resp.Header.Get("Location"))
	assert.Equal(t, jobs.StatusQueued, j.Status)
	assert.Equal(t, DefaultJobBudget, j.Options.Budget)

	done := waitDone(t, ts, j.ID)
	require.Equal(t, jobs.StatusDone, done.Status, done.Error)
	require.NotNil(t, done.Result)
	assert.Equal(t, 10, done.Result.Cost)
	assert.Zero(t, done.Result.Failed)
	assert.Equal(t, 2, done.Result.Attempts)
	require.NotNil(t, done.Solution)
	assert.True(t, done.Solution.Complete)
	assert.False(t, done.FinishedAt.IsZero())

	out, err := http.Get(ts.URL + "/v1/jobs/" + j.ID + "/output")
	require.NoError(t, err)
	defer out.Body.Close()
	body, _ := io.ReadAll(out.Body)
	assert.Equal(t, http.StatusOK, out.StatusCode)
	assert.Contains(t, string(body), "b 1\nbegin\n1 1 5 1\nend\n")
}

func TestJobJSONRequest(t *testing.T) {
	_, ts := startServer(t, Config{JobBudget: time.Minute})

	req, _ := json.Marshal(jobRequest{Input: crossing, Source: "crossing.in", Budget: "2h", CollisionPenalty: 5})
	resp, j := submit(t, ts, "application/json", string(req))
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, "crossing.in", j.Source)
	assert.Equal(t, time.Minute, j.Options.Budget, "budget is capped")
	assert.Equal(t, 5, j.Options.CollisionPenalty)

	assert.Equal(t, jobs.StatusDone, waitDone(t, ts, j.ID).Status)
}

func TestJobUnroutableNet(t *testing.T) {
	_, ts := startServer(t, Config{})

	_, j := submit(t, ts, "text/plain", ".row 3 .col 3 .block 1 0 2 1 1 .net 1 w 0 0 0 2")
	done := waitDone(t, ts, j.ID)
	require.Equal(t, jobs.StatusDone, done.Status)
	assert.Equal(t, 1, done.Result.Failed)
	assert.True(t, done.Result.Fallback)
}

func TestCreateJobRejectsBadRequests(t *testing.T) {
	_, ts := startServer(t, Config{})

	tests := []struct {
		name        string
		contentType string
		path        string
		body        string
	}{
		{"empty body", "text/plain", "", ""},
		{"malformed input", "text/plain", "", ".row 3 .col"},
		{"bad json", "application/json", "", "{"},
		{"bad budget", "text/plain", "?budget=soon", crossing},
		{"negative budget", "text/plain", "?budget=-1s", crossing},
		{"bad requeues", "text/plain", "?max_requeues=x", crossing},
		{"negative penalty", "text/plain", "?collision_penalty=-3", crossing},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(ts.URL+"/v1/jobs"+tt.path, tt.contentType, strings.NewReader(tt.body))
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

			var body map[string]string
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "INVALID_INPUT", body["code"])
		})
	}
}

func TestUnknownJob(t *testing.T) {
	_, ts := startServer(t, Config{})

	var body map[string]string
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/v1/jobs/nope", &body))
	assert.Equal(t, "NOT_FOUND", body["code"])
	assert.Equal(t, http.StatusNotFound, getJSON(t, ts.URL+"/v1/jobs/nope/output", nil))
}

func TestOutputBeforeDone(t *testing.T) {
	store := jobs.NewMemoryStore()
	s := New(Config{Store: store, Logger: quietLogger()})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	// No workers run, so the job stays queued.
	_, j := submit(t, ts, "text/plain", crossing)
	assert.Equal(t, http.StatusConflict, getJSON(t, ts.URL+"/v1/jobs/"+j.ID+"/output", nil))

	failed := jobs.New("x", []byte(crossing), jobs.Options{})
	failed.Status = jobs.StatusFailed
	failed.Error = "boom"
	require.NoError(t, store.Create(context.Background(), failed))
	var body map[string]string
	assert.Equal(t, http.StatusUnprocessableEntity, getJSON(t, ts.URL+"/v1/jobs/"+failed.ID+"/output", &body))
	assert.Equal(t, "job failed: boom", body["error"])
}

func TestQueueFull(t *testing.T) {
	s := New(Config{QueueSize: 1, Logger: quietLogger()})
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, _ := submit(t, ts, "text/plain", crossing)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp, _ = submit(t, ts, "text/plain", crossing)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	list, err := s.store.List(context.Background(), 0)
	require.NoError(t, err)
	statuses := []jobs.Status{list[0].Status, list[1].Status}
	assert.ElementsMatch(t, []jobs.Status{jobs.StatusQueued, jobs.StatusFailed}, statuses)
}

func TestResumeUnfinishedJobs(t *testing.T) {
	store := jobs.NewMemoryStore()
	pending := jobs.New("pending", []byte(crossing), jobs.Options{Budget: time.Second})
	pending.Status = jobs.StatusRunning
	require.NoError(t, store.Create(context.Background(), pending))

	_, ts := startServer(t, Config{Store: store})
	assert.Equal(t, jobs.StatusDone, waitDone(t, ts, pending.ID).Status)
}

func TestShutdownLeavesJobQueued(t *testing.T) {
	store := jobs.NewMemoryStore()
	j := jobs.New("interrupted", []byte(crossing), jobs.Options{Budget: time.Second})
	require.NoError(t, store.Create(context.Background(), j))

	s := New(Config{Store: store, Logger: quietLogger()})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s.process(ctx, j.ID)

	got, err := store.Get(context.Background(), j.ID)
	require.NoError(t, err)
	assert.Equal(t, jobs.StatusQueued, got.Status)
	assert.False(t, got.Status.Finished())
	assert.Empty(t, got.Error)
	assert.Nil(t, got.Result)
	assert.True(t, got.FinishedAt.IsZero())

	_, ts := startServer(t, Config{Store: store})
	assert.Equal(t, jobs.StatusDone, waitDone(t, ts, j.ID).Status)
}

func TestListJobs(t *testing.T) {
	_, ts := startServer(t, Config{})
	for range 3 {
		submit(t, ts, "text/plain", crossing)
	}

	var list []jobs.Job
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/jobs?limit=2", &list))
	assert.Len(t, list, 2)
	for _, j := range list {
		assert.Nil(t, j.Solution)
	}
	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/v1/jobs?limit=0", nil))
}

func TestRenderJob(t *testing.T) {
	_, ts := startServer(t, Config{})
	_, j := submit(t, ts, "text/plain", crossing)
	waitDone(t, ts, j.ID)

	resp, err := http.Get(ts.URL + "/v1/jobs/" + j.ID + "/render/dot?labels=true")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/vnd.graphviz", resp.Header.Get("Content-Type"))
	assert.Contains(t, string(body), "graph G {")

	var sol map[string]any
	assert.Equal(t, http.StatusOK, getJSON(t, ts.URL+"/v1/jobs/"+j.ID+"/render/json", &sol))
	assert.Equal(t, float64(10), sol["cost"])

	assert.Equal(t, http.StatusBadRequest, getJSON(t, ts.URL+"/v1/jobs/"+j.ID+"/render/gif", nil))
}

func TestHealthAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	hooks, err := prom.New(reg)
	require.NoError(t, err)
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	_, ts := startServer(t, Config{Gatherer: reg})

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), `router_http_requests_total{code="200",method="GET",route="/healthz"} 1`)
}

func TestServerMetricsDisabled(t *testing.T) {
	_, ts := startServer(t, Config{})
	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
