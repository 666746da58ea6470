package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mazeroute/pkg/cache"
	apperr "github.com/matzehuels/mazeroute/pkg/errors"
	"github.com/matzehuels/mazeroute/pkg/route"
)

const crossing = `.row 3
.col 7
.block 0
.net 2
a 3 0 3 2
b 1 1 5 1
`

// memCache is an in-memory cache.Cache for tests.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache { return &memCache{data: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *memCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *memCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *memCache) Close() error { return nil }

var _ cache.Cache = (*memCache)(nil)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"txt", false},
		{"json", false},
		{"dot", false},
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"txt", "svg"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateForRenderRejectsDuplicates(t *testing.T) {
	opts := Options{Formats: []string{"txt", "svg", "txt"}}
	err := opts.ValidateForRender()
	if !apperr.Is(err, apperr.ErrCodeInvalidFormat) {
		t.Errorf("duplicate formats should fail with INVALID_FORMAT, got %v", err)
	}
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Input: []byte(crossing)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Valid options should pass: %v", err)
	}

	if opts.Budget != route.DefaultBudget {
		t.Errorf("Budget should be %s, got %s", route.DefaultBudget, opts.Budget)
	}
	if opts.MaxRequeues != route.DefaultMaxRequeues {
		t.Errorf("MaxRequeues should be %d, got %d", route.DefaultMaxRequeues, opts.MaxRequeues)
	}
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatTXT {
		t.Errorf("Formats should be [txt], got %v", opts.Formats)
	}
	if opts.Source != "input" || opts.Logger == nil {
		t.Errorf("Source and Logger should be defaulted: %q %v", opts.Source, opts.Logger)
	}
}

func TestOptionsValidateForParse(t *testing.T) {
	opts := Options{}
	err := opts.ValidateForParse()
	if !apperr.Is(err, apperr.ErrCodeInvalidInput) {
		t.Errorf("Missing input should fail with INVALID_INPUT, got %v", err)
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Input: []byte(crossing), MaxRequeues: -1}

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("First validation failed: %v", err)
	}
	first := opts.RouteKeyOpts()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("Second validation failed: %v", err)
	}
	if opts.RouteKeyOpts() != first {
		t.Error("route options changed on second call")
	}
	if opts.MaxRequeues != -1 {
		t.Error("negative MaxRequeues should be kept")
	}
}

func TestExecute(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Input:   []byte(crossing),
		Formats: []string{FormatTXT, FormatJSON, FormatDOT},
	})
	require.NoError(t, err)

	assert.Equal(t, 2, res.Stats.Nets)
	assert.Zero(t, res.Stats.Failed)
	assert.Equal(t, 10, res.Stats.Cost)
	assert.Equal(t, 2, res.Search.Attempts)
	assert.False(t, res.CacheInfo.RouteHit)
	assert.False(t, res.CacheInfo.RenderHit)
	assert.Len(t, res.InputHash, 64)
	assert.Len(t, res.SolutionHash, 64)

	txt := string(res.Artifacts[FormatTXT])
	assert.True(t, strings.HasPrefix(txt, "a "), txt)
	assert.Contains(t, txt, "b 1\nbegin\n1 1 5 1\nend\n")

	var sol map[string]any
	require.NoError(t, json.Unmarshal(res.Artifacts[FormatJSON], &sol))
	assert.Equal(t, true, sol["complete"])
	assert.Equal(t, float64(10), sol["cost"])

	assert.Contains(t, string(res.Artifacts[FormatDOT]), "graph G {")
}

func TestExecuteCacheHit(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	opts := Options{Input: []byte(crossing), Formats: []string{FormatTXT}}

	first, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	require.Equal(t, 2, c.sets, "route and render entries")

	second, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.True(t, second.CacheInfo.RouteHit)
	assert.True(t, second.CacheInfo.RenderHit)
	assert.Zero(t, second.Search.Attempts)
	assert.Equal(t, first.Artifacts, second.Artifacts)
	assert.Equal(t, first.SolutionHash, second.SolutionHash)
	assert.Equal(t, first.Grid.Nets(), second.Grid.Nets())
}

func TestExecuteDifferentOptionsMiss(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)

	_, err := r.Execute(context.Background(), Options{Input: []byte(crossing)})
	require.NoError(t, err)

	res, err := r.Execute(context.Background(), Options{Input: []byte(crossing), CollisionPenalty: 5})
	require.NoError(t, err)
	assert.False(t, res.CacheInfo.RouteHit)
}

func TestExecuteRefresh(t *testing.T) {
	r := NewRunner(newMemCache(), nil, nil)
	opts := Options{Input: []byte(crossing)}

	_, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)

	opts.Refresh = true
	res, err := r.Execute(context.Background(), opts)
	require.NoError(t, err)
	assert.False(t, res.CacheInfo.RouteHit)
	assert.Equal(t, 2, res.Search.Attempts)
}

func TestExecuteCanceledIsNotCached(t *testing.T) {
	c := newMemCache()
	r := NewRunner(c, nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := r.Execute(ctx, Options{Input: []byte(crossing)})
	require.NoError(t, err)
	assert.True(t, res.Search.Fallback)
	assert.NotNil(t, res.Artifacts[FormatTXT])

	res, err = r.Execute(context.Background(), Options{Input: []byte(crossing)})
	require.NoError(t, err)
	assert.False(t, res.CacheInfo.RouteHit)
}

func TestExecuteInvalidInput(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	_, err := r.Execute(context.Background(), Options{Input: []byte(".row 3 .col")})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ErrCodeInvalidInput))
}

func TestExecuteUnroutableNetIsReported(t *testing.T) {
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Input: []byte(".row 3 .col 3 .block 1 0 2 1 1 .net 1 w 0 0 0 2"),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Stats.Failed)
	assert.Equal(t, "w FAILED\n", string(res.Artifacts[FormatTXT]))
}

func TestExecuteProgress(t *testing.T) {
	var events int
	r := NewRunner(nil, nil, nil)
	res, err := r.Execute(context.Background(), Options{
		Input:    []byte(crossing),
		Progress: func(route.Event) { events++ },
	})
	require.NoError(t, err)
	assert.Equal(t, res.Search.Attempts, events)
}
