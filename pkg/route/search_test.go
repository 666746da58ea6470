package route

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/mazeroute/pkg/maze"
	"github.com/matzehuels/mazeroute/pkg/observability"
	"github.com/matzehuels/mazeroute/pkg/perm"
)

func TestBaseOrderByHPWL(t *testing.T) {
	g := newGrid(t, 10, 10,
		[4]int{0, 0, 5, 5}, // 10
		[4]int{0, 1, 2, 1}, // 2
		[4]int{9, 9, 6, 9}, // 3
		[4]int{1, 8, 3, 8}, // 2
	)
	assert.Equal(t, []int{1, 3, 2, 0}, BaseOrder(g))
}

func TestSearchCrossing(t *testing.T) {
	g := crossing(t)

	res := Search{}.Run(context.Background(), g)
	require.True(t, res.Complete)
	assert.False(t, res.Fallback)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, 2, res.Succeeded)
	assert.Equal(t, 10, res.Cost)
	// Both orders cost the same; the first one seen is kept.
	assert.Equal(t, []int{0, 1}, res.Order)
	assert.NoError(t, res.Grid.Verify())
}

func TestSearchLeavesInputUntouched(t *testing.T) {
	g := crossing(t)

	res := Search{}.Run(context.Background(), g)
	require.NotSame(t, g, res.Grid)
	for _, n := range g.Nets() {
		assert.False(t, n.Routed)
		assert.Empty(t, n.Path)
	}
	assert.Zero(t, g.History(maze.Point{X: 3, Y: 1}))
}

func TestSearchIsDeterministic(t *testing.T) {
	a := Search{}.Run(context.Background(), doubleCrossing(t))
	b := Search{}.Run(context.Background(), doubleCrossing(t))

	assert.Equal(t, a.Order, b.Order)
	assert.Equal(t, a.Cost, b.Cost)
	assert.Equal(t, a.Grid.Nets(), b.Grid.Nets())
}

func TestSearchUnroutableFallsBack(t *testing.T) {
	g := newGrid(t, 3, 3, [4]int{0, 0, 0, 2})
	g.AddBlock(0, 2, 1, 1)
	g.InitPins()

	res := Search{}.Run(context.Background(), g)
	assert.Equal(t, 1, res.Attempts)
	assert.Zero(t, res.Succeeded)
	assert.True(t, res.Fallback)
	assert.False(t, res.Complete)
	assert.Equal(t, []int{0}, res.Grid.Failed())
}

func TestSearchFallbackKeepsRoutedNets(t *testing.T) {
	// net1 is walled off; net0 comes first in base order and routes fine.
	g := newGrid(t, 5, 5, [4]int{0, 4, 2, 4}, [4]int{0, 0, 0, 3})
	g.AddBlock(0, 4, 1, 1)
	g.InitPins()

	res := Search{}.Run(context.Background(), g)
	require.True(t, res.Fallback)
	assert.True(t, res.Grid.Net(0).Routed)
	assert.False(t, res.Grid.Net(1).Routed)
}

func TestSearchCanceledContextFallsBack(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Search{}.Run(ctx, crossing(t))
	assert.Zero(t, res.Attempts)
	assert.True(t, res.Fallback)
	assert.True(t, res.Complete, "fallback pass still routes what it can")
	assert.Equal(t, BaseOrder(res.Grid), res.Order)
}

// parallelNets builds n horizontal nets that never interact, so every
// ordering succeeds.
func parallelNets(t *testing.T, n int) *maze.Grid {
	t.Helper()
	nets := make([][4]int, n)
	for i := range nets {
		nets[i] = [4]int{0, i, 11, i}
	}
	g := newGrid(t, n, 12, nets...)
	g.InitPins()
	return g
}

func TestSearchStopsAtBudget(t *testing.T) {
	g := parallelNets(t, 10)

	start := time.Now()
	res := Search{Options: Options{Budget: 50 * time.Millisecond}}.Run(context.Background(), g)

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Positive(t, res.Attempts)
	assert.Less(t, res.Attempts, perm.Factorial(10))
	assert.True(t, res.Complete)
	assert.Equal(t, 10*10, res.Cost)
	assert.NoError(t, res.Grid.Verify())
}

func TestSearchProgress(t *testing.T) {
	var events []Event
	s := Search{Progress: func(ev Event) { events = append(events, ev) }}

	res := s.Run(context.Background(), doubleCrossing(t))
	require.Len(t, events, res.Attempts)
	assert.Equal(t, 6, res.Attempts)

	var initial int
	for i, ev := range events {
		assert.Equal(t, i+1, ev.Attempt)
		assert.Len(t, ev.Order, 3)
		if ev.Kind == EventInitial {
			initial++
			assert.NoError(t, ev.Err)
			assert.Equal(t, ev.Cost, ev.Best)
		}
	}
	assert.Equal(t, 1, initial)
	assert.Equal(t, res.Cost, events[len(events)-1].Best)
}

type recordingHooks struct {
	observability.NoopRouterHooks
	starts, attempts, completes int
	complete                    bool
}

func (h *recordingHooks) OnSearchStart(context.Context, int) { h.starts++ }
func (h *recordingHooks) OnAttempt(context.Context, error, int, time.Duration) {
	h.attempts++
}
func (h *recordingHooks) OnSearchComplete(_ context.Context, _, _ int, complete, _ bool, _ time.Duration) {
	h.completes++
	h.complete = complete
}

func TestSearchCallsHooks(t *testing.T) {
	h := &recordingHooks{}
	observability.SetRouterHooks(h)
	t.Cleanup(observability.Reset)

	res := Search{}.Run(context.Background(), crossing(t))
	assert.Equal(t, 1, h.starts)
	assert.Equal(t, res.Attempts, h.attempts)
	assert.Equal(t, 1, h.completes)
	assert.True(t, h.complete)
}
