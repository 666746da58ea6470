package route

import (
	"context"
	"slices"
	"time"

	"github.com/matzehuels/mazeroute/pkg/maze"
	"github.com/matzehuels/mazeroute/pkg/observability"
	"github.com/matzehuels/mazeroute/pkg/perm"
)

// EventKind classifies a search progress event.
type EventKind int

const (
	// EventInitial is the first successful attempt.
	EventInitial EventKind = iota
	// EventImproved is a successful attempt with a lower cost than any before.
	EventImproved
	// EventAttempt is any other finished attempt.
	EventAttempt
)

// Event describes one finished attempt.
type Event struct {
	Kind    EventKind
	Attempt int   // 1-based
	Order   []int // net indices in routing order
	Err     error // nil when the attempt routed every net
	Cost    int   // grid usage of the attempt, valid when Err is nil
	Best    int   // best cost so far, -1 if none
	Stats   Stats
	Elapsed time.Duration // since the search started
}

// Result is the outcome of [Search.Run].
type Result struct {
	// Grid is the winning clone. The pristine input grid is never modified.
	Grid *maze.Grid

	// Cost is the grid usage of Grid.
	Cost int

	// Complete reports whether every net of Grid is routed.
	Complete bool

	// Fallback is set when no ordering succeeded and Grid is the partial
	// result of a single pass in base order.
	Fallback bool

	Attempts  int
	Succeeded int
	Order     []int
	Stats     Stats
	Elapsed   time.Duration
}

// Search explores net orderings for the lowest-usage complete routing.
type Search struct {
	Options

	// Progress, if set, is called after every attempt.
	Progress func(Event)
}

// BaseOrder returns net indices stable-sorted by ascending HPWL.
func BaseOrder(g *maze.Grid) []int {
	order := make([]int, g.NetCount())
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return g.Net(a).HPWL() - g.Net(b).HPWL()
	})
	return order
}

// Run searches orderings of g's nets until every permutation has been tried,
// the budget is spent, or ctx is done. g must have its pins initialized and
// is left untouched.
func (s Search) Run(ctx context.Context, g *maze.Grid) Result {
	opts := s.Options.WithDefaults()
	hooks := observability.Router()
	hooks.OnSearchStart(ctx, g.NetCount())

	start := time.Now()
	base := BaseOrder(g)
	p := perm.Seq(len(base))

	res := Result{Cost: -1}
	for {
		if time.Since(start) > opts.Budget || ctx.Err() != nil {
			break
		}

		order := perm.Apply(base, p)
		attemptStart := time.Now()
		c := g.Clone()
		st, err := RouteAll(c, order, opts)
		if err == nil {
			err = c.Verify()
		}
		res.Attempts++

		ev := Event{
			Kind:    EventAttempt,
			Attempt: res.Attempts,
			Order:   order,
			Err:     err,
			Stats:   st,
		}
		if err == nil {
			res.Succeeded++
			ev.Cost = c.Usage()
			if res.Grid == nil || ev.Cost < res.Cost {
				if res.Grid == nil {
					ev.Kind = EventInitial
				} else {
					ev.Kind = EventImproved
				}
				res.Grid, res.Cost, res.Order, res.Stats = c, ev.Cost, order, st
			}
		}
		hooks.OnAttempt(ctx, err, ev.Cost, time.Since(attemptStart))

		ev.Best = res.Cost
		ev.Elapsed = time.Since(start)
		if s.Progress != nil {
			s.Progress(ev)
		}

		if !perm.Next(p) {
			break
		}
	}

	if res.Grid == nil {
		c := g.Clone()
		st, _ := RouteAll(c, base, opts)
		res.Grid, res.Cost, res.Order, res.Stats = c, c.Usage(), base, st
		res.Fallback = true
	}
	res.Complete = res.Grid.Complete()
	res.Elapsed = time.Since(start)

	hooks.OnSearchComplete(ctx, res.Attempts, res.Cost, res.Complete, res.Fallback, res.Elapsed)
	return res
}
