package route

import (
	"time"

	"github.com/matzehuels/mazeroute/pkg/maze"
)

const (
	// DefaultBudget is the wall-clock budget of the ordering search.
	DefaultBudget = 110 * time.Second

	// DefaultMaxRequeues caps rip-up events per attempt.
	DefaultMaxRequeues = 10000
)

// Options tunes routing attempts. Zero fields take their defaults.
type Options struct {
	// Budget bounds the ordering search. Attempts already started are not
	// interrupted.
	Budget time.Duration

	// MaxRequeues caps how many nets a single attempt may rip up and queue
	// again before it is abandoned. Negative means unbounded.
	MaxRequeues int

	// CollisionPenalty is added to the cost of forcing through another
	// net's cell.
	CollisionPenalty int
}

// DefaultOptions returns the options used by the router CLI.
func DefaultOptions() Options {
	return Options{
		Budget:           DefaultBudget,
		MaxRequeues:      DefaultMaxRequeues,
		CollisionPenalty: maze.DefaultCollisionPenalty,
	}
}

// WithDefaults returns o with zero fields replaced by defaults.
func (o Options) WithDefaults() Options {
	d := DefaultOptions()
	if o.Budget == 0 {
		o.Budget = d.Budget
	}
	if o.MaxRequeues == 0 {
		o.MaxRequeues = d.MaxRequeues
	}
	if o.CollisionPenalty == 0 {
		o.CollisionPenalty = d.CollisionPenalty
	}
	return o
}
