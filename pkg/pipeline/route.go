package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/mazeroute/pkg/maze"
	"github.com/matzehuels/mazeroute/pkg/route"
)

// heartbeat is how often Route logs search progress at debug level.
const heartbeat = 5 * time.Second

// Route runs the ordering search on g with the options' router settings.
// Progress is logged to opts.Logger and forwarded to opts.Progress.
func Route(ctx context.Context, g *maze.Grid, opts Options) route.Result {
	logger := opts.Logger
	var lastBeat time.Duration

	s := route.Search{
		Options: opts.RouteOptions(),
		Progress: func(ev route.Event) {
			switch {
			case ev.Kind == route.EventInitial:
				logger.Debug("initial routing", "attempt", ev.Attempt, "cost", ev.Cost, "elapsed", ev.Elapsed)
			case ev.Kind == route.EventImproved:
				logger.Debug("improved routing", "attempt", ev.Attempt, "cost", ev.Cost, "elapsed", ev.Elapsed)
			case ev.Elapsed-lastBeat >= heartbeat:
				lastBeat = ev.Elapsed
				logger.Debug("searching", "attempts", ev.Attempt, "best", ev.Best, "elapsed", ev.Elapsed)
			}
			if opts.Progress != nil {
				opts.Progress(ev)
			}
		},
	}
	return s.Run(ctx, g)
}
