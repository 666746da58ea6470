package cli

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mazeroute/pkg/pipeline"
	"github.com/matzehuels/mazeroute/pkg/route"
)

// heartbeatInterval is how often the reporter logs while no attempt improves.
const heartbeatInterval = 10 * time.Second

// searchReporter turns ordering search events into user-facing log lines:
// the first complete routing, every improvement, and a periodic heartbeat.
//
// The reporter is not safe for concurrent use; the search calls it from a
// single goroutine.
type searchReporter struct {
	prog     *progress
	logger   *log.Logger
	budget   time.Duration
	lastBest int
	lastLog  time.Time
	attempts int
}

func newSearchReporter(logger *log.Logger, budget time.Duration) *searchReporter {
	return &searchReporter{
		prog:     newProgress(logger),
		logger:   logger,
		budget:   budget,
		lastBest: -1,
		lastLog:  time.Now(),
	}
}

// onEvent is the search's Progress callback.
func (r *searchReporter) onEvent(ev route.Event) {
	r.attempts = ev.Attempt
	switch ev.Kind {
	case route.EventInitial:
		r.logger.Infof("Initial: cost %d (attempt %d)", ev.Cost, ev.Attempt)
		r.lastLog = time.Now()
	case route.EventImproved:
		r.logger.Infof("Improved: cost %d (↓%d, attempt %d)", ev.Cost, r.lastBest-ev.Cost, ev.Attempt)
		r.lastLog = time.Now()
	default:
		if time.Since(r.lastLog) >= heartbeatInterval {
			best := "none"
			if ev.Best >= 0 {
				best = fmt.Sprint(ev.Best)
			}
			r.logger.Infof("Searching... %v/%v elapsed, %d attempts, best cost %s",
				ev.Elapsed.Truncate(time.Second), r.budget, ev.Attempt, best)
			r.lastLog = time.Now()
		}
	}
	if ev.Best >= 0 {
		r.lastBest = ev.Best
	}
}

// done logs the final outcome and warns when some nets stayed unrouted.
func (r *searchReporter) done(res *pipeline.Result) {
	if res.CacheInfo.RouteHit {
		r.prog.done(fmt.Sprintf("Routing loaded from cache: %d nets, cost %d", res.Stats.Nets, res.Stats.Cost))
	} else {
		r.prog.done(fmt.Sprintf("Routing complete: %d nets, cost %d, %d attempts",
			res.Stats.Nets, res.Stats.Cost, res.Search.Attempts))
	}
	if res.Stats.Failed > 0 {
		r.logger.Warnf("%d of %d nets could not be routed", res.Stats.Failed, res.Stats.Nets)
	}
}
