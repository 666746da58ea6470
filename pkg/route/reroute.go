package route

import (
	"errors"
	"fmt"

	"github.com/matzehuels/mazeroute/pkg/maze"
)

// Attempt failures. Each abandons the current order only.
var (
	// ErrUnroutable means a net has no path even when crossing other nets.
	ErrUnroutable = errors.New("route: net is unroutable")

	// ErrRequeueLimit means the attempt ripped up more nets than allowed.
	ErrRequeueLimit = errors.New("route: requeue limit reached")

	// ErrIncomplete means the queue drained with nets still unrouted.
	ErrIncomplete = errors.New("route: nets left unrouted")
)

// Stats counts what one attempt did.
type Stats struct {
	Legal  int `json:"legal"`  // nets routed without conflict
	Forced int `json:"forced"` // negotiated routes committed
	RipUps int `json:"rip_ups"`
}

// RouteAll routes the nets of g in the given order, resolving conflicts by
// rip-up and reroute, and mutates g in place. It returns nil only when
// every net ends up routed.
//
// Nets are taken from a FIFO queue. A net that cannot be routed legally is
// forced through; every routed net it crosses is ripped up and appended to
// the queue before the forced path is committed. A net without any path
// abandons the attempt with ErrUnroutable.
func RouteAll(g *maze.Grid, order []int, opts Options) (Stats, error) {
	opts = opts.WithDefaults()

	var st Stats
	queue := newQueue(order)
	for !queue.empty() {
		idx := queue.pop()

		if g.RouteLegal(idx) {
			g.Commit(idx)
			st.Legal++
			continue
		}

		victims, ok := g.RouteForce(idx, opts.CollisionPenalty)
		if !ok {
			return st, fmt.Errorf("%w: %s", ErrUnroutable, netName(g, idx))
		}

		routed := victims[:0:0]
		for _, v := range victims {
			if g.Net(v).Routed {
				routed = append(routed, v)
			}
		}
		if opts.MaxRequeues >= 0 && st.RipUps+len(routed) > opts.MaxRequeues {
			g.Net(idx).Path = nil
			return st, fmt.Errorf("%w: %d rip-ups routing %s", ErrRequeueLimit, st.RipUps, netName(g, idx))
		}
		for _, v := range routed {
			g.RipUp(v)
			queue.push(v)
			st.RipUps++
		}
		g.Commit(idx)
		st.Forced++
	}

	if !g.Complete() {
		return st, ErrIncomplete
	}
	return st, nil
}

func netName(g *maze.Grid, idx int) string {
	if idx < 0 || idx >= g.NetCount() {
		return fmt.Sprintf("#%d", idx)
	}
	return g.Net(idx).Name
}

// queue is a FIFO of net indices.
type queue struct {
	items []int
	head  int
}

func newQueue(items []int) *queue {
	return &queue{items: append([]int(nil), items...)}
}

func (q *queue) empty() bool { return q.head >= len(q.items) }

func (q *queue) pop() int {
	v := q.items[q.head]
	q.head++
	if q.head > 64 && q.head*2 > len(q.items) {
		q.items = append(q.items[:0], q.items[q.head:]...)
		q.head = 0
	}
	return v
}

func (q *queue) push(v int) { q.items = append(q.items, v) }
