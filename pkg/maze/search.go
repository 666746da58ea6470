package maze

import (
	"container/heap"
	"math"
	"slices"
)

// node is a frontier entry. seq is the insertion order and breaks f ties,
// which keeps expansions reproducible.
type node struct {
	p   Point
	g   int
	f   int
	seq int
}

// frontier is a min-heap of nodes ordered by f, then seq.
type frontier []node

func (q frontier) Len() int { return len(q) }
func (q frontier) Less(i, j int) bool {
	if q[i].f != q[j].f {
		return q[i].f < q[j].f
	}
	return q[i].seq < q[j].seq
}
func (q frontier) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *frontier) Push(x any)   { *q = append(*q, x.(node)) }
func (q *frontier) Pop() any {
	old := *q
	n := old[len(old)-1]
	*q = old[:len(old)-1]
	return n
}

// stepCost returns the cost of moving into p, or false when p may not be
// entered at all. Costs must be at least 1 for the Manhattan heuristic to
// stay consistent.
type stepCost func(p Point) (int, bool)

// search runs A* from src to dst over 4-connected moves and returns the
// cheapest path including both endpoints, or nil when dst is unreachable.
// Stale heap entries are skipped on pop rather than decreased in place.
func (g *Grid) search(src, dst Point, cost stepCost) []Point {
	if !g.contains(src) || !g.contains(dst) {
		return nil
	}

	size := len(g.state)
	dist := make([]int, size)
	parent := make([]int, size)
	closed := make([]bool, size)
	for i := range dist {
		dist[i] = math.MaxInt
		parent[i] = -1
	}

	var pq frontier
	seq := 0
	push := func(p Point, gc int) {
		heap.Push(&pq, node{p: p, g: gc, f: gc + Manhattan(p, dst), seq: seq})
		seq++
	}

	dist[g.index(src)] = 0
	push(src, 0)

	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(node)
		ci := g.index(cur.p)
		if closed[ci] {
			continue
		}
		closed[ci] = true

		if cur.p == dst {
			return g.trace(parent, src, dst)
		}

		for _, s := range steps {
			np := Point{cur.p.X + s.X, cur.p.Y + s.Y}
			if !g.contains(np) {
				continue
			}
			ni := g.index(np)
			if closed[ni] {
				continue
			}
			c, ok := cost(np)
			if !ok {
				continue
			}
			if ng := dist[ci] + c; ng < dist[ni] {
				dist[ni] = ng
				parent[ni] = ci
				push(np, ng)
			}
		}
	}
	return nil
}

// trace rebuilds the src→dst path from the parent links.
func (g *Grid) trace(parent []int, src, dst Point) []Point {
	path := []Point{dst}
	for i := g.index(dst); i != g.index(src); {
		i = parent[i]
		if i < 0 {
			return nil
		}
		path = append(path, Point{X: i % g.Cols, Y: i / g.Cols})
	}
	slices.Reverse(path)
	return path
}
