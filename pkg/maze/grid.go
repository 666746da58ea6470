package maze

import (
	"fmt"
	"slices"
)

// Cell sentinels of the state and pin layers. Non-negative values are net
// ids.
const (
	Empty = -1
	Block = -2
)

// Grid is the routing plane: obstacles, pins, ownership and congestion
// history, together with the nets routed on it.
type Grid struct {
	Rows, Cols int

	state   []int // Empty, Block or owning net id
	pins    []int // Empty or pin owner; fixed after InitPins
	history []int // negotiated-congestion counters
	nets    []Net
}

// New returns an empty rows×cols grid with zeroed history.
func New(rows, cols int) *Grid {
	rows, cols = max(rows, 0), max(cols, 0)
	g := &Grid{
		Rows:    rows,
		Cols:    cols,
		state:   make([]int, rows*cols),
		pins:    make([]int, rows*cols),
		history: make([]int, rows*cols),
	}
	for i := range g.state {
		g.state[i] = Empty
		g.pins[i] = Empty
	}
	return g
}

// InBounds reports whether (x, y) addresses a cell of the grid.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && x < g.Cols && y >= 0 && y < g.Rows
}

func (g *Grid) index(p Point) int {
	return p.Y*g.Cols + p.X
}

func (g *Grid) contains(p Point) bool {
	return g.InBounds(p.X, p.Y)
}

// AddBlock marks the inclusive rectangle [lx,rx]×[ly,ry] as a permanent
// obstacle. Corners may be given in either order; cells outside the grid
// are skipped.
func (g *Grid) AddBlock(lx, rx, ly, ry int) {
	for x := min(lx, rx); x <= max(lx, rx); x++ {
		for y := min(ly, ry); y <= max(ly, ry); y++ {
			if g.InBounds(x, y) {
				g.state[g.index(Point{x, y})] = Block
			}
		}
	}
}

// AddNet appends a net. Net ids are positions in the net list, so id must
// equal the number of nets already added.
func (g *Grid) AddNet(id int, name string, sx, sy, tx, ty int) error {
	if id != len(g.nets) {
		return fmt.Errorf("add net %q: id %d, want %d", name, id, len(g.nets))
	}
	g.nets = append(g.nets, Net{
		ID:     id,
		Name:   name,
		Source: Point{sx, sy},
		Target: Point{tx, ty},
	})
	return nil
}

// InitPins records every net's source and target in the pin layer and
// gives the net ownership of those cells. It must run once, after all nets
// are added and before any routing. Pins outside the grid are skipped.
func (g *Grid) InitPins() {
	for _, n := range g.nets {
		for _, p := range [2]Point{n.Source, n.Target} {
			if !g.contains(p) {
				continue
			}
			i := g.index(p)
			g.pins[i] = n.ID
			g.state[i] = n.ID
		}
	}
}

// State returns the state-layer value at p, or Block outside the grid.
func (g *Grid) State(p Point) int {
	if !g.contains(p) {
		return Block
	}
	return g.state[g.index(p)]
}

// Pin returns the pin owner at p, or Empty.
func (g *Grid) Pin(p Point) int {
	if !g.contains(p) {
		return Empty
	}
	return g.pins[g.index(p)]
}

// History returns the congestion counter at p.
func (g *Grid) History(p Point) int {
	if !g.contains(p) {
		return 0
	}
	return g.history[g.index(p)]
}

// NetCount returns the number of nets on the grid.
func (g *Grid) NetCount() int {
	return len(g.nets)
}

// Net returns the net at idx. The pointer aliases the grid's own record.
func (g *Grid) Net(idx int) *Net {
	return &g.nets[idx]
}

// Nets returns the grid's nets in id order. Callers must not modify them.
func (g *Grid) Nets() []Net {
	return g.nets
}

func (g *Grid) validNet(idx int) bool {
	return idx >= 0 && idx < len(g.nets)
}

// Clone returns a deep copy of g. Layers, nets and paths are all copied, so
// mutating the clone never affects g.
func (g *Grid) Clone() *Grid {
	c := &Grid{
		Rows:    g.Rows,
		Cols:    g.Cols,
		state:   slices.Clone(g.state),
		pins:    slices.Clone(g.pins),
		history: slices.Clone(g.history),
		nets:    make([]Net, len(g.nets)),
	}
	for i, n := range g.nets {
		c.nets[i] = n.clone()
	}
	return c
}

// Usage returns the total grid usage of all routed nets: the sum of their
// path lengths excluding the two pins each.
func (g *Grid) Usage() int {
	total := 0
	for i := range g.nets {
		if g.nets[i].Routed {
			total += g.nets[i].Usage()
		}
	}
	return total
}

// Complete reports whether every net is routed with a non-empty path.
func (g *Grid) Complete() bool {
	for _, n := range g.nets {
		if !n.Routed || len(n.Path) == 0 {
			return false
		}
	}
	return true
}

// Failed returns the ids of nets that are not routed.
func (g *Grid) Failed() []int {
	var ids []int
	for _, n := range g.nets {
		if !n.Routed || len(n.Path) == 0 {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
