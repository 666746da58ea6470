package maze

import (
	"errors"
	"fmt"
)

// ErrInvariant is wrapped by every error returned from Verify.
var ErrInvariant = errors.New("maze: invariant violated")

// Verify checks every routed net: its path starts at the source, ends at
// the target, moves one cell at a time without revisiting a cell, and every
// cell on it is owned by the net. Because ownership is exclusive, a nil
// result also means no two routed paths share a cell and no path crosses a
// block.
func (g *Grid) Verify() error {
	owner := make(map[Point]int)
	for i := range g.nets {
		n := &g.nets[i]
		if !n.Routed {
			continue
		}
		if len(n.Path) == 0 {
			return fmt.Errorf("%w: net %q routed with empty path", ErrInvariant, n.Name)
		}
		if n.Path[0] != n.Source || n.Path[len(n.Path)-1] != n.Target {
			return fmt.Errorf("%w: net %q path does not join %v and %v", ErrInvariant, n.Name, n.Source, n.Target)
		}
		for k, p := range n.Path {
			if !g.contains(p) {
				return fmt.Errorf("%w: net %q leaves the grid at %v", ErrInvariant, n.Name, p)
			}
			if k > 0 && !adjacent(n.Path[k-1], p) {
				return fmt.Errorf("%w: net %q jumps from %v to %v", ErrInvariant, n.Name, n.Path[k-1], p)
			}
			if prev, ok := owner[p]; ok {
				if prev == n.ID {
					return fmt.Errorf("%w: net %q revisits %v", ErrInvariant, n.Name, p)
				}
				return fmt.Errorf("%w: nets %q and %q share %v", ErrInvariant, g.nets[prev].Name, n.Name, p)
			}
			owner[p] = n.ID
			if s := g.state[g.index(p)]; s != n.ID {
				return fmt.Errorf("%w: net %q does not own %v (state %d)", ErrInvariant, n.Name, p, s)
			}
		}
	}
	return nil
}
