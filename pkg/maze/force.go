package maze

import "slices"

// DefaultCollisionPenalty is the extra cost of stepping into a cell owned by
// another net during negotiated routing.
const DefaultCollisionPenalty = 20

// RouteForce finds a path for the net at idx that may run through cells
// owned by other nets. Entering a cell costs 1 plus its history counter,
// plus penalty when another net owns it. Blocks and other nets' pins are
// never entered. This is narrower than "anything but a block": pins cannot
// be ripped up, so a net whose only path crosses a foreign pin gets ok ==
// false and is reported as unroutable rather than left sharing the cell.
//
// Once a path is found, the history counter of every interior path cell is
// incremented, the path is stored on the net, and the ids of the nets that
// own cells along it are returned in ascending order. Ownership is not
// changed; the caller rips up the victims and commits.
//
// When no path exists at all the net's path is left empty and ok is false.
func (g *Grid) RouteForce(idx, penalty int) (victims []int, ok bool) {
	if !g.validNet(idx) {
		return nil, false
	}
	n := &g.nets[idx]
	n.Path = nil
	ownPin := func(p Point) bool { return p == n.Source || p == n.Target }

	path := g.search(n.Source, n.Target, func(p Point) (int, bool) {
		i := g.index(p)
		s := g.state[i]
		if s == Block {
			return 0, false
		}
		if pin := g.pins[i]; pin != Empty && pin != n.ID {
			return 0, false
		}
		c := 1 + g.history[i]
		if s >= 0 && s != n.ID && !ownPin(p) {
			c += penalty
		}
		return c, true
	})
	if path == nil {
		return nil, false
	}

	for k, p := range path {
		i := g.index(p)
		if k > 0 && k < len(path)-1 {
			g.history[i]++
		}
		if s := g.state[i]; s >= 0 && s != n.ID && !ownPin(p) && !slices.Contains(victims, s) {
			victims = append(victims, s)
		}
	}
	slices.Sort(victims)
	n.Path = path
	return victims, true
}
