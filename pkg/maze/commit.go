package maze

// Commit gives the net at idx ownership of every cell on its current path
// and marks it routed. Commit does not check legality: cells owned by other
// nets are overwritten, so their owners must have been ripped up first.
func (g *Grid) Commit(idx int) {
	if !g.validNet(idx) {
		return
	}
	n := &g.nets[idx]
	for _, p := range n.Path {
		if g.contains(p) {
			g.state[g.index(p)] = n.ID
		}
	}
	n.Routed = true
}

// RipUp releases the net at idx. Each path cell the net still owns goes
// back to its pin owner if it holds a pin, and to Empty otherwise; cells
// claimed since by another net are left alone. The path is cleared and the
// net marked unrouted. Ripping up an unrouted net changes nothing.
func (g *Grid) RipUp(idx int) {
	if !g.validNet(idx) {
		return
	}
	n := &g.nets[idx]
	for _, p := range n.Path {
		if !g.contains(p) {
			continue
		}
		i := g.index(p)
		if g.state[i] != n.ID {
			continue
		}
		if g.pins[i] != Empty {
			g.state[i] = g.pins[i]
		} else {
			g.state[i] = Empty
		}
	}
	n.Path = nil
	n.Routed = false
}
