package maze

// RouteLegal searches a conflict-free path for the net at idx and stores it
// as the net's path. A cell is usable when it is empty, or when it is one of
// the net's own pins; blocks and cells owned by other nets are not. Every
// step costs 1, so the path found is a shortest legal path.
//
// RouteLegal never writes the state or history layers. It returns false,
// leaving the path empty, when the target cannot be reached.
func (g *Grid) RouteLegal(idx int) bool {
	if !g.validNet(idx) {
		return false
	}
	n := &g.nets[idx]
	n.Path = nil

	path := g.search(n.Source, n.Target, func(p Point) (int, bool) {
		switch s := g.state[g.index(p)]; {
		case s == Block:
			return 0, false
		case s == Empty:
			return 1, true
		case p == n.Source || p == n.Target:
			return 1, true
		}
		return 0, false
	})
	if path == nil {
		return false
	}
	n.Path = path
	return true
}
