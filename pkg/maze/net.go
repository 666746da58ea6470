package maze

import "slices"

// Net is a two-pin routing request and its current path.
//
// When Routed is true, Path runs from Source to Target through
// Manhattan-adjacent cells without repeating a cell.
type Net struct {
	ID     int     `json:"id"`
	Name   string  `json:"name"`
	Source Point   `json:"source"`
	Target Point   `json:"target"`
	Path   []Point `json:"path,omitempty"`
	Routed bool    `json:"routed"`
}

// HPWL returns the half-perimeter wirelength of the net, which for two
// pins is the Manhattan distance between them.
func (n *Net) HPWL() int {
	return Manhattan(n.Source, n.Target)
}

// Usage returns the number of grid cells the path occupies besides the two
// pins. An unrouted net uses nothing.
func (n *Net) Usage() int {
	return max(len(n.Path)-2, 0)
}

// Segment is a maximal straight run of a path.
type Segment struct {
	From Point `json:"from"`
	To   Point `json:"to"`
}

// Segments collapses collinear consecutive path cells into straight runs.
// A single-cell path yields one zero-length segment; an empty path yields
// none.
func (n *Net) Segments() []Segment {
	path := n.Path
	switch len(path) {
	case 0:
		return nil
	case 1:
		return []Segment{{From: path[0], To: path[0]}}
	}

	var segs []Segment
	start := path[0]
	dx, dy := path[1].X-path[0].X, path[1].Y-path[0].Y
	for i := 2; i < len(path); i++ {
		ndx, ndy := path[i].X-path[i-1].X, path[i].Y-path[i-1].Y
		if ndx != dx || ndy != dy {
			segs = append(segs, Segment{From: start, To: path[i-1]})
			start = path[i-1]
			dx, dy = ndx, ndy
		}
	}
	return append(segs, Segment{From: start, To: path[len(path)-1]})
}

func (n Net) clone() Net {
	n.Path = slices.Clone(n.Path)
	return n
}
