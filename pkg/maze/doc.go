// Package maze models a single-layer routing grid and the per-net path
// searches that run on it.
//
// A [Grid] owns three parallel layers: the cell state (empty, blocked, or
// owned by a net), the pin layer (fixed after [Grid.InitPins]) and the
// congestion history used by negotiated routing. Nets are routing requests
// between two pins; their paths are computed by one of two A* variants:
//
//   - [Grid.RouteLegal]: strict search, never crosses another net.
//   - [Grid.RouteForce]: relaxed search that may cross other nets, paying
//     history and collision costs, and reports the nets it crossed.
//
// Neither search touches cell ownership. [Grid.Commit] and [Grid.RipUp]
// are the only operations that write the state layer.
//
// # Coordinates
//
// Cells are addressed by (x, y) with 0 <= x < Cols and 0 <= y < Rows.
// Mutations outside the grid are ignored.
//
// # Snapshots
//
// A Grid is not safe for concurrent use. Callers that explore alternatives
// take an explicit deep copy with [Grid.Clone] and work on that copy.
package maze
