// Package pkg provides the core libraries of mazeroute, a grid maze router.
//
// # Overview
//
// mazeroute connects two-pin nets through a grid with rectangular obstacles.
// No two nets may share a cell, and among the complete routings it finds the
// one with the fewest used cells. The pkg directory is organized into these
// areas:
//
//  1. [maze] and [route] - Routing (grid model, A* search, rip-up-and-reroute, ordering search)
//  2. [io] - Text input/output format and the JSON solution
//  3. [pipeline] - Orchestration (parse → route → render) with result caching
//  4. [render] - Graphviz drawings of routed grids
//  5. [cache], [jobs], [server] - Infrastructure for the CLI and the HTTP service
//
// # Architecture
//
// The typical data flow:
//
//	input file / HTTP request
//	         ↓
//	    [io] package (parse into a maze.Grid)
//	         ↓
//	    [route] package (try net orderings, rip up and reroute on conflicts)
//	         ↓
//	    [io] / [render] packages (text output, JSON, DOT, SVG/PNG/PDF)
//
// # Quick Start
//
// Route a problem and print the result:
//
//	import (
//	    "context"
//	    "os"
//
//	    gridio "github.com/matzehuels/mazeroute/pkg/io"
//	    "github.com/matzehuels/mazeroute/pkg/route"
//	)
//
//	// 1. Parse the input
//	g, _ := gridio.ImportInput("case1.in")
//
//	// 2. Search orderings within the default budget
//	res := route.Search{Options: route.DefaultOptions()}.Run(context.Background(), g)
//
//	// 3. Write the routed nets
//	gridio.WriteOutput(os.Stdout, res.Grid)
//
// # Main Packages
//
// ## Routing
//
// [maze] - The routing plane. Cells are blocked, empty or owned by a net;
// pins are fixed at construction. Holds the legal and the negotiated
// (congestion-aware) A* routers, commit and rip-up, and an invariant checker.
//
// [route] - Rip-up-and-reroute for one net ordering ([route.RouteAll]) and the
// budgeted search over orderings ([route.Search]). When no ordering routes
// every net, a single pass in base order yields a partial result.
//
// [perm] - Lexicographic permutation enumeration used by the ordering search.
//
// ## Formats
//
// [io] - Reads the whitespace-separated input format, writes the segment
// output format, and converts routed grids to and from a JSON solution.
//
// [render] - Format conversion (SVG to PDF/PNG). [render/griddot] draws a
// routed grid as Graphviz DOT with pinned node positions.
//
// ## Infrastructure
//
// [pipeline] - Complete routing pipeline (parse → route → render) used by the
// CLI and the HTTP service. Ensures consistent behavior across entry points.
//
// [cache] - Result cache with file, Redis and null backends, keyed by content
// hash and router options.
//
// [jobs] - Routing job records with in-memory and MongoDB stores.
//
// [server] - HTTP job API with a worker pool and Prometheus metrics.
//
// [observability] - Hooks for router, pipeline, cache and HTTP events, with a
// Prometheus implementation in [observability/prom].
//
// [config], [errors], [buildinfo] - TOML configuration, coded errors and
// version information.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                                  # All tests
//	go test ./pkg/route/...                            # Specific package
//	ROUTER_TEST_REDIS=localhost:6379 go test ./pkg/cache/  # Include Redis
//	ROUTER_TEST_MONGO=mongodb://localhost go test ./pkg/jobs/
//
// [maze]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/maze
// [route]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/route
// [route.RouteAll]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/route#RouteAll
// [route.Search]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/route#Search
// [perm]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/perm
// [io]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/render
// [render/griddot]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/render/griddot
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/cache
// [jobs]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/jobs
// [server]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/observability
// [observability/prom]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/observability/prom
// [config]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/mazeroute/pkg/buildinfo
package pkg
