// Package route legalizes every net of a [maze.Grid].
//
// [RouteAll] is the rip-up-and-reroute loop for one net order: each net is
// routed legally if possible, otherwise forced through other nets, whose
// owners are ripped up and queued again. History costs grow on every forced
// route, so contested cells get more expensive until the nets settle.
//
// [Search] runs RouteAll over permutations of a base order (ascending
// HPWL), each on a fresh clone of the pristine grid, until a wall-clock
// budget runs out, and keeps the routed clone with the lowest grid usage.
// The budget is only checked between attempts; a single attempt always runs
// to completion.
package route
