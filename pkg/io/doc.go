// Package io reads routing problems and writes routing results.
//
// # Input Format
//
// The input is a stream of whitespace-separated tokens:
//
//	.row 5
//	.col 7
//	.block 1
//	2 3 1 1
//	.net 2
//	clk 0 0 6 4
//	rst 0 4 6 0
//
// Each header value (rows, cols, block count, net count) may be preceded by
// a single label token; a bare number is accepted too. Block records are
// "lx rx ly ry", an inclusive rectangle. Net records are "name sx sy tx ty";
// nets are numbered in record order. Use [ReadInput] or [ImportInput].
//
// # Output Format
//
// [WriteOutput] emits one record per net, in net order. An unrouted net is a
// single line "<name> FAILED". A routed net is
//
//	<name> <segments>
//	begin
//	<x1> <y1> <x2> <y2>
//	...
//	end
//
// with one line per maximal straight run of its path.
//
// # JSON Solutions
//
// [WriteJSON] and [ReadJSON] serialize a routed grid as a [Solution]:
//
//	{
//	  "rows": 3, "cols": 7, "cost": 10, "complete": true,
//	  "nets": [
//	    {"id": 0, "name": "a", "source": {"x": 3, "y": 0}, "target": {"x": 3, "y": 2},
//	     "routed": true, "path": [{"x": 3, "y": 0}, ...]}
//	  ]
//	}
//
// Solutions are what the cache and the HTTP service store. [ApplySolution]
// replays a stored solution onto a freshly parsed grid and verifies it.
package io
