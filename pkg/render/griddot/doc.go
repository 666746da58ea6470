// Package griddot draws a routed grid with Graphviz.
//
// # Overview
//
// [ToDOT] turns a [maze.Grid] into an undirected DOT graph whose nodes are
// pinned to cell coordinates: blocked cells become grey boxes (one per
// horizontal run), each routed net becomes a coloured polyline through the
// endpoints of its straight segments, and pins are drawn as dots labelled
// with the net name. Unrouted nets show only their pins, outlined in red.
//
// [RenderSVG] lays the graph out with neato, which keeps pinned positions,
// and returns SVG:
//
//	dot := griddot.ToDOT(g, griddot.Options{Labels: true})
//	svg, err := griddot.RenderSVG(ctx, dot)
//
// Cell (x, y) is drawn with x growing to the right and y growing downward,
// matching the row/column order of the input file.
//
// This package uses [github.com/goccy/go-graphviz], which runs Graphviz
// as WebAssembly, so no system Graphviz install is needed.
package griddot
