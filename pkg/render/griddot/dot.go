package griddot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mazeroute/pkg/maze"
)

// DefaultCellSize is the edge length of one cell in points.
const DefaultCellSize = 12

// Options configures grid drawing.
type Options struct {
	// CellSize is the edge length of one cell in points.
	CellSize int

	// Labels attaches net names to source pins.
	Labels bool
}

var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#17becf", "#bcbd22", "#7f7f7f",
}

// Color returns the drawing colour of the net with the given id.
func Color(id int) string {
	return palette[id%len(palette)]
}

// ToDOT converts a routed grid to Graphviz DOT with pinned node positions.
// The result is meant for [RenderSVG] or any neato-compatible renderer.
func ToDOT(g *maze.Grid, opts Options) string {
	size := opts.CellSize
	if size <= 0 {
		size = DefaultCellSize
	}
	pos := func(p maze.Point) string {
		return fmt.Sprintf("%d,%d!", p.X*size, -p.Y*size)
	}
	inch := func(cells int) string {
		return strconv.FormatFloat(float64(cells*size)/72, 'f', 3, 64)
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  outputorder=\"edgesfirst\";\n")
	buf.WriteString("  node [label=\"\", shape=point, fixedsize=true];\n")
	fmt.Fprintf(&buf, "  edge [penwidth=%s];\n", strconv.FormatFloat(float64(size)/3, 'f', 1, 64))
	buf.WriteString("\n")

	// Frame corners keep the drawing at full grid size.
	fmt.Fprintf(&buf, "  \"frame_tl\" [pos=%q, width=0, style=invis];\n", pos(maze.Point{X: -1, Y: -1}))
	fmt.Fprintf(&buf, "  \"frame_br\" [pos=%q, width=0, style=invis];\n", pos(maze.Point{X: g.Cols, Y: g.Rows}))

	for y := 0; y < g.Rows; y++ {
		for x := 0; x < g.Cols; {
			if g.State(maze.Point{X: x, Y: y}) != maze.Block {
				x++
				continue
			}
			start := x
			for x < g.Cols && g.State(maze.Point{X: x, Y: y}) == maze.Block {
				x++
			}
			// Box centre sits halfway along the run.
			cx := float64(start+x-1) / 2 * float64(size)
			fmt.Fprintf(&buf, "  \"block_%d_%d\" [shape=box, style=filled, color=\"#555555\", fillcolor=\"#555555\", width=%s, height=%s, pos=\"%s,%d!\"];\n",
				start, y, inch(x-start), inch(1), strconv.FormatFloat(cx, 'f', 1, 64), -y*size)
		}
	}

	for _, n := range g.Nets() {
		buf.WriteString("\n")
		color := Color(n.ID)
		pinColor := color
		if !n.Routed {
			pinColor = "red"
		}
		src := fmt.Sprintf("n%d_src", n.ID)
		dst := fmt.Sprintf("n%d_dst", n.ID)
		pinAttrs := fmt.Sprintf("shape=circle, style=filled, fillcolor=%q, color=%q, width=%s", color, pinColor, inch(1))
		if opts.Labels {
			fmt.Fprintf(&buf, "  %q [%s, xlabel=%q, tooltip=%q, pos=%q];\n", src, pinAttrs, n.Name, n.Name, pos(n.Source))
		} else {
			fmt.Fprintf(&buf, "  %q [%s, tooltip=%q, pos=%q];\n", src, pinAttrs, n.Name, pos(n.Source))
		}
		fmt.Fprintf(&buf, "  %q [%s, tooltip=%q, pos=%q];\n", dst, pinAttrs, n.Name, pos(n.Target))

		if !n.Routed || len(n.Path) < 2 {
			continue
		}
		segs := n.Segments()
		prev := src
		for i, s := range segs {
			next := dst
			if i < len(segs)-1 {
				next = fmt.Sprintf("n%d_%d", n.ID, i)
				fmt.Fprintf(&buf, "  %q [width=0, pos=%q];\n", next, pos(s.To))
			}
			fmt.Fprintf(&buf, "  %q -- %q [color=%q, tooltip=%q];\n", prev, next, color, n.Name)
			prev = next
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG lays out a DOT graph with neato and renders it to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
