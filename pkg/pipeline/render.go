package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	gridio "github.com/matzehuels/mazeroute/pkg/io"
	"github.com/matzehuels/mazeroute/pkg/maze"
	"github.com/matzehuels/mazeroute/pkg/observability"
	"github.com/matzehuels/mazeroute/pkg/render"
	"github.com/matzehuels/mazeroute/pkg/render/griddot"
)

// Render generates output artifacts for a routed grid in the requested formats.
func Render(ctx context.Context, g *maze.Grid, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := RenderFormat(ctx, g, format, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderFormat generates a single artifact.
func RenderFormat(ctx context.Context, g *maze.Grid, format string, opts Options) ([]byte, error) {
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	data, err := renderFormat(ctx, g, format, opts)
	if err != nil {
		err = fmt.Errorf("render %s: %w", format, err)
	}
	hooks.OnRenderComplete(ctx, format, time.Since(start), err)
	return data, err
}

func renderFormat(ctx context.Context, g *maze.Grid, format string, opts Options) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTXT:
		if err := gridio.WriteOutput(&buf, g); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON:
		if err := gridio.WriteJSON(gridio.NewSolution(g), &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(toDOT(g, opts)), nil
	case FormatSVG:
		return griddot.RenderSVG(ctx, toDOT(g, opts))
	case FormatPNG:
		svg, err := griddot.RenderSVG(ctx, toDOT(g, opts))
		if err != nil {
			return nil, err
		}
		return render.ToPNG(svg, 2.0)
	case FormatPDF:
		svg, err := griddot.RenderSVG(ctx, toDOT(g, opts))
		if err != nil {
			return nil, err
		}
		return render.ToPDF(svg)
	}
	return nil, ValidateFormat(format)
}

func toDOT(g *maze.Grid, opts Options) string {
	return griddot.ToDOT(g, griddot.Options{Labels: opts.Labels})
}
