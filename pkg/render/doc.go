// Package render draws routed grids.
//
// # Overview
//
// This package holds the format conversion shared by the renderers:
//
//   - Generic format conversion (SVG to PDF/PNG)
//   - Graphviz drawings of a routed grid (in [griddot] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := griddot.RenderSVG(ctx, griddot.ToDOT(g, griddot.Options{}))
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [griddot]: github.com/matzehuels/mazeroute/pkg/render/griddot
package render
