package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/mazeroute/pkg/pipeline"
	"github.com/matzehuels/mazeroute/pkg/route"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output  string        // output file path (or base path for multiple outputs)
	formats []string      // output formats: "svg", "png", "pdf", "dot", "json", "txt"
	labels  bool          // label pins with net names
	budget  time.Duration // ordering search budget
	noCache bool          // bypass the result cache
	refresh bool          // recompute the routing even if cached
}

// renderCommand creates the render command, which routes an input file and
// draws the result with Graphviz.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{budget: route.DefaultBudget}

	cmd := &cobra.Command{
		Use:   "render <input_file>",
		Short: "Route a problem and draw the routed grid",
		Long: `Route a problem and draw the routed grid.

Blocks are drawn as grey boxes, pins as circles and each net's path as a
polyline in its own color. Unrouted nets show their pins outlined in red.

SVG is rendered with Graphviz; PNG and PDF are converted from the SVG with
rsvg-convert, which must be installed. The dot, json and txt formats write
the Graphviz source, the JSON solution and the plain routing output.

Routing results are cached, so rendering the same input again is fast.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json, txt (comma-separated)")
	cmd.Flags().BoolVar(&opts.labels, "labels", false, "label pins with net names")
	cmd.Flags().DurationVar(&opts.budget, "budget", opts.budget, "ordering search budget")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute the routing even if cached")

	return cmd
}

// runRender routes the input and writes one file per requested format.
func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	runner, err := c.newRunner(ctx, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Routing %s...", filepath.Base(input)))
	spinner.Start()

	ro := c.Config.RouteOptions(opts.budget)
	res, err := runner.Execute(ctx, pipeline.Options{
		Input:            data,
		Source:           input,
		Budget:           ro.Budget,
		MaxRequeues:      ro.MaxRequeues,
		CollisionPenalty: ro.CollisionPenalty,
		Refresh:          opts.refresh,
		Formats:          opts.formats,
		Labels:           opts.labels,
		Logger:           c.Logger,
		Progress: func(ev route.Event) {
			if ev.Best >= 0 {
				spinner.SetMessage(fmt.Sprintf("Routing... attempt %d, best cost %d", ev.Attempt, ev.Best))
			} else {
				spinner.SetMessage(fmt.Sprintf("Routing... attempt %d", ev.Attempt))
			}
		},
	})
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := writeArtifacts(artifactWriteParams{
		artifacts: res.Artifacts,
		formats:   opts.formats,
		input:     input,
		output:    opts.output,
	}); err != nil {
		return err
	}
	printStats(res.Stats.Nets, res.Stats.Failed, res.Stats.Cost, res.CacheInfo.RouteHit && res.CacheInfo.RenderHit)
	if res.Stats.Failed > 0 {
		printWarning("%d nets could not be routed", res.Stats.Failed)
	}
	return nil
}

// artifactWriteParams describes where rendered artifacts go.
type artifactWriteParams struct {
	artifacts map[string][]byte
	formats   []string
	input     string
	output    string
}

// writeArtifacts writes each artifact and prints its path.
func writeArtifacts(p artifactWriteParams) error {
	multi := len(p.formats) > 1
	for _, format := range p.formats {
		path := outputPath(p.input, p.output, format, multi)
		if err := os.WriteFile(path, p.artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// outputPath names the file for one format. Without an explicit output the
// input's base name is reused; with several formats the output is a base
// path that gets the format as extension.
func outputPath(input, output, format string, multi bool) string {
	switch {
	case output == "":
		return trimExt(input) + "." + format
	case multi:
		return trimExt(output) + "." + format
	}
	return output
}

func trimExt(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}
