package pipeline

import (
	"bytes"
	"context"
	"time"

	gridio "github.com/matzehuels/mazeroute/pkg/io"
	"github.com/matzehuels/mazeroute/pkg/maze"
	"github.com/matzehuels/mazeroute/pkg/observability"
)

// Parse reads the routing problem in opts.Input.
func Parse(ctx context.Context, opts Options) (*maze.Grid, error) {
	hooks := observability.Pipeline()
	hooks.OnParseStart(ctx, opts.Source)
	start := time.Now()

	g, err := gridio.ReadInput(bytes.NewReader(opts.Input))

	nets := 0
	if g != nil {
		nets = g.NetCount()
	}
	hooks.OnParseComplete(ctx, opts.Source, nets, time.Since(start), err)
	return g, err
}
