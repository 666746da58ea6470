package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/matzehuels/mazeroute/pkg/pipeline"
	"github.com/matzehuels/mazeroute/pkg/route"
)

// runRoute is the default command: route input into output with the fixed
// search budget. Nets that cannot be routed are reported as FAILED in the
// output and do not fail the command. An interrupted search writes nothing
// and returns the context error.
func (c *CLI) runRoute(ctx context.Context, input, output string) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	runner, err := c.newRunner(ctx, false)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	ro := c.Config.RouteOptions(route.DefaultBudget)
	rep := newSearchReporter(c.Logger, ro.Budget)
	res, err := runner.Execute(ctx, pipeline.Options{
		Input:            data,
		Source:           input,
		Budget:           ro.Budget,
		MaxRequeues:      ro.MaxRequeues,
		CollisionPenalty: ro.CollisionPenalty,
		Formats:          []string{pipeline.FormatTXT},
		Logger:           c.Logger,
		Progress:         rep.onEvent,
	})
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	rep.done(res)

	if err := os.WriteFile(output, res.Artifacts[pipeline.FormatTXT], 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	printStats(res.Stats.Nets, res.Stats.Failed, res.Stats.Cost, res.CacheInfo.RouteHit)
	printFile(output)
	return nil
}
