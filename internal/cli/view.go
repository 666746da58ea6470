package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mazeroute/pkg/pipeline"
	"github.com/matzehuels/mazeroute/pkg/route"
)

// viewCommand creates the view command, a terminal browser of a routed grid.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		static  bool
		noCache bool
		budget  = route.DefaultBudget
	)

	cmd := &cobra.Command{
		Use:   "view <input_file>",
		Short: "Browse the routed grid in the terminal",
		Long: `Route a problem and browse the result in the terminal.

The grid map shows blocks, pins and every routed path; moving through the
net list highlights one net on the map. With --static the map and the net
table are printed once instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runView(cmd.Context(), args[0], static, budget, noCache)
		},
	}

	cmd.Flags().BoolVar(&static, "static", false, "print the map once instead of starting the browser")
	cmd.Flags().DurationVar(&budget, "budget", budget, "ordering search budget")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runView(ctx context.Context, input string, static bool, budget time.Duration, noCache bool) error {
	data, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinner(ctx, fmt.Sprintf("Routing %s...", filepath.Base(input)))
	spinner.Start()
	ro := c.Config.RouteOptions(budget)
	res, err := runner.Execute(ctx, pipeline.Options{
		Input:            data,
		Source:           input,
		Budget:           ro.Budget,
		MaxRequeues:      ro.MaxRequeues,
		CollisionPenalty: ro.CollisionPenalty,
		Logger:           c.Logger,
	})
	if err != nil {
		spinner.StopWithError("Routing failed")
		return err
	}
	spinner.Stop()
	if err := ctx.Err(); err != nil {
		return err
	}

	title := fmt.Sprintf("%s  %d×%d", filepath.Base(input), res.Grid.Cols, res.Grid.Rows)
	if static {
		fmt.Println(StyleTitle.Render(title))
		fmt.Print(renderGridMap(res.Grid, -1))
		fmt.Println(renderNetTable(res.Grid, -1, 0, res.Grid.NetCount()))
		printKeyValue("Nets", StyleNumber.Render(fmt.Sprint(res.Stats.Nets)))
		printKeyValue("Cost", StyleNumber.Render(fmt.Sprint(res.Stats.Cost)))
		printKeyValue("Failed", StyleNumber.Render(fmt.Sprint(res.Stats.Failed)))
		return nil
	}

	p := tea.NewProgram(NewNetViewModel(res.Grid, title), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("view: %w", err)
	}
	return nil
}
