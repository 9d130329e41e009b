package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowatlas/flowatlas/pkg/graph"
	"github.com/flowatlas/flowatlas/pkg/layout"
)

// layoutCommand creates the layout command for computing positions from an
// existing graph file.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		engine  string
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "layout <graph.json>",
		Short: "Compute a layout for an existing reference graph",
		Long: `Compute a layout for an existing reference graph.

The layout command takes a graph.json file (produced by 'parse') and
computes positions: nodes are grouped by epic, epics are clustered into
communities, and the layout engine places every tier. The result is
written as JSON to --output or stdout.

Use 'build' as a shortcut to go directly from documents to graph and layout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := graph.ReadGraphFile(args[0])
			if err != nil {
				return fmt.Errorf("load graph %s: %w", args[0], err)
			}

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			opts := c.pipelineOptions(engine, refresh)

			spinner := newSpinnerWithContext(cmd.Context(), "Computing layout...")
			spinner.Start()

			l, hit, err := runner.ComputeLayoutWithCacheInfo(cmd.Context(), g, opts)
			if err != nil {
				spinner.StopWithError("Layout failed")
				return err
			}
			spinner.Stop()

			printSuccess("Computed layout with %s", l.Engine)
			printStats(len(l.Positions), 0, hit)

			if output == "" {
				data, err := layout.MarshalLayout(l)
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}
			if err := layout.WriteLayoutFile(l, output); err != nil {
				return fmt.Errorf("write layout: %w", err)
			}
			printFile(output)
			return nil
		},
	}

	cmd.Flags().StringVar(&engine, "engine", "", "layout engine: graphviz (default), grid")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cache")

	return cmd
}
