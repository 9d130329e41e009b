package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowatlas/flowatlas/pkg/graph"
	"github.com/flowatlas/flowatlas/pkg/layout"
)

// buildCommand creates the build command running the full pipeline.
func (c *CLI) buildCommand() *cobra.Command {
	var (
		engine       string
		vocab        string
		graphOutput  string
		layoutOutput string
		noCache      bool
		refresh      bool
	)

	cmd := &cobra.Command{
		Use:   "build <file-or-dir>...",
		Short: "Build a reference graph and layout from behavior documents",
		Long: `Build a reference graph and layout from behavior documents.

The build command runs the full pipeline: documents are parsed into
entities, the visible reference graph is derived, and a clustered layout
is computed. Graph and layout are written as JSON for the rendering
collaborator.

Results are cached locally for faster subsequent runs.

Examples:
  flowatlas build specs/                       # All YAML files in specs/
  flowatlas build shop.yaml checkout.yaml      # Explicit files
  flowatlas build specs/ --engine grid         # Deterministic fallback engine`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := loadDocuments(args)
			if err != nil {
				return err
			}

			opts := c.pipelineOptions(engine, refresh)
			opts.Vocabulary = append(opts.Vocabulary, splitList(vocab)...)

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			spinner := newSpinnerWithContext(cmd.Context(), fmt.Sprintf("Building from %d documents...", len(docs)))
			spinner.Start()

			result, err := runner.Execute(cmd.Context(), docs, opts)
			if err != nil {
				spinner.StopWithError("Build failed")
				return err
			}
			spinner.Stop()

			for _, id := range result.Collisions {
				printWarning("duplicate entity id %s, last definition wins", id)
			}
			for _, derr := range result.DocumentErrors {
				printWarning("skipped %s: %v", derr.Document, derr.Err)
			}

			printSuccess("Built graph and layout")
			printStats(result.Stats.NodeCount, result.Stats.EdgeCount,
				result.CacheInfo.GraphHit && result.CacheInfo.LayoutHit)

			if err := graph.WriteGraphFile(result.Graph, graphOutput); err != nil {
				return fmt.Errorf("write graph: %w", err)
			}
			printFile(graphOutput)

			if err := layout.WriteLayoutFile(result.Layout, layoutOutput); err != nil {
				return fmt.Errorf("write layout: %w", err)
			}
			printFile(layoutOutput)

			printNewline()
			printNextStep("Browse the entities", fmt.Sprintf("flowatlas inspect %s", args[0]))
			return nil
		},
	}

	cmd.Flags().StringVar(&engine, "engine", "", "layout engine: graphviz (default), grid")
	cmd.Flags().StringVar(&vocab, "vocab", "", "extra entity types (comma-separated)")
	cmd.Flags().StringVar(&graphOutput, "graph", "graph.json", "graph output file")
	cmd.Flags().StringVar(&layoutOutput, "layout", "layout.json", "layout output file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cache and rebuild")

	return cmd
}
