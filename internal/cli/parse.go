package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flowatlas/flowatlas/pkg/graph"
)

// parseCommand creates the parse command for deriving a graph without layout.
func (c *CLI) parseCommand() *cobra.Command {
	var (
		vocab   string
		output  string
		noCache bool
		refresh bool
	)

	cmd := &cobra.Command{
		Use:   "parse <file-or-dir>...",
		Short: "Parse behavior documents into a reference graph",
		Long: `Parse behavior documents into a reference graph.

The parse command runs only the parse and build stages: entities and
references are extracted and the visible graph is derived, without
computing a layout. The graph is written as JSON to --output or stdout.

Use 'build' to also compute positions.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := loadDocuments(args)
			if err != nil {
				return err
			}

			opts := c.pipelineOptions("", refresh)
			opts.Vocabulary = append(opts.Vocabulary, splitList(vocab)...)

			runner, err := c.newRunner(noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			c.Logger.Infof("Parsing %d documents", len(docs))
			prog := newProgress(c.Logger)
			g, err := runner.Build(cmd.Context(), docs, opts)
			if err != nil {
				return err
			}
			prog.done(fmt.Sprintf("Built graph with %d nodes and %d edges", g.NodeCount(), g.EdgeCount()))

			return writeGraph(g, output, c.Logger)
		},
	}

	cmd.Flags().StringVar(&vocab, "vocab", "", "extra entity types (comma-separated)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (stdout if empty)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass cache")

	return cmd
}

// writeGraph serializes g as JSON to the specified path (or stdout if empty).
// The logger is notified on success with the output path.
func writeGraph(g *graph.Graph, path string, logger interface{ Infof(string, ...any) }) error {
	data, err := graph.MarshalGraph(g)
	if err != nil {
		return err
	}

	out, err := openOutput(path)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(append(data, '\n')); err != nil {
		return err
	}
	if path != "" {
		logger.Infof("Wrote graph to %s", path)
	}
	return nil
}
