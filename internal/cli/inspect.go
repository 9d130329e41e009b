package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// inspectCommand creates the inspect command, an interactive entity browser.
func (c *CLI) inspectCommand() *cobra.Command {
	var vocab string

	cmd := &cobra.Command{
		Use:   "inspect <file-or-dir>...",
		Short: "Browse the entities of behavior documents interactively",
		Long: `Browse the entities of behavior documents interactively.

The inspect command builds the reference graph and opens a terminal
browser over its nodes: components, effects, and reference status are
shown per entity. Useful for checking why an edge is or is not derived.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docs, err := loadDocuments(args)
			if err != nil {
				return err
			}

			opts := c.pipelineOptions("", false)
			opts.Vocabulary = append(opts.Vocabulary, splitList(vocab)...)

			runner, err := c.newRunner(true)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			g, err := runner.Build(cmd.Context(), docs, opts)
			if err != nil {
				return err
			}
			if g.NodeCount() == 0 {
				printInfo("No visible entities found")
				return nil
			}

			model := NewEntityListModel(g)
			_, err = tea.NewProgram(model, tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().StringVar(&vocab, "vocab", "", "extra entity types (comma-separated)")

	return cmd
}
