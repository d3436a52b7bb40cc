package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mouse-blink/codemodder/internal/domain/codemods"
)

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the available codemods",
		Long:  "List every registered codemod with its identifier, review guidance and summary, in execution order.",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return workflow.List(codemods.Registry().All())
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
