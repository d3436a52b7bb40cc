package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mouse-blink/codemodder/internal/domain"
	m "github.com/mouse-blink/codemodder/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <report.json>",
		Short: "View a previously generated CodeTF report",
		Long:  "Load a CodeTF report and print the files and changes of each codemod.",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			return exitErrorFor(workflow.View(domain.ViewArgs{Report: m.Path(args[0])}))
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
