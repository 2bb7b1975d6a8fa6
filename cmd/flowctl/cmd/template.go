package cmd

import (
	"github.com/spf13/cobra"

	"github.com/annettefo/prefect/internal/flowctl"
)

func templateCmd() *cobra.Command {
	a := flowctl.New()
	cmd := &cobra.Command{
		Use:   "template ./path/to/job.yaml",
		Short: "Validate a flow-run job template and print its parsed form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Template(args[0])
		},
	}
	return cmd
}
