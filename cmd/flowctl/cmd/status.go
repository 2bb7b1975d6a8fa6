package cmd

import (
	"github.com/spf13/cobra"

	"github.com/annettefo/prefect/internal/flowctl"
)

func statusCmd() *cobra.Command {
	a := flowctl.New()
	cmd := &cobra.Command{
		Use:   "status NAMESPACE NAME",
		Short: "Report the state of a previously submitted flow-run job",
		Args:  cobra.ExactArgs(2),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Status(args[0], args[1])
		},
	}
	return cmd
}
