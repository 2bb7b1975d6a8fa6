package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// RootCmd is the root Cobra command that gets called from the main func.
// All other sub-commands should be registered here.
func RootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "flowctl",
		Short: "flowctl renders Prefect flow-run job templates and dispatches them to a backend.",
	}

	cmd.PersistentFlags().StringSlice(
		"config",
		[]string{},
		"Fully qualified path to launcher configuration file (for multiple config files repeat this arg or separate paths with commas)",
	)

	cmd.AddCommand(
		templateCmd(),
		renderCmd(),
		submitCmd(),
		statusCmd(),
		versionCmd(),
	)

	return cmd
}

func Execute() {
	if err := RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
