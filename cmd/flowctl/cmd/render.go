package cmd

import (
	"github.com/spf13/cobra"

	"github.com/annettefo/prefect/internal/flowctl"
)

func renderCmd() *cobra.Command {
	a := flowctl.New()
	cmd := &cobra.Command{
		Use:   "render ./path/to/job.yaml",
		Short: "Render a flow-run job template against a runtime context",
		Long: `Render a flow-run job template against a runtime context and print the
resulting batch/v1 Job manifest. The context must supply a value for every
referenced variable:

	flowctl render ./job.yaml \
		--context PREFECT__CLOUD__AUTH_TOKEN=tok-123 \
		--context PREFECT__CONTEXT__FLOW_RUN_ID=flow-run-1
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runtimeContext, err := contextFromFlags(cmd)
			if err != nil {
				return err
			}
			return a.Render(args[0], runtimeContext)
		},
	}
	cmd.Flags().StringSlice("context", []string{}, "Runtime context entry NAME=value (repeatable)")
	cmd.Flags().String("context-file", "", "YAML or JSON file of runtime context entries")
	return cmd
}
