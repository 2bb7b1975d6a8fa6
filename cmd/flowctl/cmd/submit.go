package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/annettefo/prefect/internal/flowctl"
	"github.com/annettefo/prefect/internal/launcher/flowrun"
)

func submitCmd() *cobra.Command {
	a := flowctl.New()
	cmd := &cobra.Command{
		Use:   "submit --flow-run-id ID",
		Short: "Render the job template and submit it once to the configured backend",
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return initParams(cmd, a.Params)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			templatePath, err := cmd.Flags().GetString("template")
			if err != nil {
				return errors.Wrap(err, "error reading template flag")
			}
			flowRunId, err := cmd.Flags().GetString("flow-run-id")
			if err != nil {
				return errors.Wrap(err, "error reading flow-run-id flag")
			}
			image, err := cmd.Flags().GetString("image")
			if err != nil {
				return errors.Wrap(err, "error reading image flag")
			}
			namespace, err := cmd.Flags().GetString("namespace")
			if err != nil {
				return errors.Wrap(err, "error reading namespace flag")
			}
			extra, err := contextFromFlags(cmd)
			if err != nil {
				return err
			}

			return a.Submit(templatePath, flowrun.Params{
				FlowRunId: flowRunId,
				Image:     image,
				Namespace: namespace,
				Extra:     extra,
			})
		},
	}
	cmd.Flags().String("template", "", "Path to the job template (defaults to the configured template)")
	cmd.Flags().String("flow-run-id", "", "Id of the flow run the job executes")
	cmd.Flags().String("image", "", "Image override for this dispatch")
	cmd.Flags().String("namespace", "", "Namespace override for this dispatch")
	cmd.Flags().StringSlice("context", []string{}, "Extra runtime context entry NAME=value (repeatable)")
	cmd.Flags().String("context-file", "", "YAML or JSON file of extra runtime context entries")
	return cmd
}
