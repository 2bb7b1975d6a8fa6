package flowctl

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/annettefo/prefect/internal/launcher/flowrun"
	"github.com/annettefo/prefect/pkg/jobspec"
)

const submitTimeout = 30 * time.Second

// Submit renders a job template and dispatches it once to the configured
// backend, printing the handle of the created object. templatePath falls
// back to the configured template when empty.
func (a *App) Submit(templatePath string, params flowrun.Params) error {
	if params.FlowRunId == "" {
		return errors.Errorf("[flowctl.Submit] a flow run id must be given")
	}
	if templatePath == "" {
		templatePath = a.Params.Launcher.Template.Path
	}
	if templatePath == "" {
		return errors.Errorf("[flowctl.Submit] no template given and none configured")
	}

	template, err := jobspec.Load(templatePath)
	if err != nil {
		return err
	}

	runtimeContext := flowrun.NewRuntimeContext(params, a.Params.Launcher.Cloud)
	rendered, err := jobspec.Render(template, runtimeContext)
	if err != nil {
		return err
	}

	submitter, err := a.submitter()
	if err != nil {
		return errors.Errorf("[flowctl.Submit] error setting up %s backend: %s", a.Params.Launcher.Backend, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitTimeout)
	defer cancel()

	handle, err := submitter.Submit(ctx, rendered)
	if err != nil {
		return err
	}

	b, err := yaml.Marshal(handle)
	if err != nil {
		return errors.Errorf("[flowctl.Submit] error marshalling handle: %s", err)
	}
	fmt.Fprintf(a.Out, "Submitted flow run %s\n", params.FlowRunId)
	fmt.Fprint(a.Out, string(b))
	return nil
}
