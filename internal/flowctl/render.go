package flowctl

import (
	"fmt"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/annettefo/prefect/pkg/jobspec"
)

// Render resolves the template at path against the given runtime context
// and prints the resulting batch/v1 Job manifest. The context must supply
// every referenced variable; nothing is filled in from configuration.
func (a *App) Render(path string, runtimeContext jobspec.RuntimeContext) error {
	template, err := jobspec.Load(path)
	if err != nil {
		return err
	}

	rendered, err := jobspec.Render(template, runtimeContext)
	if err != nil {
		return err
	}

	b, err := yaml.Marshal(rendered.Manifest())
	if err != nil {
		return errors.Errorf("[flowctl.Render] error marshalling manifest: %s", err)
	}
	fmt.Fprint(a.Out, string(b))
	return nil
}
