package flowctl

import (
	"fmt"

	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"

	"github.com/annettefo/prefect/pkg/jobspec"
)

// Template validates the job template at path and prints its parsed form.
func (a *App) Template(path string) error {
	template, err := jobspec.Load(path)
	if err != nil {
		return err
	}

	b, err := yaml.Marshal(template)
	if err != nil {
		return errors.Errorf("[flowctl.Template] error marshalling template %s: %s", path, err)
	}
	fmt.Fprintf(a.Out, "Loaded job template %s\n", path)
	fmt.Fprint(a.Out, string(b))
	return nil
}
