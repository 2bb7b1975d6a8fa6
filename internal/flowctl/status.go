package flowctl

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/annettefo/prefect/pkg/launch"
)

const statusTimeout = 30 * time.Second

// Status prints the state of a previously submitted flow-run job.
func (a *App) Status(namespace string, name string) error {
	submitter, err := a.submitter()
	if err != nil {
		return errors.Errorf("[flowctl.Status] error setting up %s backend: %s", a.Params.Launcher.Backend, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), statusTimeout)
	defer cancel()

	state, err := submitter.Status(ctx, &launch.JobHandle{
		Name:      name,
		Namespace: namespace,
		Backend:   a.Params.Launcher.Backend,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "%s\n", state)
	return nil
}
