// Package flowctl implements the commands behind the flowctl binary:
// validating and rendering flow-run job templates, dispatching them to a
// backend, and checking on earlier dispatches.
package flowctl

import (
	"io"
	"os"

	"github.com/annettefo/prefect/internal/launcher"
	"github.com/annettefo/prefect/internal/launcher/configuration"
	"github.com/annettefo/prefect/pkg/launch"
)

// App is the central object for flowctl commands. Methods write to Out so
// tests can capture their output.
type App struct {
	Params *Params
	Out    io.Writer

	// Submitter, when set, is used instead of the backend built from
	// Params. Tests inject fakes through it.
	Submitter launch.Submitter
}

// Params groups the parameters for a flowctl invocation, loaded from the
// launcher configuration files.
type Params struct {
	Launcher configuration.LauncherConfiguration
}

func New() *App {
	return &App{
		Params: &Params{},
		Out:    os.Stdout,
	}
}

func (a *App) submitter() (launch.Submitter, error) {
	if a.Submitter != nil {
		return a.Submitter, nil
	}
	return launcher.NewSubmitter(a.Params.Launcher)
}
