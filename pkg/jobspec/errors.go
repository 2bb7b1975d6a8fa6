package jobspec

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// ErrInvalidTemplate is returned by Load and Parse when a manifest does not
// describe a usable job template.
//
// Validation does not stop at the first problem; Problems accumulates every
// failure found (as a multierror.Error) so that a template author can fix a
// manifest in one pass.
type ErrInvalidTemplate struct {
	// Source identifies where the template came from, e.g., a file path.
	// Optional; omitted from the error message when empty.
	Source string
	// Problems holds one entry per validation failure.
	Problems error
}

func (err *ErrInvalidTemplate) Error() string {
	if err.Source != "" {
		return fmt.Sprintf("invalid job template %q: %s", err.Source, err.Problems)
	}
	return fmt.Sprintf("invalid job template: %s", err.Problems)
}

func (err *ErrInvalidTemplate) Unwrap() error {
	return err.Problems
}

func invalidTemplate(source string, problems *multierror.Error) *ErrInvalidTemplate {
	return &ErrInvalidTemplate{Source: source, Problems: problems.ErrorOrNil()}
}

// ErrUnresolvedVariable is returned by Render when the runtime context has no
// entry for a context reference of the template. Rendering resolves variables
// in template order and fails on the first one it cannot resolve, so Name is
// deterministic for a given template and context.
type ErrUnresolvedVariable struct {
	// Name of the environment variable that could not be resolved.
	Name string
}

func (err *ErrUnresolvedVariable) Error() string {
	return fmt.Sprintf("no runtime context entry for environment variable %q", err.Name)
}
