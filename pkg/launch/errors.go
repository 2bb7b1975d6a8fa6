package launch

import (
	"fmt"
)

// ErrSubmissionFailed is returned when a backend could not create the remote
// object for a rendered job. It wraps the backend's own error; use
// errors.Unwrap (or errors.As/Is) to get at the cause.
type ErrSubmissionFailed struct {
	// Backend the submission went to, e.g., "kubernetes" or "fargate".
	Backend string
	// Name the remote object would have had.
	Name string
	// Namespace the object would have been created in.
	Namespace string
	// Cause is the underlying backend error.
	Cause error
}

func (err *ErrSubmissionFailed) Error() string {
	return fmt.Sprintf("failed to submit job %s/%s to %s backend: %s", err.Namespace, err.Name, err.Backend, err.Cause)
}

func (err *ErrSubmissionFailed) Unwrap() error {
	return err.Cause
}

// ErrRunNotFound is returned by Status when the backend has no record of
// the run. Backends forget finished runs eventually, so a handle that once
// resolved can stop resolving.
type ErrRunNotFound struct {
	Backend   string
	Name      string
	Namespace string
}

func (err *ErrRunNotFound) Error() string {
	return fmt.Sprintf("no run named %s in %s on %s backend", err.Name, err.Namespace, err.Backend)
}
