// Package launch defines the backend-neutral contract for dispatching
// rendered flow-run jobs to a cluster and observing what became of them.
package launch

import (
	"context"

	"github.com/annettefo/prefect/pkg/jobspec"
)

// RunState is the observed state of a submitted job. Submitted jobs move
// Pending -> Running -> Succeeded or Failed; the terminal states are
// absorbing. This layer only observes the state machine, it never drives it.
type RunState string

const (
	RunStatePending   RunState = "Pending"
	RunStateRunning   RunState = "Running"
	RunStateSucceeded RunState = "Succeeded"
	RunStateFailed    RunState = "Failed"
)

// IsTerminal reports whether the state is one the job can never leave.
func (s RunState) IsTerminal() bool {
	return s == RunStateSucceeded || s == RunStateFailed
}

// JobHandle identifies the remote object a submission created.
type JobHandle struct {
	// Name of the remote object. Unique per submission.
	Name string `json:"name"`
	// Namespace holding the object: a kubernetes namespace, or the ECS
	// cluster name for the fargate backend.
	Namespace string `json:"namespace"`
	// Backend that created the object.
	Backend string `json:"backend"`
	// Uid assigned by the backend: the kubernetes object UID, or the ECS
	// task ARN.
	Uid string `json:"uid,omitempty"`
}

// Submitter dispatches rendered jobs to one specific backend.
//
// Submit is single shot: every call creates exactly one new remote object,
// even for a rendered job that was submitted before, and nothing is retried
// internally. Callers own any retry policy.
type Submitter interface {
	Submit(ctx context.Context, job *jobspec.RenderedJob) (*JobHandle, error)
	// Status reports the current state of a previously submitted job.
	Status(ctx context.Context, handle *JobHandle) (RunState, error)
}
