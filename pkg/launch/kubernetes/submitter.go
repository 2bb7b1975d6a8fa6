// Package kubernetes submits rendered flow-run jobs to a kubernetes cluster
// as batch/v1 Jobs and observes their phase.
package kubernetes

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	batchv1 "k8s.io/api/batch/v1"
	v1 "k8s.io/api/core/v1"
	k8serrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/utils/pointer"

	"github.com/annettefo/prefect/internal/common/util"
	"github.com/annettefo/prefect/pkg/jobspec"
	"github.com/annettefo/prefect/pkg/launch"
)

// Backend is the name kubernetes submissions carry on their handles.
const Backend = "kubernetes"

// LabelFlowRunId marks submitted objects with the flow run they execute.
const LabelFlowRunId = "prefect_flow_run_id"

type Submitter struct {
	client kubernetes.Interface
}

func NewSubmitter(clientProvider ClientProvider) *Submitter {
	return &Submitter{client: clientProvider.Client()}
}

// Submit creates one batch/v1 Job for the rendered job. The object name is
// the template's name prefix plus a fresh suffix, so submitting the same
// rendered job twice creates two distinct objects.
func (s *Submitter) Submit(ctx context.Context, job *jobspec.RenderedJob) (*launch.JobHandle, error) {
	manifest := createJob(job)

	created, err := s.client.BatchV1().Jobs(manifest.Namespace).Create(ctx, manifest, metav1.CreateOptions{})
	if err != nil {
		return nil, errors.WithStack(&launch.ErrSubmissionFailed{
			Backend:   Backend,
			Name:      manifest.Name,
			Namespace: manifest.Namespace,
			Cause:     err,
		})
	}

	log.Infof("Submitted job %s/%s for flow run %s", created.Namespace, created.Name, job.FlowRunId())
	return &launch.JobHandle{
		Name:      created.Name,
		Namespace: created.Namespace,
		Backend:   Backend,
		Uid:       string(created.UID),
	}, nil
}

// Status maps the remote Job onto the run state machine. Completion
// conditions are checked before the active counter so a job that already
// finished is never reported as Running again.
func (s *Submitter) Status(ctx context.Context, handle *launch.JobHandle) (launch.RunState, error) {
	job, err := s.client.BatchV1().Jobs(handle.Namespace).Get(ctx, handle.Name, metav1.GetOptions{})
	if k8serrors.IsNotFound(err) {
		return "", errors.WithStack(&launch.ErrRunNotFound{
			Backend:   Backend,
			Name:      handle.Name,
			Namespace: handle.Namespace,
		})
	}
	if err != nil {
		return "", errors.Wrapf(err, "failed to look up job %s/%s", handle.Namespace, handle.Name)
	}
	return stateOf(job), nil
}

func stateOf(job *batchv1.Job) launch.RunState {
	for _, condition := range job.Status.Conditions {
		if condition.Status != v1.ConditionTrue {
			continue
		}
		switch condition.Type {
		case batchv1.JobComplete:
			return launch.RunStateSucceeded
		case batchv1.JobFailed:
			return launch.RunStateFailed
		}
	}
	if job.Status.Active > 0 {
		return launch.RunStateRunning
	}
	return launch.RunStatePending
}

func createJob(job *jobspec.RenderedJob) *batchv1.Job {
	manifest := job.Manifest()
	manifest.Name = job.NamePrefix + "-" + uniqueSuffix()
	manifest.Labels = util.MergeMaps(manifest.Labels, identityLabels(job))
	manifest.Spec.Template.Labels = util.MergeMaps(manifest.Spec.Template.Labels, identityLabels(job))

	// restartPolicy=Never means no automatic restart on failure, so the job
	// controller must not replace failed pods either.
	if job.RestartPolicy == jobspec.RestartPolicyNever {
		manifest.Spec.BackoffLimit = pointer.Int32(0)
	}
	return manifest
}

func identityLabels(job *jobspec.RenderedJob) map[string]string {
	labels := map[string]string{}
	if flowRunId := job.FlowRunId(); flowRunId != "" {
		labels[LabelFlowRunId] = flowRunId
	}
	return labels
}

// uniqueSuffix returns the 8 hex characters prefect-style job names end in.
func uniqueSuffix() string {
	return strings.Split(uuid.New().String(), "-")[0]
}
