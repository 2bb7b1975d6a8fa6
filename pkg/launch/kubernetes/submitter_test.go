package kubernetes

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	batchv1 "k8s.io/api/batch/v1"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/kubernetes/fake"
	clientTesting "k8s.io/client-go/testing"

	"github.com/annettefo/prefect/pkg/jobspec"
	"github.com/annettefo/prefect/pkg/launch"
)

func TestSubmit(t *testing.T) {
	submitter, client := setupSubmitterTest()
	job := renderedJob()

	handle, err := submitter.Submit(context.Background(), job)
	require.NoError(t, err)

	require.Equal(t, 1, len(client.Fake.Actions()))
	assert.True(t, client.Fake.Actions()[0].Matches("create", "jobs"))

	createAction, ok := client.Fake.Actions()[0].(clientTesting.CreateAction)
	require.True(t, ok)
	created, ok := createAction.GetObject().(*batchv1.Job)
	require.True(t, ok)

	assert.True(t, strings.HasPrefix(created.Name, "prefect-job-"))
	assert.Equal(t, created.Name, handle.Name)
	assert.Equal(t, "prefect", handle.Namespace)
	assert.Equal(t, Backend, handle.Backend)

	assert.Equal(t, "flow-run-1", created.Labels[LabelFlowRunId])
	assert.Equal(t, "flow-run-1", created.Spec.Template.Labels[LabelFlowRunId])
	assert.Equal(t, v1.RestartPolicyNever, created.Spec.Template.Spec.RestartPolicy)
	require.NotNil(t, created.Spec.BackoffLimit)
	assert.Equal(t, int32(0), *created.Spec.BackoffLimit)

	container := created.Spec.Template.Spec.Containers[0]
	assert.Equal(t, "flow-container", container.Name)
	assert.Equal(t, "prefecthq/prefect:latest", container.Image)
	assert.Equal(t, "100m", container.Resources.Requests.Cpu().String())
	assert.Equal(t, "100m", container.Resources.Limits.Cpu().String())
	require.Len(t, container.Env, 2)
	assert.Equal(t, v1.EnvVar{Name: jobspec.EnvCloudAuthToken, Value: "tok-123"}, container.Env[0])
	assert.Equal(t, v1.EnvVar{Name: jobspec.EnvFlowRunId, Value: "flow-run-1"}, container.Env[1])
}

func TestSubmit_TwiceCreatesTwoDistinctJobs(t *testing.T) {
	submitter, client := setupSubmitterTest()
	job := renderedJob()

	first, err := submitter.Submit(context.Background(), job)
	require.NoError(t, err)
	second, err := submitter.Submit(context.Background(), job)
	require.NoError(t, err)

	assert.NotEqual(t, first.Name, second.Name)
	assert.Equal(t, 2, len(client.Fake.Actions()))
}

func TestSubmit_WrapsClusterError(t *testing.T) {
	submitter, client := setupSubmitterTest()
	client.Fake.PrependReactor("create", "jobs", func(action clientTesting.Action) (bool, runtime.Object, error) {
		return true, nil, errors.New("server busy")
	})

	_, err := submitter.Submit(context.Background(), renderedJob())
	require.Error(t, err)

	var submissionErr *launch.ErrSubmissionFailed
	require.True(t, errors.As(err, &submissionErr))
	assert.Equal(t, Backend, submissionErr.Backend)
	assert.Equal(t, "prefect", submissionErr.Namespace)
	assert.Contains(t, submissionErr.Cause.Error(), "server busy")
}

func TestStatus(t *testing.T) {
	scenarios := map[launch.RunState]batchv1.JobStatus{
		launch.RunStatePending: {},
		launch.RunStateRunning: {Active: 1},
		launch.RunStateSucceeded: {
			Conditions: []batchv1.JobCondition{{Type: batchv1.JobComplete, Status: v1.ConditionTrue}},
		},
		launch.RunStateFailed: {
			Conditions: []batchv1.JobCondition{{Type: batchv1.JobFailed, Status: v1.ConditionTrue}},
		},
	}

	for expected, status := range scenarios {
		remote := &batchv1.Job{
			ObjectMeta: metav1.ObjectMeta{Name: "prefect-job-a1b2c3d4", Namespace: "prefect"},
			Status:     status,
		}
		submitter := NewSubmitter(&fakeClientProvider{client: fake.NewSimpleClientset(remote)})

		state, err := submitter.Status(context.Background(), &launch.JobHandle{
			Name:      "prefect-job-a1b2c3d4",
			Namespace: "prefect",
			Backend:   Backend,
		})
		require.NoError(t, err)
		assert.Equal(t, expected, state)
	}
}

func TestStatus_TerminalStateWinsOverActiveCount(t *testing.T) {
	remote := &batchv1.Job{
		ObjectMeta: metav1.ObjectMeta{Name: "prefect-job-a1b2c3d4", Namespace: "prefect"},
		Status: batchv1.JobStatus{
			Active:     1,
			Conditions: []batchv1.JobCondition{{Type: batchv1.JobFailed, Status: v1.ConditionTrue}},
		},
	}
	submitter := NewSubmitter(&fakeClientProvider{client: fake.NewSimpleClientset(remote)})

	state, err := submitter.Status(context.Background(), &launch.JobHandle{
		Name:      "prefect-job-a1b2c3d4",
		Namespace: "prefect",
		Backend:   Backend,
	})
	require.NoError(t, err)
	assert.Equal(t, launch.RunStateFailed, state)
}

func TestStatus_UnknownJob(t *testing.T) {
	submitter, _ := setupSubmitterTest()

	_, err := submitter.Status(context.Background(), &launch.JobHandle{
		Name:      "prefect-job-gone",
		Namespace: "prefect",
		Backend:   Backend,
	})
	require.Error(t, err)

	var notFound *launch.ErrRunNotFound
	assert.True(t, errors.As(err, &notFound))
}

func setupSubmitterTest() (*Submitter, *fake.Clientset) {
	client := fake.NewSimpleClientset()
	return NewSubmitter(&fakeClientProvider{client: client}), client
}

type fakeClientProvider struct {
	client *fake.Clientset
}

func (p *fakeClientProvider) Client() kubernetes.Interface {
	return p.client
}

func renderedJob() *jobspec.RenderedJob {
	return &jobspec.RenderedJob{
		NamePrefix:    "prefect-job",
		Namespace:     "prefect",
		Labels:        map[string]string{"app": "prefect-job"},
		ContainerName: "flow-container",
		Image:         "prefecthq/prefect:latest",
		Command:       []string{"/bin/sh", "-c"},
		Args:          []string{"prefect execute flow-run"},
		Env: []jobspec.EnvValue{
			{Name: jobspec.EnvCloudAuthToken, Value: "tok-123"},
			{Name: jobspec.EnvFlowRunId, Value: "flow-run-1"},
		},
		CPURequest:    resource.MustParse("100m"),
		CPULimit:      resource.MustParse("100m"),
		RestartPolicy: jobspec.RestartPolicyNever,
	}
}
