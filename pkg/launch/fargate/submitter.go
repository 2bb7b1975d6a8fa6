// Package fargate launches rendered jobs as AWS Fargate tasks. A task
// definition is registered once per template family and each submission
// runs one task with the rendered environment applied as container
// overrides.
package fargate

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecstypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/annettefo/prefect/pkg/jobspec"
	"github.com/annettefo/prefect/pkg/launch"
)

const Backend = "fargate"

const (
	defaultCluster    = "default"
	defaultLaunchType = "FARGATE"
	defaultTaskCPU    = "256"
	defaultTaskMemory = "512"
)

// ECSAPI is the subset of the ECS control plane used to launch flow runs.
type ECSAPI interface {
	DescribeTaskDefinition(ctx context.Context, params *ecs.DescribeTaskDefinitionInput, optFns ...func(*ecs.Options)) (*ecs.DescribeTaskDefinitionOutput, error)
	RegisterTaskDefinition(ctx context.Context, params *ecs.RegisterTaskDefinitionInput, optFns ...func(*ecs.Options)) (*ecs.RegisterTaskDefinitionOutput, error)
	RunTask(ctx context.Context, params *ecs.RunTaskInput, optFns ...func(*ecs.Options)) (*ecs.RunTaskOutput, error)
	DescribeTasks(ctx context.Context, params *ecs.DescribeTasksInput, optFns ...func(*ecs.Options)) (*ecs.DescribeTasksOutput, error)
}

type Configuration struct {
	Region           string
	Cluster          string
	LaunchType       string
	Subnets          []string
	SecurityGroups   []string
	AssignPublicIP   bool
	TaskRoleArn      string
	ExecutionRoleArn string
	TaskCPU          string
	TaskMemory       string
}

type Submitter struct {
	client ECSAPI
	config Configuration
}

// NewSubmitter loads AWS credentials from the default chain and connects
// to ECS in the configured region.
func NewSubmitter(ctx context.Context, config Configuration) (*Submitter, error) {
	options := []func(*awsconfig.LoadOptions) error{}
	if config.Region != "" {
		options = append(options, awsconfig.WithRegion(config.Region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, options...)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return NewSubmitterWithClient(ecs.NewFromConfig(cfg), config), nil
}

func NewSubmitterWithClient(client ECSAPI, config Configuration) *Submitter {
	if config.Cluster == "" {
		config.Cluster = defaultCluster
	}
	if config.LaunchType == "" {
		config.LaunchType = defaultLaunchType
	}
	if config.TaskCPU == "" {
		config.TaskCPU = defaultTaskCPU
	}
	if config.TaskMemory == "" {
		config.TaskMemory = defaultTaskMemory
	}
	return &Submitter{client: client, config: config}
}

// Submit registers the task definition for the job family if ECS does not
// know it yet, then runs a single task. The rendered environment travels
// as container overrides so the shared definition stays free of run
// specific values.
func (s *Submitter) Submit(ctx context.Context, job *jobspec.RenderedJob) (*launch.JobHandle, error) {
	if err := s.ensureTaskDefinition(ctx, job); err != nil {
		return nil, s.submissionError(job, err)
	}

	input := &ecs.RunTaskInput{
		Cluster:        aws.String(s.config.Cluster),
		TaskDefinition: aws.String(job.NamePrefix),
		LaunchType:     ecstypes.LaunchType(s.config.LaunchType),
		Count:          aws.Int32(1),
		Overrides: &ecstypes.TaskOverride{
			ContainerOverrides: []ecstypes.ContainerOverride{
				{
					Name:        aws.String(job.ContainerName),
					Environment: environmentOf(job),
				},
			},
		},
	}
	if flowRunId := job.FlowRunId(); flowRunId != "" {
		input.StartedBy = aws.String(flowRunId)
	}
	if len(s.config.Subnets) > 0 {
		input.NetworkConfiguration = s.networkConfiguration()
	}

	result, err := s.client.RunTask(ctx, input)
	if err != nil {
		return nil, s.submissionError(job, err)
	}
	if len(result.Tasks) == 0 {
		return nil, s.submissionError(job, errors.New(failureReason(result.Failures)))
	}

	taskArn := aws.ToString(result.Tasks[0].TaskArn)
	handle := &launch.JobHandle{
		Name:      taskIdOf(taskArn),
		Namespace: s.config.Cluster,
		Backend:   Backend,
		Uid:       taskArn,
	}
	log.Infof("Started Fargate task %s on cluster %s for flow run %s", handle.Name, handle.Namespace, job.FlowRunId())
	return handle, nil
}

// Status reports the state of a previously started task. ECS keeps
// stopped tasks visible for about an hour, after which lookups fail.
func (s *Submitter) Status(ctx context.Context, handle *launch.JobHandle) (launch.RunState, error) {
	taskRef := handle.Uid
	if taskRef == "" {
		taskRef = handle.Name
	}
	result, err := s.client.DescribeTasks(ctx, &ecs.DescribeTasksInput{
		Cluster: aws.String(handle.Namespace),
		Tasks:   []string{taskRef},
	})
	if err != nil {
		return "", errors.WithStack(err)
	}
	if len(result.Tasks) == 0 {
		return "", errors.WithStack(&launch.ErrRunNotFound{
			Backend:   Backend,
			Name:      handle.Name,
			Namespace: handle.Namespace,
		})
	}
	return stateOf(result.Tasks[0]), nil
}

func (s *Submitter) ensureTaskDefinition(ctx context.Context, job *jobspec.RenderedJob) error {
	_, err := s.client.DescribeTaskDefinition(ctx, &ecs.DescribeTaskDefinitionInput{
		TaskDefinition: aws.String(job.NamePrefix),
	})
	if err == nil {
		return nil
	}

	container := ecstypes.ContainerDefinition{
		Name:       aws.String(job.ContainerName),
		Image:      aws.String(job.Image),
		EntryPoint: job.Command,
		Command:    job.Args,
		Essential:  aws.Bool(true),
	}
	if !job.CPURequest.IsZero() {
		container.Cpu = int32(job.CPURequest.MilliValue() * 1024 / 1000)
	}

	input := &ecs.RegisterTaskDefinitionInput{
		Family:                  aws.String(job.NamePrefix),
		ContainerDefinitions:    []ecstypes.ContainerDefinition{container},
		RequiresCompatibilities: []ecstypes.Compatibility{ecstypes.CompatibilityFargate},
		NetworkMode:             ecstypes.NetworkModeAwsvpc,
		Cpu:                     aws.String(s.config.TaskCPU),
		Memory:                  aws.String(s.config.TaskMemory),
	}
	if s.config.TaskRoleArn != "" {
		input.TaskRoleArn = aws.String(s.config.TaskRoleArn)
	}
	if s.config.ExecutionRoleArn != "" {
		input.ExecutionRoleArn = aws.String(s.config.ExecutionRoleArn)
	}

	registered, err := s.client.RegisterTaskDefinition(ctx, input)
	if err != nil {
		return err
	}
	log.Infof("Registered task definition %s revision %d", job.NamePrefix, registered.TaskDefinition.Revision)
	return nil
}

func (s *Submitter) networkConfiguration() *ecstypes.NetworkConfiguration {
	assignPublicIp := ecstypes.AssignPublicIpDisabled
	if s.config.AssignPublicIP {
		assignPublicIp = ecstypes.AssignPublicIpEnabled
	}
	return &ecstypes.NetworkConfiguration{
		AwsvpcConfiguration: &ecstypes.AwsVpcConfiguration{
			Subnets:        s.config.Subnets,
			SecurityGroups: s.config.SecurityGroups,
			AssignPublicIp: assignPublicIp,
		},
	}
}

func (s *Submitter) submissionError(job *jobspec.RenderedJob, cause error) error {
	return errors.WithStack(&launch.ErrSubmissionFailed{
		Backend:   Backend,
		Name:      job.NamePrefix,
		Namespace: s.config.Cluster,
		Cause:     cause,
	})
}

func stateOf(task ecstypes.Task) launch.RunState {
	switch aws.ToString(task.LastStatus) {
	case "PROVISIONING", "PENDING", "ACTIVATING":
		return launch.RunStatePending
	case "RUNNING", "DEACTIVATING", "STOPPING", "DEPROVISIONING":
		return launch.RunStateRunning
	case "STOPPED":
		return stoppedState(task)
	default:
		return launch.RunStatePending
	}
}

// stoppedState treats a stopped task as succeeded only when every
// container reports exit code zero. A container without an exit code
// never ran, which counts as a failure.
func stoppedState(task ecstypes.Task) launch.RunState {
	for _, container := range task.Containers {
		if container.ExitCode == nil || *container.ExitCode != 0 {
			return launch.RunStateFailed
		}
	}
	return launch.RunStateSucceeded
}

// taskIdOf extracts the task id from an ARN of the form
// arn:aws:ecs:region:account:task/cluster/id.
func taskIdOf(taskArn string) string {
	parts := strings.Split(taskArn, "/")
	return parts[len(parts)-1]
}

func environmentOf(job *jobspec.RenderedJob) []ecstypes.KeyValuePair {
	environment := make([]ecstypes.KeyValuePair, 0, len(job.Env))
	for _, env := range job.Env {
		environment = append(environment, ecstypes.KeyValuePair{
			Name:  aws.String(env.Name),
			Value: aws.String(env.Value),
		})
	}
	return environment
}

func failureReason(failures []ecstypes.Failure) string {
	if len(failures) == 0 {
		return "no tasks started and no failure reported"
	}
	reasons := make([]string, 0, len(failures))
	for _, failure := range failures {
		reasons = append(reasons, aws.ToString(failure.Reason))
	}
	return strings.Join(reasons, ", ")
}
