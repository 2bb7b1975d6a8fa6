// Package jobspec models parameterised flow-run job manifests: loading them
// into an immutable template, resolving placeholder environment variables from
// a caller-supplied runtime context, and producing a fully rendered job ready
// for submission.
package jobspec

import (
	"k8s.io/apimachinery/pkg/api/resource"
)

// Environment variables the flow container expects to be concrete before it
// starts. Templates normally reference these by name and the values are
// supplied through the RuntimeContext at render time.
const (
	EnvCloudGraphql    = "PREFECT__CLOUD__GRAPHQL"
	EnvCloudAuthToken  = "PREFECT__CLOUD__AUTH_TOKEN"
	EnvFlowRunId       = "PREFECT__CONTEXT__FLOW_RUN_ID"
	EnvNamespace       = "PREFECT__CONTEXT__NAMESPACE"
	EnvImage           = "PREFECT__CONTEXT__IMAGE"
	EnvUseLocalSecrets = "PREFECT__CLOUD__USE_LOCAL_SECRETS"
	EnvFlowRunnerClass = "PREFECT__ENGINE__FLOW_RUNNER__DEFAULT_CLASS"
	EnvTaskRunnerClass = "PREFECT__ENGINE__TASK_RUNNER__DEFAULT_CLASS"
	EnvLogToCloud      = "PREFECT__LOGGING__LOG_TO_CLOUD"
	EnvExtraLoggers    = "PREFECT__LOGGING__EXTRA_LOGGERS"
)

// DefaultNamespace is used when neither the runtime context nor the template
// specify where submitted jobs should live.
const DefaultNamespace = "default"

// RestartPolicy controls what the cluster does with containers that exit.
// Jobs run to completion, so Always is not valid here.
type RestartPolicy string

const (
	RestartPolicyNever     RestartPolicy = "Never"
	RestartPolicyOnFailure RestartPolicy = "OnFailure"
)

// ValueSource describes where an environment variable value comes from.
// A source is either a literal carried verbatim from the manifest or a
// reference into the runtime context supplied at render time.
type ValueSource struct {
	// Literal value to use verbatim. Only meaningful when FromContext is empty.
	Literal string
	// FromContext names the runtime context entry supplying the value.
	FromContext string
}

// IsLiteral reports whether the source carries its value verbatim rather than
// referencing the runtime context.
func (s ValueSource) IsLiteral() bool {
	return s.FromContext == ""
}

// EnvVar is a single environment variable entry of a job template.
// Entries keep the order they had in the manifest.
type EnvVar struct {
	Name   string
	Source ValueSource
}

// JobTemplate is the parsed and validated form of a flow-run job manifest.
// It is created once by Load (or Parse) and never mutated afterwards;
// rendering copies everything it needs.
type JobTemplate struct {
	// NamePrefix is the manifest's metadata.name. Submitted objects get a
	// fresh unique suffix appended, so the prefix may be shared by many runs.
	NamePrefix string
	// Namespace the manifest asked for, or empty if it did not.
	Namespace string
	// Labels applied to submitted objects, from metadata.labels.
	Labels map[string]string

	// ContainerName of the flow container (the first container of the manifest).
	ContainerName string
	// Image the flow container runs. The runtime context may override it
	// per run through the PREFECT__CONTEXT__IMAGE entry.
	Image   string
	Command []string
	Args    []string
	// Env in manifest order. Rendering resolves every FromContext source
	// against the runtime context.
	Env []EnvVar

	CPURequest resource.Quantity
	CPULimit   resource.Quantity

	RestartPolicy      RestartPolicy
	ServiceAccountName string
	ImagePullSecrets   []string
}

// RuntimeContext supplies values for the context references of a template.
// It is owned by the caller and read once per Render call.
type RuntimeContext map[string]string

// EnvValue is a fully resolved environment variable of a rendered job.
type EnvValue struct {
	Name  string
	Value string
}

// RenderedJob is a job template with every context reference substituted.
// It is immutable and deterministic: rendering the same template with the
// same context always produces an identical value. Uniqueness of submitted
// object names is the submitter's concern, not the rendered job's.
type RenderedJob struct {
	NamePrefix string
	Namespace  string
	Labels     map[string]string

	ContainerName string
	Image         string
	Command       []string
	Args          []string
	Env           []EnvValue

	CPURequest resource.Quantity
	CPULimit   resource.Quantity

	RestartPolicy      RestartPolicy
	ServiceAccountName string
	ImagePullSecrets   []string
}

// EnvValue returns the resolved value of the named environment variable and
// whether the rendered job carries it.
func (j *RenderedJob) EnvValue(name string) (string, bool) {
	for _, entry := range j.Env {
		if entry.Name == name {
			return entry.Value, true
		}
	}
	return "", false
}

// FlowRunId returns the flow-run identifier the job was rendered for, or an
// empty string if the template does not carry one.
func (j *RenderedJob) FlowRunId() string {
	value, _ := j.EnvValue(EnvFlowRunId)
	return value
}
