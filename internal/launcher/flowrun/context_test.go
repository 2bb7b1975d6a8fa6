package flowrun

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/annettefo/prefect/internal/launcher/configuration"
	"github.com/annettefo/prefect/pkg/jobspec"
)

func TestNewRuntimeContext_BuildsStandardEntries(t *testing.T) {
	runtimeContext := NewRuntimeContext(
		Params{FlowRunId: "flow-run-1", Image: "prefecthq/prefect:0.14.22", Namespace: "prefect"},
		configuration.CloudConfiguration{
			GraphqlUrl:   "https://api.prefect.io/graphql",
			AuthToken:    "tok-123",
			LogToCloud:   true,
			ExtraLoggers: []string{"boto3"},
		},
	)

	assert.Equal(t, "https://api.prefect.io/graphql", runtimeContext[jobspec.EnvCloudGraphql])
	assert.Equal(t, "tok-123", runtimeContext[jobspec.EnvCloudAuthToken])
	assert.Equal(t, "flow-run-1", runtimeContext[jobspec.EnvFlowRunId])
	assert.Equal(t, "prefecthq/prefect:0.14.22", runtimeContext[jobspec.EnvImage])
	assert.Equal(t, "prefect", runtimeContext[jobspec.EnvNamespace])
	assert.Equal(t, "false", runtimeContext[jobspec.EnvUseLocalSecrets])
	assert.Equal(t, "true", runtimeContext[jobspec.EnvLogToCloud])
	assert.Equal(t, `["boto3"]`, runtimeContext[jobspec.EnvExtraLoggers])
}

func TestNewRuntimeContext_DefaultsRunnerClasses(t *testing.T) {
	runtimeContext := NewRuntimeContext(Params{}, configuration.CloudConfiguration{})

	assert.Equal(t, "prefect.engine.cloud.CloudFlowRunner", runtimeContext[jobspec.EnvFlowRunnerClass])
	assert.Equal(t, "prefect.engine.cloud.CloudTaskRunner", runtimeContext[jobspec.EnvTaskRunnerClass])
}

func TestNewRuntimeContext_RespectsConfiguredRunnerClasses(t *testing.T) {
	runtimeContext := NewRuntimeContext(Params{}, configuration.CloudConfiguration{
		FlowRunnerClass: "prefect.engine.flow_runner.FlowRunner",
		TaskRunnerClass: "prefect.engine.task_runner.TaskRunner",
	})

	assert.Equal(t, "prefect.engine.flow_runner.FlowRunner", runtimeContext[jobspec.EnvFlowRunnerClass])
	assert.Equal(t, "prefect.engine.task_runner.TaskRunner", runtimeContext[jobspec.EnvTaskRunnerClass])
}

func TestNewRuntimeContext_OmitsUnsetOptionalEntries(t *testing.T) {
	runtimeContext := NewRuntimeContext(Params{}, configuration.CloudConfiguration{})

	for _, name := range []string{
		jobspec.EnvCloudGraphql,
		jobspec.EnvCloudAuthToken,
		jobspec.EnvFlowRunId,
		jobspec.EnvImage,
		jobspec.EnvNamespace,
	} {
		_, exists := runtimeContext[name]
		assert.False(t, exists, "expected %s to be absent", name)
	}
}

func TestNewRuntimeContext_StandardEntriesWinOverExtras(t *testing.T) {
	runtimeContext := NewRuntimeContext(
		Params{
			FlowRunId: "flow-run-1",
			Extra: map[string]string{
				jobspec.EnvCloudAuthToken: "spoofed",
				"PREFECT__CUSTOM":         "kept",
			},
		},
		configuration.CloudConfiguration{AuthToken: "tok-123"},
	)

	assert.Equal(t, "tok-123", runtimeContext[jobspec.EnvCloudAuthToken])
	assert.Equal(t, "kept", runtimeContext["PREFECT__CUSTOM"])
}

func TestNewRuntimeContext_EmptyExtraLoggersIsEmptyJsonList(t *testing.T) {
	runtimeContext := NewRuntimeContext(Params{}, configuration.CloudConfiguration{})
	assert.Equal(t, "[]", runtimeContext[jobspec.EnvExtraLoggers])
}
