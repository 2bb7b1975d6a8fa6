// Package flowrun builds the runtime context a flow run is dispatched
// with, combining launcher configuration with per-dispatch parameters.
package flowrun

import (
	"encoding/json"
	"strconv"

	"github.com/annettefo/prefect/internal/launcher/configuration"
	"github.com/annettefo/prefect/pkg/jobspec"
)

const (
	defaultFlowRunnerClass = "prefect.engine.cloud.CloudFlowRunner"
	defaultTaskRunnerClass = "prefect.engine.cloud.CloudTaskRunner"
)

// Params are the per-dispatch inputs supplied by the caller.
type Params struct {
	FlowRunId string
	Image     string
	Namespace string
	Extra     map[string]string
}

// NewRuntimeContext merges caller extras with the standard entries derived
// from cloud configuration and dispatch parameters. Standard entries win
// over extras with the same name. Optional entries are left out entirely
// when unset so that templates referencing them fail to render instead of
// resolving to an empty value.
func NewRuntimeContext(params Params, cloud configuration.CloudConfiguration) jobspec.RuntimeContext {
	runtimeContext := jobspec.RuntimeContext{}
	for name, value := range params.Extra {
		runtimeContext[name] = value
	}

	if cloud.GraphqlUrl != "" {
		runtimeContext[jobspec.EnvCloudGraphql] = cloud.GraphqlUrl
	}
	if cloud.AuthToken != "" {
		runtimeContext[jobspec.EnvCloudAuthToken] = cloud.AuthToken
	}
	runtimeContext[jobspec.EnvUseLocalSecrets] = strconv.FormatBool(cloud.UseLocalSecrets)
	runtimeContext[jobspec.EnvFlowRunnerClass] = orDefault(cloud.FlowRunnerClass, defaultFlowRunnerClass)
	runtimeContext[jobspec.EnvTaskRunnerClass] = orDefault(cloud.TaskRunnerClass, defaultTaskRunnerClass)
	runtimeContext[jobspec.EnvLogToCloud] = strconv.FormatBool(cloud.LogToCloud)
	runtimeContext[jobspec.EnvExtraLoggers] = extraLoggersValue(cloud.ExtraLoggers)

	if params.FlowRunId != "" {
		runtimeContext[jobspec.EnvFlowRunId] = params.FlowRunId
	}
	if params.Image != "" {
		runtimeContext[jobspec.EnvImage] = params.Image
	}
	if params.Namespace != "" {
		runtimeContext[jobspec.EnvNamespace] = params.Namespace
	}
	return runtimeContext
}

func extraLoggersValue(loggers []string) string {
	if loggers == nil {
		loggers = []string{}
	}
	value, _ := json.Marshal(loggers)
	return string(value)
}

func orDefault(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
