package configuration

import (
	"github.com/annettefo/prefect/pkg/launch/fargate"
)

type TemplateConfiguration struct {
	// Path to the batch/v1 Job manifest rendered for every flow run.
	Path string `validate:"required"`
}

// CloudConfiguration holds the values injected into the runtime context
// of every dispatch. Placeholders in the template resolve against these.
type CloudConfiguration struct {
	GraphqlUrl      string
	AuthToken       string
	UseLocalSecrets bool
	FlowRunnerClass string
	TaskRunnerClass string
	LogToCloud      bool
	ExtraLoggers    []string
}

type KubernetesConfiguration struct {
	QPS   float32
	Burst int
}

type LauncherConfiguration struct {
	HttpPort    uint16 `validate:"required"`
	MetricsPort uint16 `validate:"nefield=HttpPort"`
	// Backend selects where flow runs execute, either kubernetes or fargate.
	Backend    string `validate:"required,oneof=kubernetes fargate"`
	Template   TemplateConfiguration
	Cloud      CloudConfiguration
	Kubernetes KubernetesConfiguration
	Fargate    fargate.Configuration
}
