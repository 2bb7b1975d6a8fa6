package jobspec

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sigs.k8s.io/yaml"
)

func TestRender(t *testing.T) {
	template := loadValidTemplate(t)

	rendered, err := Render(template, completeContext())
	require.NoError(t, err)

	token, present := rendered.EnvValue(EnvCloudAuthToken)
	assert.True(t, present)
	assert.Equal(t, "tok-123", token)

	logToCloud, present := rendered.EnvValue(EnvLogToCloud)
	assert.True(t, present)
	assert.Equal(t, "true", logToCloud)

	assert.Equal(t, "flow-run-1", rendered.FlowRunId())
	assert.Equal(t, "prefect", rendered.Namespace)
}

func TestRender_IsIdempotent(t *testing.T) {
	template := loadValidTemplate(t)
	runtimeContext := completeContext()

	first, err := Render(template, runtimeContext)
	require.NoError(t, err)
	second, err := Render(template, runtimeContext)
	require.NoError(t, err)

	firstBytes, err := json.Marshal(first)
	require.NoError(t, err)
	secondBytes, err := json.Marshal(second)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(firstBytes, secondBytes))
}

func TestRender_FailsOnFirstMissingVariable(t *testing.T) {
	template := loadValidTemplate(t)
	runtimeContext := completeContext()
	delete(runtimeContext, EnvCloudGraphql)
	delete(runtimeContext, EnvFlowRunId)

	_, err := Render(template, runtimeContext)
	require.Error(t, err)

	// The graphql endpoint comes before the flow-run id in the template,
	// so it is the one the error names.
	var unresolvedErr *ErrUnresolvedVariable
	require.True(t, errors.As(err, &unresolvedErr))
	assert.Equal(t, EnvCloudGraphql, unresolvedErr.Name)
}

func TestRender_FailsWhenNamespaceEntryMissing(t *testing.T) {
	template := loadValidTemplate(t)
	runtimeContext := completeContext()
	delete(runtimeContext, EnvNamespace)

	_, err := Render(template, runtimeContext)
	require.Error(t, err)

	var unresolvedErr *ErrUnresolvedVariable
	require.True(t, errors.As(err, &unresolvedErr))
	assert.Equal(t, EnvNamespace, unresolvedErr.Name)
}

func TestRender_NeverDefaultsSilently(t *testing.T) {
	template := loadValidTemplate(t)

	_, err := Render(template, RuntimeContext{})
	require.Error(t, err)

	var unresolvedErr *ErrUnresolvedVariable
	assert.True(t, errors.As(err, &unresolvedErr))
}

func TestRender_RoundTripPreservesEnvNames(t *testing.T) {
	template := loadValidTemplate(t)

	rendered, err := Render(template, completeContext())
	require.NoError(t, err)

	manifestYaml, err := yaml.Marshal(rendered.Manifest())
	require.NoError(t, err)

	reparsed, err := Parse(bytes.NewReader(manifestYaml))
	require.NoError(t, err)

	require.Len(t, reparsed.Env, len(template.Env))
	for i, entry := range reparsed.Env {
		assert.Equal(t, template.Env[i].Name, entry.Name)
	}

	value, present := envLiteral(reparsed, EnvCloudAuthToken)
	assert.True(t, present)
	assert.Equal(t, "tok-123", value)
}

func TestRender_ImageOverrideFromContext(t *testing.T) {
	template := loadValidTemplate(t)
	runtimeContext := completeContext()
	runtimeContext[EnvImage] = "registry.example.com/flows/etl:2026.08.25"

	rendered, err := Render(template, runtimeContext)
	require.NoError(t, err)

	assert.Equal(t, "registry.example.com/flows/etl:2026.08.25", rendered.Image)
	image, _ := rendered.EnvValue(EnvImage)
	assert.Equal(t, "registry.example.com/flows/etl:2026.08.25", image)
}

func TestRender_NamespacePrecedence(t *testing.T) {
	template := loadValidTemplate(t)
	template.Namespace = "from-template"

	runtimeContext := completeContext()
	runtimeContext[EnvNamespace] = "from-context"
	rendered, err := Render(template, runtimeContext)
	require.NoError(t, err)
	assert.Equal(t, "from-context", rendered.Namespace)

	literalOnly := literalTemplate()
	literalOnly.Namespace = "from-template"
	rendered, err = Render(literalOnly, RuntimeContext{})
	require.NoError(t, err)
	assert.Equal(t, "from-template", rendered.Namespace)

	rendered, err = Render(literalTemplate(), RuntimeContext{})
	require.NoError(t, err)
	assert.Equal(t, DefaultNamespace, rendered.Namespace)
}

func TestRender_DoesNotMutateTemplate(t *testing.T) {
	template := loadValidTemplate(t)
	before, err := json.Marshal(template)
	require.NoError(t, err)

	rendered, err := Render(template, completeContext())
	require.NoError(t, err)

	rendered.Labels["app"] = "changed"
	rendered.Command[0] = "/bin/bash"
	rendered.Env[0].Value = "changed"

	after, err := json.Marshal(template)
	require.NoError(t, err)
	assert.Equal(t, string(before), string(after))
}

func TestRender_LiteralOnlyTemplateNeedsNoContext(t *testing.T) {
	rendered, err := Render(literalTemplate(), nil)
	require.NoError(t, err)

	level, present := rendered.EnvValue("APP_LOG_LEVEL")
	assert.True(t, present)
	assert.Equal(t, "debug", level)
}

func loadValidTemplate(t *testing.T) *JobTemplate {
	t.Helper()
	template, err := Load("testdata/flow-run-job.yaml")
	require.NoError(t, err)
	return template
}

func completeContext() RuntimeContext {
	return RuntimeContext{
		EnvCloudGraphql:   "https://api.prefect.example.com/graphql",
		EnvCloudAuthToken: "tok-123",
		EnvFlowRunId:      "flow-run-1",
		EnvNamespace:      "prefect",
		EnvImage:          "prefecthq/prefect:latest",
	}
}

func literalTemplate() *JobTemplate {
	return &JobTemplate{
		NamePrefix:    "prefect-job",
		ContainerName: "flow-container",
		Image:         "prefecthq/prefect:latest",
		Env: []EnvVar{
			{Name: "APP_LOG_LEVEL", Source: ValueSource{Literal: "debug"}},
		},
		RestartPolicy: RestartPolicyNever,
	}
}

func envLiteral(template *JobTemplate, name string) (string, bool) {
	for _, entry := range template.Env {
		if entry.Name == name && entry.Source.IsLiteral() {
			return entry.Source.Literal, true
		}
	}
	return "", false
}
