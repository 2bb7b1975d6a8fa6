package jobspec

import (
	"io"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	batchv1 "k8s.io/api/batch/v1"
	v1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/yaml"

	"github.com/annettefo/prefect/internal/common/util"
)

const (
	expectedApiVersion = "batch/v1"
	expectedKind       = "Job"

	// Variables with this prefix belong to the flow container's environment
	// contract. A blank manifest value on such a name is a placeholder
	// awaiting substitution, not an intentional empty literal.
	placeholderPrefix = "PREFECT__"
)

// Load reads the job manifest at filePath and parses it into a template.
func Load(filePath string) (*JobTemplate, error) {
	reader, err := os.Open(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed opening job template %s", filePath)
	}
	defer reader.Close()
	return parse(reader, filePath)
}

// Parse decodes a YAML or JSON job manifest and validates it into a template.
func Parse(reader io.Reader) (*JobTemplate, error) {
	return parse(reader, "")
}

func parse(reader io.Reader, source string) (*JobTemplate, error) {
	manifest := &batchv1.Job{}
	if err := yaml.NewYAMLOrJSONDecoder(reader, 128).Decode(manifest); err != nil {
		return nil, errors.WithStack(invalidTemplate(source, multierror.Append(nil, err)))
	}
	return fromManifest(manifest, source)
}

// FromManifest validates an already decoded Job manifest and extracts the
// template. Everything is copied out of the manifest, so mutating it
// afterwards cannot leak into the returned template.
func FromManifest(manifest *batchv1.Job) (*JobTemplate, error) {
	return fromManifest(manifest, "")
}

func fromManifest(manifest *batchv1.Job, source string) (*JobTemplate, error) {
	var problems *multierror.Error

	if manifest.APIVersion != expectedApiVersion {
		problems = multierror.Append(problems, errors.Errorf("apiVersion must be %q, got %q", expectedApiVersion, manifest.APIVersion))
	}
	if manifest.Kind != expectedKind {
		problems = multierror.Append(problems, errors.Errorf("kind must be %q, got %q", expectedKind, manifest.Kind))
	}
	if manifest.Name == "" {
		problems = multierror.Append(problems, errors.New("metadata.name is required"))
	}

	podSpec := manifest.Spec.Template.Spec
	if len(podSpec.Containers) != 1 {
		problems = multierror.Append(problems, errors.Errorf("exactly one container to run the flow in is required, got %d", len(podSpec.Containers)))
		return nil, errors.WithStack(invalidTemplate(source, problems))
	}
	flowContainer := podSpec.Containers[0]

	if flowContainer.Image == "" {
		problems = multierror.Append(problems, errors.New("container image is required"))
	}

	env, envProblems := classifyEnv(flowContainer.Env)
	problems = multierror.Append(problems, envProblems...)

	cpuRequest := flowContainer.Resources.Requests.Cpu()
	cpuLimit := flowContainer.Resources.Limits.Cpu()
	if cpuRequest.Sign() < 0 {
		problems = multierror.Append(problems, errors.Errorf("cpu request must not be negative, got %s", cpuRequest))
	}
	if cpuLimit.Sign() < 0 {
		problems = multierror.Append(problems, errors.Errorf("cpu limit must not be negative, got %s", cpuLimit))
	}
	if !cpuRequest.IsZero() && !cpuLimit.IsZero() && cpuLimit.Cmp(*cpuRequest) < 0 {
		problems = multierror.Append(problems, errors.Errorf("cpu limit %s is below cpu request %s", cpuLimit, cpuRequest))
	}

	restartPolicy, err := parseRestartPolicy(podSpec.RestartPolicy)
	if err != nil {
		problems = multierror.Append(problems, err)
	}

	if problems.ErrorOrNil() != nil {
		return nil, errors.WithStack(invalidTemplate(source, problems))
	}

	return &JobTemplate{
		NamePrefix:         manifest.Name,
		Namespace:          manifest.Namespace,
		Labels:             util.MergeMaps(manifest.Spec.Template.Labels, manifest.Labels),
		ContainerName:      flowContainer.Name,
		Image:              flowContainer.Image,
		Command:            copyStrings(flowContainer.Command),
		Args:               copyStrings(flowContainer.Args),
		Env:                env,
		CPURequest:         cpuRequest.DeepCopy(),
		CPULimit:           cpuLimit.DeepCopy(),
		RestartPolicy:      restartPolicy,
		ServiceAccountName: podSpec.ServiceAccountName,
		ImagePullSecrets:   pullSecretNames(podSpec.ImagePullSecrets),
	}, nil
}

// classifyEnv turns manifest environment entries into template entries,
// deciding for each whether the manifest value is a literal or a placeholder
// to be resolved from the runtime context. A value equal to the variable's
// own name is a placeholder; so is a blank value on a PREFECT__ name.
func classifyEnv(env []v1.EnvVar) ([]EnvVar, []error) {
	var problems []error
	seen := map[string]bool{}
	entries := make([]EnvVar, 0, len(env))

	for _, entry := range env {
		if entry.Name == "" {
			problems = append(problems, errors.New("environment variables must be named"))
			continue
		}
		if seen[entry.Name] {
			problems = append(problems, errors.Errorf("duplicate environment variable %q", entry.Name))
			continue
		}
		seen[entry.Name] = true

		if entry.ValueFrom != nil {
			problems = append(problems, errors.Errorf("environment variable %q: valueFrom sources are not supported", entry.Name))
			continue
		}

		source := ValueSource{Literal: entry.Value}
		if entry.Value == entry.Name {
			source = ValueSource{FromContext: entry.Name}
		} else if entry.Value == "" && strings.HasPrefix(entry.Name, placeholderPrefix) {
			source = ValueSource{FromContext: entry.Name}
		}
		entries = append(entries, EnvVar{Name: entry.Name, Source: source})
	}
	return entries, problems
}

func parseRestartPolicy(policy v1.RestartPolicy) (RestartPolicy, error) {
	switch policy {
	case v1.RestartPolicyNever:
		return RestartPolicyNever, nil
	case v1.RestartPolicyOnFailure:
		return RestartPolicyOnFailure, nil
	default:
		return "", errors.Errorf("restartPolicy must be %q or %q, got %q", RestartPolicyNever, RestartPolicyOnFailure, policy)
	}
}

func pullSecretNames(secrets []v1.LocalObjectReference) []string {
	if len(secrets) == 0 {
		return nil
	}
	names := make([]string, 0, len(secrets))
	for _, secret := range secrets {
		names = append(names, secret.Name)
	}
	return names
}

func copyStrings(values []string) []string {
	if values == nil {
		return nil
	}
	result := make([]string, len(values))
	copy(result, values)
	return result
}
