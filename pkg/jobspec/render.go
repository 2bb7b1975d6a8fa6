package jobspec

import (
	"github.com/pkg/errors"
	batchv1 "k8s.io/api/batch/v1"
	v1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	"github.com/annettefo/prefect/internal/common/util"
)

// Render substitutes every context reference of the template with the
// matching runtime context entry and returns the rendered job.
//
// Variables are resolved in template order and rendering fails with
// ErrUnresolvedVariable on the first reference the context cannot satisfy;
// nothing is ever silently defaulted. The template is never mutated and equal
// inputs always yield an identical rendered job.
//
// Two context entries additionally steer the rendered job itself:
// PREFECT__CONTEXT__IMAGE replaces the container image for this run, and
// PREFECT__CONTEXT__NAMESPACE decides where the job is submitted (falling
// back to the template's namespace, then to "default").
func Render(template *JobTemplate, runtimeContext RuntimeContext) (*RenderedJob, error) {
	env := make([]EnvValue, 0, len(template.Env))
	for _, entry := range template.Env {
		if entry.Source.IsLiteral() {
			env = append(env, EnvValue{Name: entry.Name, Value: entry.Source.Literal})
			continue
		}
		value, ok := runtimeContext[entry.Source.FromContext]
		if !ok {
			return nil, errors.WithStack(&ErrUnresolvedVariable{Name: entry.Source.FromContext})
		}
		env = append(env, EnvValue{Name: entry.Name, Value: value})
	}

	image := template.Image
	if override, ok := runtimeContext[EnvImage]; ok && override != "" {
		image = override
	}

	namespace := template.Namespace
	if override, ok := runtimeContext[EnvNamespace]; ok && override != "" {
		namespace = override
	}
	if namespace == "" {
		namespace = DefaultNamespace
	}

	return &RenderedJob{
		NamePrefix:         template.NamePrefix,
		Namespace:          namespace,
		Labels:             util.DeepCopy(template.Labels),
		ContainerName:      template.ContainerName,
		Image:              image,
		Command:            copyStrings(template.Command),
		Args:               copyStrings(template.Args),
		Env:                env,
		CPURequest:         template.CPURequest.DeepCopy(),
		CPULimit:           template.CPULimit.DeepCopy(),
		RestartPolicy:      template.RestartPolicy,
		ServiceAccountName: template.ServiceAccountName,
		ImagePullSecrets:   copyStrings(template.ImagePullSecrets),
	}, nil
}

// Manifest converts the rendered job back into a batch/v1 Job manifest.
// The manifest carries the template's name prefix; submitters are expected
// to append their own unique suffix before creating anything.
func (j *RenderedJob) Manifest() *batchv1.Job {
	container := v1.Container{
		Name:    j.ContainerName,
		Image:   j.Image,
		Command: copyStrings(j.Command),
		Args:    copyStrings(j.Args),
		Env:     manifestEnv(j.Env),
	}
	if !j.CPURequest.IsZero() {
		container.Resources.Requests = v1.ResourceList{v1.ResourceCPU: j.CPURequest.DeepCopy()}
	}
	if !j.CPULimit.IsZero() {
		container.Resources.Limits = v1.ResourceList{v1.ResourceCPU: j.CPULimit.DeepCopy()}
	}

	return &batchv1.Job{
		TypeMeta: metav1.TypeMeta{
			APIVersion: expectedApiVersion,
			Kind:       expectedKind,
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      j.NamePrefix,
			Namespace: j.Namespace,
			Labels:    util.DeepCopy(j.Labels),
		},
		Spec: batchv1.JobSpec{
			Template: v1.PodTemplateSpec{
				ObjectMeta: metav1.ObjectMeta{
					Labels: util.DeepCopy(j.Labels),
				},
				Spec: v1.PodSpec{
					Containers:         []v1.Container{container},
					RestartPolicy:      v1.RestartPolicy(j.RestartPolicy),
					ServiceAccountName: j.ServiceAccountName,
					ImagePullSecrets:   pullSecretReferences(j.ImagePullSecrets),
				},
			},
		},
	}
}

func manifestEnv(env []EnvValue) []v1.EnvVar {
	result := make([]v1.EnvVar, 0, len(env))
	for _, entry := range env {
		result = append(result, v1.EnvVar{Name: entry.Name, Value: entry.Value})
	}
	return result
}

func pullSecretReferences(names []string) []v1.LocalObjectReference {
	if len(names) == 0 {
		return nil
	}
	references := make([]v1.LocalObjectReference, 0, len(names))
	for _, name := range names {
		references = append(references, v1.LocalObjectReference{Name: name})
	}
	return references
}
