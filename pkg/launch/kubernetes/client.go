package kubernetes

import (
	log "github.com/sirupsen/logrus"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// ClientProvider hands out the client used to talk to the cluster.
type ClientProvider interface {
	Client() kubernetes.Interface
}

type ConfigClientProvider struct {
	restConfig *rest.Config
	client     kubernetes.Interface
}

// NewClientProvider connects with in-cluster configuration when running
// inside a pod and falls back to the local kubeconfig otherwise. Zero qps or
// burst leave the client defaults in place.
func NewClientProvider(qps float32, burst int) (*ConfigClientProvider, error) {
	config, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if qps > 0 {
		config.QPS = qps
	}
	if burst > 0 {
		config.Burst = burst
	}

	client, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, err
	}

	return &ConfigClientProvider{restConfig: config, client: client}, nil
}

func (c *ConfigClientProvider) Client() kubernetes.Interface {
	return c.client
}

func loadConfig() (*rest.Config, error) {
	config, err := rest.InClusterConfig()
	if err == rest.ErrNotInCluster {
		log.Info("Running with default client configuration")
		rules := clientcmd.NewDefaultClientConfigLoadingRules()
		overrides := &clientcmd.ConfigOverrides{}
		return clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
	}
	if err != nil {
		return nil, err
	}
	log.Info("Running with in cluster client configuration")
	return config, nil
}
