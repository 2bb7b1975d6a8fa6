// Package launcher wires the dispatch service together: it loads the job
// template once at startup, connects the configured backend, and serves
// the HTTP API until shut down.
package launcher

import (
	"context"
	"fmt"
	"os"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/annettefo/prefect/internal/common"
	commonconfig "github.com/annettefo/prefect/internal/common/config"
	"github.com/annettefo/prefect/internal/common/health"
	"github.com/annettefo/prefect/internal/launcher/configuration"
	"github.com/annettefo/prefect/internal/launcher/server"
	"github.com/annettefo/prefect/pkg/jobspec"
	"github.com/annettefo/prefect/pkg/launch"
	"github.com/annettefo/prefect/pkg/launch/fargate"
	"github.com/annettefo/prefect/pkg/launch/kubernetes"
)

func StartUp(config configuration.LauncherConfiguration, healthChecker health.Checker) (func(), *sync.WaitGroup) {
	err := config.Validate()
	if err != nil {
		commonconfig.LogValidationErrors(err)
		os.Exit(-1)
	}

	template, err := jobspec.Load(config.Template.Path)
	if err != nil {
		log.Errorf("Failed to load job template: %s", err)
		os.Exit(-1)
	}

	submitter, err := NewSubmitter(config)
	if err != nil {
		log.Errorf("Failed to set up %s backend: %s", config.Backend, err)
		os.Exit(-1)
	}

	wg := &sync.WaitGroup{}
	wg.Add(1)

	dispatchServer := server.New(config, template, submitter, healthChecker)
	shutdownHttpServer := common.ServeHttp(config.HttpPort, dispatchServer.Router())

	log.Infof("Dispatching flow runs to the %s backend using template %s", config.Backend, config.Template.Path)

	return func() {
		shutdownHttpServer()
		wg.Done()
	}, wg
}

// NewSubmitter builds the backend named by the configuration. Shared with
// flowctl, which dispatches through the same backends.
func NewSubmitter(config configuration.LauncherConfiguration) (launch.Submitter, error) {
	switch config.Backend {
	case kubernetes.Backend:
		clientProvider, err := kubernetes.NewClientProvider(config.Kubernetes.QPS, config.Kubernetes.Burst)
		if err != nil {
			return nil, err
		}
		return kubernetes.NewSubmitter(clientProvider), nil
	case fargate.Backend:
		return fargate.NewSubmitter(context.Background(), config.Fargate)
	default:
		return nil, fmt.Errorf("unknown backend %q", config.Backend)
	}
}
