// Package server exposes the launcher's HTTP API: one endpoint that
// renders the job template and submits the result, and one that reports
// the state of a previous dispatch.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/annettefo/prefect/internal/common/health"
	"github.com/annettefo/prefect/internal/common/util"
	"github.com/annettefo/prefect/internal/launcher/configuration"
	"github.com/annettefo/prefect/internal/launcher/flowrun"
	"github.com/annettefo/prefect/internal/launcher/metrics"
	"github.com/annettefo/prefect/pkg/jobspec"
	"github.com/annettefo/prefect/pkg/launch"
)

type DispatchServer struct {
	backend   string
	cloud     configuration.CloudConfiguration
	template  *jobspec.JobTemplate
	submitter launch.Submitter
	checker   health.Checker
}

func New(
	config configuration.LauncherConfiguration,
	template *jobspec.JobTemplate,
	submitter launch.Submitter,
	checker health.Checker,
) *DispatchServer {
	return &DispatchServer{
		backend:   config.Backend,
		cloud:     config.Cloud,
		template:  template,
		submitter: submitter,
		checker:   checker,
	}
}

type DispatchRequest struct {
	FlowRunId string            `json:"flowRunId"`
	Image     string            `json:"image,omitempty"`
	Namespace string            `json:"namespace,omitempty"`
	Context   map[string]string `json:"context,omitempty"`
}

type DispatchResponse struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Backend   string `json:"backend"`
	Uid       string `json:"uid,omitempty"`
}

type StatusResponse struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	State     string `json:"state"`
}

func (s *DispatchServer) Router() *mux.Router {
	router := mux.NewRouter()
	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/flow-runs", s.DispatchFlowRun).Methods("POST")
	api.HandleFunc("/flow-runs/{namespace}/{name}", s.FlowRunStatus).Methods("GET")
	health.SetupHttpMux(router, s.checker)
	return router
}

// DispatchFlowRun handles POST /api/v1/flow-runs. Each request is a single
// render and a single submission; nothing is queued and nothing is retried.
func (s *DispatchServer) DispatchFlowRun(w http.ResponseWriter, r *http.Request) {
	var request DispatchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if request.FlowRunId == "" {
		http.Error(w, "flowRunId must be set", http.StatusBadRequest)
		return
	}

	logger := log.WithField("dispatchId", util.NewULID()).WithField("flowRunId", request.FlowRunId)

	runtimeContext := flowrun.NewRuntimeContext(flowrun.Params{
		FlowRunId: request.FlowRunId,
		Image:     request.Image,
		Namespace: request.Namespace,
		Extra:     request.Context,
	}, s.cloud)

	rendered, err := jobspec.Render(s.template, runtimeContext)
	if err != nil {
		metrics.RecordRenderFailure()
		logger.Warnf("Rejected dispatch: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	start := time.Now()
	handle, err := s.submitter.Submit(r.Context(), rendered)
	if err != nil {
		metrics.RecordSubmissionFailure(s.backend)
		logger.Errorf("Submission failed: %v", err)
		http.Error(w, err.Error(), submissionStatusCode(err))
		return
	}
	metrics.RecordSubmission(s.backend, time.Since(start))

	logger.Infof("Dispatched flow run as %s/%s on %s", handle.Namespace, handle.Name, handle.Backend)
	writeJson(w, http.StatusCreated, DispatchResponse{
		Name:      handle.Name,
		Namespace: handle.Namespace,
		Backend:   handle.Backend,
		Uid:       handle.Uid,
	})
}

// FlowRunStatus handles GET /api/v1/flow-runs/{namespace}/{name}.
func (s *DispatchServer) FlowRunStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	handle := &launch.JobHandle{
		Name:      vars["name"],
		Namespace: vars["namespace"],
		Backend:   s.backend,
	}

	state, err := s.submitter.Status(r.Context(), handle)
	if err != nil {
		var notFound *launch.ErrRunNotFound
		if errors.As(err, &notFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		log.Errorf("Status lookup for %s/%s failed: %v", handle.Namespace, handle.Name, err)
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}

	writeJson(w, http.StatusOK, StatusResponse{
		Name:      handle.Name,
		Namespace: handle.Namespace,
		State:     string(state),
	})
}

func submissionStatusCode(err error) int {
	var submissionErr *launch.ErrSubmissionFailed
	if errors.As(err, &submissionErr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJson(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("Failed to write response body: %v", err)
	}
}
