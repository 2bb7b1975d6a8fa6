package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

type staticChecker struct {
	err error
}

func (c *staticChecker) Check() error {
	return c.err
}

func TestHealthCheckHttpHandler_ReturnsNoContentWhenHealthy(t *testing.T) {
	handler := NewHealthCheckHttpHandler(&staticChecker{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestHealthCheckHttpHandler_ReturnsServiceUnavailableWithReason(t *testing.T) {
	handler := NewHealthCheckHttpHandler(&staticChecker{err: errors.New("startup not complete")})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusServiceUnavailable, recorder.Code)
	assert.Equal(t, "startup not complete", recorder.Body.String())
}

func TestSetupHttpMux_RegistersHealthEndpoint(t *testing.T) {
	router := mux.NewRouter()
	SetupHttpMux(router, &staticChecker{})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest("GET", "/health", nil))

	assert.Equal(t, http.StatusNoContent, recorder.Code)
}

func TestMultiChecker_CombinesFailures(t *testing.T) {
	checker := NewMultiChecker(&staticChecker{err: errors.New("first")})
	checker.Add(&staticChecker{err: errors.New("second")})

	err := checker.Check()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "first")
	assert.Contains(t, err.Error(), "second")
}

func TestMultiChecker_PassesWhenAllCheckersPass(t *testing.T) {
	checker := NewMultiChecker(&staticChecker{}, &staticChecker{})
	assert.NoError(t, checker.Check())
}

func TestStartupCompleteChecker(t *testing.T) {
	checker := NewStartupCompleteChecker()
	assert.Error(t, checker.Check())

	checker.MarkComplete()
	assert.NoError(t, checker.Check())
}
