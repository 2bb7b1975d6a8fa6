package health

import (
	"github.com/gorilla/mux"
)

// SetupHttpMux registers the health endpoint on a router.
func SetupHttpMux(router *mux.Router, checker Checker) {
	handler := NewHealthCheckHttpHandler(checker)
	router.Handle("/health", handler).Methods("GET")
}
