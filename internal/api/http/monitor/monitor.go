// Package monitor exposes the supervisor operations over plain HTTP for
// dashboards and curl.
package monitor

import (
	"net/http"

	"github.com/gorilla/mux"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/oshokin/particle-injector/internal/api/grpc/supervisor"
	"github.com/oshokin/particle-injector/internal/logger"
)

// contentTypeJSON is the response content type.
const contentTypeJSON = "application/json"

// Monitor serves /api/status and /api/stop.
type Monitor struct {
	// service is the supervised run.
	service supervisor.Service
	// router dispatches requests.
	router *mux.Router
}

// New builds the HTTP handler for service.
func New(service supervisor.Service) *Monitor {
	m := &Monitor{
		service: service,
		router:  mux.NewRouter(),
	}

	m.router.HandleFunc("/api/status", m.status).Methods(http.MethodGet)
	m.router.HandleFunc("/api/stop", m.stop).Methods(http.MethodPost)

	return m
}

// ServeHTTP implements http.Handler.
func (m *Monitor) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	m.router.ServeHTTP(w, r)
}

func (m *Monitor) status(w http.ResponseWriter, r *http.Request) {
	m.writeStatus(w, r)
}

func (m *Monitor) stop(w http.ResponseWriter, r *http.Request) {
	m.service.RequestStop()

	logger.Info(r.Context(), "Stop requested over HTTP")

	m.writeStatus(w, r)
}

func (m *Monitor) writeStatus(w http.ResponseWriter, r *http.Request) {
	progress := m.service.Status()
	if progress == nil {
		http.Error(w, "no run in progress", http.StatusServiceUnavailable)

		return
	}

	encoded, err := supervisor.ProgressToStruct(progress)
	if err != nil {
		logger.ErrorKV(r.Context(), "Failed to encode status", "error", err)
		http.Error(w, "unable to encode status", http.StatusInternalServerError)

		return
	}

	data, err := protojson.Marshal(encoded)
	if err != nil {
		logger.ErrorKV(r.Context(), "Failed to marshal status", "error", err)
		http.Error(w, "unable to encode status", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)

	if _, err = w.Write(data); err != nil {
		logger.WarnKV(r.Context(), "Failed to write status response", "error", err)
	}
}
