package handler

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hive-corporation/casebridge/internal/core/actions"
)

// RestHandler exposes the connector actions over HTTP. Every action goes
// through the registry, so the REST surface and the CLI dispatch the same
// code.
type RestHandler struct {
	registry *actions.Registry
}

func NewRestHandler(registry *actions.Registry) *RestHandler {
	return &RestHandler{registry: registry}
}

// Router builds the HTTP routes.
func (h *RestHandler) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	r.HandleFunc("/actions", h.ListActions).Methods("GET")
	r.HandleFunc("/actions/{name}", h.RunAction).Methods("POST")
	return r
}

// Health check endpoint
func (h *RestHandler) Health(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "casebridge-api",
	}
	writeJSON(w, http.StatusOK, response)
}

// ListActions returns the registered action identifiers.
func (h *RestHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"actions": h.registry.Names(),
	})
}

// RunAction dispatches one named action with JSON-encoded parameters.
func (h *RestHandler) RunAction(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	params := actions.Params{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
			writeError(w, http.StatusBadRequest, "invalid parameters body")
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.registry.Run(ctx, name, params)
	if err != nil {
		log.Printf("action %s failed: %v", name, err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"action": name,
		"result": result,
	})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
