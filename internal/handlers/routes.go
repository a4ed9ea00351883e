package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the API and health endpoints on r.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.LivenessCheck).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/readyz", h.ReadinessCheck).Methods(http.MethodGet)
	r.HandleFunc("/version", h.GetVersion).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/catalog", h.GetCatalog).Methods(http.MethodGet)
	api.HandleFunc("/catalog/enter", h.EnterFolder).Methods(http.MethodPost)
	api.HandleFunc("/catalog/back", h.GoBack).Methods(http.MethodPost)
	api.HandleFunc("/catalog/search", h.SearchCatalog).Methods(http.MethodGet)
	api.HandleFunc("/catalog/next", h.NextPage).Methods(http.MethodGet)
	api.HandleFunc("/catalog/refresh", h.RefreshCatalog).Methods(http.MethodPost)
	api.HandleFunc("/volume", h.GetVolume).Methods(http.MethodGet)
	api.HandleFunc("/book/{path:.*}", h.GetBook).Methods(http.MethodGet)
}
