package api

import (
	"github.com/gorilla/mux"
)

// SetupRoutes configures the page and API routes
func SetupRoutes(handler *Handler) *mux.Router {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// Dashboard page
	r.HandleFunc("/", handler.Dashboard).Methods("GET")
	r.HandleFunc("/refresh", handler.RefreshPage).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/status", handler.GetStatus).Methods("GET")
	api.HandleFunc("/refresh", handler.Refresh).Methods("POST")

	// Opportunity routes
	api.HandleFunc("/opportunities", handler.ListOpportunities).Methods("GET")
	api.HandleFunc("/opportunities/{ticker}", handler.GetOpportunity).Methods("GET")
	api.HandleFunc("/opportunities/{ticker}/history", handler.GetHistory).Methods("GET")

	// Selection routes
	api.HandleFunc("/selection", handler.GetSelection).Methods("GET")
	api.HandleFunc("/selection", handler.SetSelection).Methods("PUT")
	api.HandleFunc("/selection", handler.ClearSelection).Methods("DELETE")

	return r
}
