package app

import (
	"github.com/gorilla/mux"

	"github.com/beebopboop22/ourphil-events/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Unified event listings
	r.HandleFunc("/api/events", deps.AggregatorHandler.GetMonth).Queries("year", "{year}", "month", "{month}").Methods("GET")
	r.HandleFunc("/api/events/weekend", deps.AggregatorHandler.GetWeekend).Methods("GET")
	r.HandleFunc("/api/events/day", deps.AggregatorHandler.GetDay).Queries("date", "{date}").Methods("GET")
	r.HandleFunc("/api/events/nearby", deps.AggregatorHandler.GetNearby).Queries("area", "{area}").Methods("GET")
}
