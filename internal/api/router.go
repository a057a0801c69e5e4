package api

import (
	"mrt-od-service/internal/api/handlers"
	"net/http"
)

// Deps are the services the HTTP layer is composed from.
type Deps struct {
	OD       handlers.ODQuerier
	Flows    handlers.FlowRenderer
	Stats    handlers.StatsProvider
	Stations handlers.StationSource
	Lines    handlers.GeoJSONSource

	CORSOrigin string
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	odHandler := &handlers.ODHandler{Service: d.OD}
	flowHandler := &handlers.FlowHandler{Renderer: d.Flows}
	statsHandler := &handlers.StatsHandler{Service: d.Stats}
	stationHandler := &handlers.StationHandler{Stations: d.Stations, Lines: d.Lines}

	mux.HandleFunc("/", handlers.Home)
	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/api/od", odHandler.Query)
	mux.HandleFunc("/api/flows", flowHandler.Flows)
	mux.HandleFunc("/api/stations", stationHandler.List)
	mux.HandleFunc("/api/stations/geojson", stationHandler.StationsGeoJSON)
	mux.HandleFunc("/api/lines", stationHandler.LinesGeoJSON)
	mux.HandleFunc("/api/stats/hourly", statsHandler.Hourly)
	mux.HandleFunc("/api/stats/routes", statsHandler.Routes)
	mux.HandleFunc("/api/stats/stations", statsHandler.Stations)
	mux.HandleFunc("/api/stats/hourly-average", statsHandler.HourlyAverage)
	mux.HandleFunc("/api/stats/weekdays", statsHandler.Weekdays)
	mux.HandleFunc("/api/stats/monthly", statsHandler.Monthly)

	return requestIDMiddleware(loggingMiddleware(corsMiddleware(d.CORSOrigin, mux)))
}
