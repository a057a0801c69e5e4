package handlers

import (
	"mrt-od-service/internal/api/dto"
	"net/http"
)

// GeoJSONSource serves a pre-encoded FeatureCollection.
type GeoJSONSource interface {
	GeoJSON() []byte
}

// StationSource lists display names and serves the station layer.
type StationSource interface {
	GeoJSONSource
	Names() []string
}

// StationHandler serves the station list and the map layers.
type StationHandler struct {
	Stations StationSource
	Lines    GeoJSONSource
}

func (h *StationHandler) List(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}

	names := h.Stations.Names()
	if names == nil {
		names = []string{}
	}
	writeJSON(w, r, http.StatusOK, dto.StationListResponse{Stations: names})
}

func (h *StationHandler) StationsGeoJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	writeGeoJSON(w, r, h.Stations.GeoJSON())
}

func (h *StationHandler) LinesGeoJSON(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	if h.Lines == nil {
		writeError(w, r, http.StatusNotFound, "not_found", "line layer not loaded")
		return
	}
	writeGeoJSON(w, r, h.Lines.GeoJSON())
}
