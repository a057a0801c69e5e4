package handlers

import (
	"context"
	"mrt-od-service/internal/api/dto"
	"mrt-od-service/internal/domain"
	"mrt-od-service/internal/services"
	"net/http"
	"strings"
)

// SessionHeader identifies the client's render session.
const SessionHeader = "X-Session-ID"

// FlowRenderer is the render-session dependency of FlowHandler.
type FlowRenderer interface {
	Refresh(ctx context.Context, sessionID string, q domain.ODQuery) (domain.FlowSet, error)
	Current(sessionID string) domain.FlowSet
	Clear(sessionID string)
}

// FlowHandler renders OD results as curves for the map layer.
type FlowHandler struct {
	Renderer FlowRenderer
}

func sessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	if id := strings.TrimSpace(r.URL.Query().Get("session")); id != "" {
		return id
	}
	return services.DefaultSessionID
}

// Flows serves POST (refresh), GET (current) and DELETE (clear) on one path.
func (h *FlowHandler) Flows(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.refresh(w, r)
	case http.MethodGet:
		writeJSON(w, r, http.StatusOK, dto.NewFlowCollection(h.Renderer.Current(sessionID(r))))
	case http.MethodDelete:
		h.Renderer.Clear(sessionID(r))
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, r, "GET, POST, DELETE")
	}
}

func (h *FlowHandler) refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.ODRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeServiceError(w, r, "flows.refresh", err)
		return
	}

	q, err := req.ToQuery()
	if err != nil {
		writeServiceError(w, r, "flows.refresh", err)
		return
	}

	set, err := h.Renderer.Refresh(r.Context(), sessionID(r), q)
	if err != nil {
		writeServiceError(w, r, "flows.refresh", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewFlowCollection(set))
}
