package handlers

import (
	"mrt-od-service/internal/api/dto"
	"mrt-od-service/internal/services"
	"net/http"
)

// ODQuerier is the query dependency of ODHandler.
type ODQuerier = services.ODQuerier

// ODHandler exposes the origin-destination query.
type ODHandler struct {
	Service ODQuerier
}

func (h *ODHandler) Query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, r, http.MethodPost)
		return
	}

	var req dto.ODRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeODError(w, r, err)
		return
	}

	q, err := req.ToQuery()
	if err != nil {
		writeODError(w, r, err)
		return
	}

	rs, err := h.Service.Query(r.Context(), q)
	if err != nil {
		writeODError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewODRows(rs.Rows))
}

// Client errors keep the array contract by carrying an empty results field.
func writeODError(w http.ResponseWriter, r *http.Request, err error) {
	status, reason, msg := classify(err)
	if status != http.StatusBadRequest {
		writeServiceError(w, r, "od.query", err)
		return
	}

	writeJSON(w, r, status, dto.ODErrorResponse{
		ErrorResponse: dto.ErrorResponse{Error: msg, Reason: reason},
		Results:       []dto.ODRowResponse{},
	})
}
