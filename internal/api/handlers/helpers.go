package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mrt-od-service/internal/api/dto"
	"mrt-od-service/internal/domain"
	"mrt-od-service/internal/services"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Upper bound for request bodies; OD requests are a handful of fields.
const maxBodyBytes = 1 << 16

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).WithError(err).Error("encode failed")
	}
}

func writeGeoJSON(w http.ResponseWriter, r *http.Request, raw []byte) {
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(raw); err != nil {
		logrus.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path}).WithError(err).Error("write failed")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, reason, msg string) {
	writeJSON(w, r, status, dto.ErrorResponse{Error: msg, Reason: reason})
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request, allowed string) {
	w.Header().Set("Allow", allowed)
	writeError(w, r, http.StatusMethodNotAllowed, "method_not_allowed", "method not allowed")
}

var errInvalidBody = errors.New("invalid request body")

// decodeBody reads exactly one JSON object into v.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %w", errInvalidBody, err)
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return fmt.Errorf("%w: body must contain only one JSON object", errInvalidBody)
	}
	return nil
}

// classify maps service errors to an HTTP status and reason code. Only
// client errors expose their message.
func classify(err error) (status int, reason, msg string) {
	switch {
	case errors.Is(err, errInvalidBody):
		return http.StatusBadRequest, "invalid_body", err.Error()
	case errors.Is(err, domain.ErrMissingStation):
		return http.StatusBadRequest, "missing_station", domain.ErrMissingStation.Error()
	case errors.Is(err, domain.ErrInvalidTimeWindow):
		return http.StatusBadRequest, "invalid_time_window", domain.ErrInvalidTimeWindow.Error()
	case errors.Is(err, domain.ErrRenderPending):
		return http.StatusConflict, "render_pending", domain.ErrRenderPending.Error()
	case errors.Is(err, services.ErrQueryTimeout):
		return http.StatusGatewayTimeout, "query_timeout", "query timed out"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "cancelled", "request cancelled"
	default:
		return http.StatusInternalServerError, "internal", "internal server error"
	}
}

func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, reason, msg := classify(err)
	entry := logrus.WithFields(logrus.Fields{"op": op, "reason": reason}).WithError(err)
	if status >= http.StatusInternalServerError {
		entry.Error("request failed")
	} else {
		entry.Debug("request rejected")
	}
	writeError(w, r, status, reason, msg)
}
