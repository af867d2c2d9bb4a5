package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"app/internal/media"
	"app/internal/service"
	"app/internal/transform"
)

type errorResponse struct {
	Error string `json:"error"`
	// Retryable signals a transient upstream failure the client may try
	// again, as opposed to a request that can never succeed as-is.
	Retryable bool `json:"retryable,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
// Upstream failures are kept distinct from local not-founds so clients see
// a retryable 502 rather than a misleading 404.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrImageNotFound),
		errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrInsufficientCredits):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, transform.ErrInvalidTransition), errors.Is(err, transform.ErrNothingToApply):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, transform.ErrUnknownField):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, media.ErrUpstream):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Retryable: true})
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
