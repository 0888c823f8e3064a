package api

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/caretrack/hospital-backend/internal/apperr"
)

// envelope is the uniform response body: {success, message, data?}.
type envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("write response body")
	}
}

func writeSuccess(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, envelope{Success: true, Message: message, Data: data})
}

// writeError maps the error kind to an HTTP status exactly once for the
// whole API.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
		message = err.Error()
	case apperr.KindNotFound:
		status = http.StatusNotFound
		message = err.Error()
	case apperr.KindConflict:
		status = http.StatusConflict
		message = err.Error()
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
		message = err.Error()
	default:
		log.Error().Err(err).Msg("unexpected error")
	}

	writeJSON(w, status, envelope{Success: false, Message: message})
}

func badRequest(w http.ResponseWriter, message string) {
	writeError(w, apperr.Validation("invalid_request", message))
}
