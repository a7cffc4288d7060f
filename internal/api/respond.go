package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"recall/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

// statusForError maps a classified error to its HTTP status.
func statusForError(err error) int {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, services.ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// errorMessage returns the client-facing text for err. Internal failures
// are reported generically.
func errorMessage(err error, status int) string {
	if status == http.StatusRequestEntityTooLarge {
		return "File too large"
	}
	if status == http.StatusInternalServerError {
		return "Internal server error"
	}
	if message := strings.TrimSpace(services.Details(err).Message); message != "" {
		return message
	}
	return http.StatusText(status)
}
