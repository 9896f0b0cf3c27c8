package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/pinhub-core/internal/pin"
	"github.com/nerrad567/pinhub-core/internal/project"
	"github.com/nerrad567/pinhub-core/internal/routing"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorised"
	ErrCodeInternal     = "internal_error"
)

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeUnauthorized writes a 401 error response.
func writeUnauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, ErrCodeUnauthorized, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// reasonFor maps a routing or lookup failure to the caller-facing reason
// string. Every validation step has its own reason, so clients can tell
// a bad token from a bad pin from an inactive project. Unknown errors
// yield an empty string and are treated as internal.
func reasonFor(err error) string {
	switch {
	case errors.Is(err, project.ErrInvalidToken):
		return "Invalid token."
	case errors.Is(err, project.ErrNotFound):
		return "Didn't find dash id for token."
	case errors.Is(err, pin.ErrMalformed):
		return "Wrong pin format."
	case errors.Is(err, project.ErrWidgetNotFound):
		return "Requested pin not exists in app."
	case errors.Is(err, routing.ErrNotificationBody):
		return "Body is empty or larger than 255 chars."
	case errors.Is(err, routing.ErrProjectInactive):
		return "Project is not active."
	case errors.Is(err, routing.ErrNoNotificationWidget),
		errors.Is(err, routing.ErrNotificationNotInitialised):
		return "No notification widget or widget not initialized."
	case errors.Is(err, routing.ErrNoMailWidget):
		return "No email widget."
	case errors.Is(err, routing.ErrMailFields):
		return "Email body is wrong. Missing or empty fields 'to', 'subj'."
	default:
		return ""
	}
}

// writeRoutingError writes the mapped 400 reason, or a 500 when the
// failure is not a recognised validation outcome.
func writeRoutingError(w http.ResponseWriter, err error) {
	reason := reasonFor(err)
	if reason == "" {
		writeInternalError(w, "internal server error")
		return
	}
	writeBadRequest(w, reason)
}
