package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleReadPin returns the stored value of the widget bound to the pin.
// The stored value is already a JSON array serialisation, so it is
// written through untouched.
func (s *Server) handleReadPin(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	pinSpec := chi.URLParam(r, "pinSpec")

	value, err := s.router.ReadPin(token, pinSpec)
	if err != nil {
		writeRoutingError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // Best-effort write to response; connection may be closed
	w.Write([]byte(value))
}

// handleWritePin applies a coalesced pin write. The response is 200 for
// both the changed and the unchanged case, and also when no live
// transport received a frame; the stored value is committed regardless.
func (s *Server) handleWritePin(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	pinSpec := chi.URLParam(r, "pinSpec")

	var values []string
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeBadRequest(w, "Body is not a valid JSON array.")
		return
	}

	if _, err := s.router.WritePin(r.Context(), token, pinSpec, values); err != nil {
		writeRoutingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

// notifyRequest is the POST /{token}/notify body.
type notifyRequest struct {
	Body string `json:"body"`
}

// handleNotify validates and submits a push notification.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req notifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Body is empty or larger than 255 chars.")
		return
	}

	if err := s.router.Notify(token, req.Body); err != nil {
		writeRoutingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

// emailRequest is the POST /{token}/email body. Title carries the
// message text; to and subj are required.
type emailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subj"`
	Title   string `json:"title"`
}

// handleEmail validates and submits an email.
func (s *Server) handleEmail(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")

	var req emailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "Email body is wrong. Missing or empty fields 'to', 'subj'.")
		return
	}

	if err := s.router.Email(token, req.To, req.Subject, req.Title); err != nil {
		writeRoutingError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, nil)
}
