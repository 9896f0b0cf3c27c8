package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Health check
	r.Get("/health", s.handleHealth)

	// Live transports
	r.Get("/ws/hardware", s.handleHardwareWS)
	r.Get("/ws/app", s.handleAppWS)

	// Token-addressed pin and messaging endpoints. The token is the only
	// credential; there is no separate auth layer.
	r.Route("/{token}", func(r chi.Router) {
		r.Get("/pin/{pinSpec}", s.handleReadPin)
		r.Put("/pin/{pinSpec}", s.handleWritePin)
		r.Post("/notify", s.handleNotify)
		r.Post("/email", s.handleEmail)
	})

	return r
}

// routePattern returns the matched chi route pattern, falling back to the
// raw path for unmatched requests.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"version":    s.version,
		"projects":   s.profiles.ProjectCount(),
		"transports": s.sessions.TransportCount(),
	})
}
