package session

import "sync"

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// session holds the live transports for one user.
type session struct {
	hardware Transport
	apps     []Transport
}

// Registry maps user ids to their attached transports.
// All methods are safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*session
	logger   Logger
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*session),
		logger:   noopLogger{},
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Register attaches a transport for a user.
//
// For Hardware, a previously attached transport is displaced: it is removed
// from the registry and closed, and the new transport takes its place.
// For App, the transport is added alongside any existing ones.
func (r *Registry) Register(userID string, kind Kind, t Transport) {
	var displaced Transport

	r.mu.Lock()
	s, ok := r.sessions[userID]
	if !ok {
		s = &session{}
		r.sessions[userID] = s
	}
	switch kind {
	case Hardware:
		displaced = s.hardware
		s.hardware = t
	case App:
		s.apps = append(s.apps, t)
	}
	r.mu.Unlock()

	if displaced != nil {
		// Close outside the lock; transports may block on teardown.
		if err := displaced.Close(); err != nil {
			r.logger.Warn("closing displaced hardware transport", "user_id", userID, "error", err)
		}
		r.logger.Info("hardware transport displaced", "user_id", userID)
	}
	r.logger.Debug("transport registered", "user_id", userID, "kind", kind.String())
}

// Unregister detaches a transport for a user. The transport is matched by
// identity; unknown transports are ignored. The registry does not close the
// transport, the caller owns teardown on its own disconnect path.
func (r *Registry) Unregister(userID string, t Transport) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[userID]
	if !ok {
		return
	}
	if s.hardware == t {
		s.hardware = nil
	}
	for i, app := range s.apps {
		if app == t {
			s.apps = append(s.apps[:i], s.apps[i+1:]...)
			break
		}
	}
	if s.hardware == nil && len(s.apps) == 0 {
		delete(r.sessions, userID)
	}
}

// Hardware returns the user's hardware transport, if one is attached.
func (r *Registry) Hardware(userID string) (Transport, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[userID]
	if !ok || s.hardware == nil {
		return nil, false
	}
	return s.hardware, true
}

// Apps returns a snapshot of the user's app transports. The returned slice
// is independent; callers can range over it without holding locks.
func (r *Registry) Apps(userID string) []Transport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[userID]
	if !ok || len(s.apps) == 0 {
		return nil
	}
	return append([]Transport(nil), s.apps...)
}

// UserCount returns the number of users with at least one attached transport.
func (r *Registry) UserCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// TransportCount returns the total number of attached transports.
func (r *Registry) TransportCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, s := range r.sessions {
		if s.hardware != nil {
			n++
		}
		n += len(s.apps)
	}
	return n
}
