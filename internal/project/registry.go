package project

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/nerrad567/pinhub-core/internal/pin"
	"github.com/nerrad567/pinhub-core/internal/protocol"
)

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

// Registry is the authoritative runtime state for users, tokens, projects
// and widget values. It wraps a Repository: profiles are loaded into memory
// on startup via RefreshCache() and widget writes are persisted through.
//
// Token resolution is an O(1) map lookup. Pin writes are serialised per
// project, so two writers racing on the same pin can never both observe
// "unchanged" or apply stale-base updates.
//
// All public methods are safe for concurrent use.
type Registry struct {
	repo   Repository
	logger Logger

	mu       sync.RWMutex // guards the maps below, not project contents
	tokens   map[string]Binding
	users    map[string]User
	projects map[int64]*projectState
}

// projectState couples one project with the lock that serialises access to
// its widgets. Coalescing (compare-and-update) is one critical section here.
type projectState struct {
	mu      sync.RWMutex
	project *Project
}

// WriteResult reports the outcome of a coalesced pin write.
type WriteResult struct {
	// Changed is false when the incoming values matched the stored ones
	// and the write was suppressed.
	Changed bool

	// Body is the wire text payload for the hardware frame, only set when
	// Changed is true: pin type tag, pin number and values joined by the
	// protocol body separator.
	Body string
}

// NewRegistry creates a new project registry.
// The repository is used for persistence; the registry adds the in-memory
// runtime state.
func NewRegistry(repo Repository) *Registry {
	return &Registry{
		repo:     repo,
		logger:   noopLogger{},
		tokens:   make(map[string]Binding),
		users:    make(map[string]User),
		projects: make(map[int64]*projectState),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// RefreshCache reloads all profiles and token bindings from the repository.
// This should be called on application startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	profiles, err := r.repo.LoadProfiles(ctx)
	if err != nil {
		return fmt.Errorf("loading profiles: %w", err)
	}
	tokens, err := r.repo.LoadTokens(ctx)
	if err != nil {
		return fmt.Errorf("loading tokens: %w", err)
	}

	users := make(map[string]User, len(profiles))
	projects := make(map[int64]*projectState)
	for _, prof := range profiles {
		users[prof.User.ID] = prof.User
		for _, p := range prof.Projects {
			projects[p.ID] = &projectState{project: p}
		}
	}

	r.mu.Lock()
	r.users = users
	r.projects = projects
	r.tokens = tokens
	r.mu.Unlock()

	r.logger.Info("project cache refreshed",
		"users", len(users),
		"projects", len(projects),
		"tokens", len(tokens),
	)
	return nil
}

// ResolveToken maps an authentication token to its owning user and project.
//
// The two miss conditions are distinct: an unknown token yields
// ErrInvalidToken, a known token without a mapped project yields
// ErrNotFound. No fallback project is ever substituted.
func (r *Registry) ResolveToken(token string) (User, int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	binding, ok := r.tokens[token]
	if !ok {
		return User{}, 0, ErrInvalidToken
	}
	if _, ok := r.projects[binding.ProjectID]; !ok {
		return User{}, 0, ErrNotFound
	}
	user, ok := r.users[binding.UserID]
	if !ok {
		return User{}, 0, ErrInvalidToken
	}
	return user, binding.ProjectID, nil
}

// Snapshot returns an independent deep copy of a project.
// Callers can inspect it freely without holding any locks.
func (r *Registry) Snapshot(projectID int64) (*Project, error) {
	state, err := r.state(projectID)
	if err != nil {
		return nil, err
	}

	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.project.DeepCopy(), nil
}

// PinValue returns the JSON serialisation of the values stored for the
// widget bound to addr. Returns ErrWidgetNotFound when no widget is bound.
func (r *Registry) PinValue(projectID int64, addr pin.Address) (string, error) {
	state, err := r.state(projectID)
	if err != nil {
		return "", err
	}

	state.mu.RLock()
	defer state.mu.RUnlock()

	w, ok := state.project.WidgetByPin(addr)
	if !ok {
		return "", ErrWidgetNotFound
	}
	return w.JSONValue(), nil
}

// ApplyPinWrite performs the coalesced write for one pin: compare the
// incoming values with the stored ones, suppress the write when identical,
// otherwise commit the new values and produce the hardware frame body.
//
// The compare-and-update is a single critical section per project. The
// in-memory commit is the unit of atomicity: once it happens the write
// survives caller cancellation, and the write-through to the repository is
// best-effort (a persistence failure is logged, never rolled back).
func (r *Registry) ApplyPinWrite(ctx context.Context, projectID int64, addr pin.Address, values []string) (WriteResult, error) {
	state, err := r.state(projectID)
	if err != nil {
		return WriteResult{}, err
	}

	state.mu.Lock()
	w, ok := state.project.WidgetByPin(addr)
	if !ok {
		state.mu.Unlock()
		return WriteResult{}, ErrWidgetNotFound
	}

	if equalValues(w.Values, values) {
		state.mu.Unlock()
		return WriteResult{Changed: false}, nil
	}

	w.Values = append([]string(nil), values...)
	widgetID := w.ID
	state.mu.Unlock()

	if err := r.repo.UpdateWidgetValues(ctx, widgetID, values); err != nil {
		r.logger.Warn("widget value persistence failed",
			"widget_id", widgetID,
			"project_id", projectID,
			"error", err,
		)
	}

	return WriteResult{Changed: true, Body: HardwareBody(addr, values)}, nil
}

// ProjectCount returns the number of cached projects.
func (r *Registry) ProjectCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.projects)
}

// state looks up the lock-carrying entry for a project.
func (r *Registry) state(projectID int64) (*projectState, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.projects[projectID]
	if !ok {
		return nil, ErrNotFound
	}
	return state, nil
}

// HardwareBody builds the wire text payload for a pin write: the pin type
// tag, the pin number and the values, joined by the protocol body separator.
func HardwareBody(addr pin.Address, values []string) string {
	parts := make([]string, 0, 2+len(values))
	parts = append(parts, string(addr.Type.Tag()), strconv.Itoa(int(addr.Number)))
	parts = append(parts, values...)
	return strings.Join(parts, protocol.BodySeparator)
}

// equalValues reports whether two value slices are identical.
func equalValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
