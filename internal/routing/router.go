package routing

import (
	"context"
	"strconv"
	"unicode/utf8"

	"github.com/nerrad567/pinhub-core/internal/pin"
	"github.com/nerrad567/pinhub-core/internal/project"
	"github.com/nerrad567/pinhub-core/internal/protocol"
	"github.com/nerrad567/pinhub-core/internal/session"
)

const (
	// PushMessageID is the fixed correlation id stamped on frames that
	// originate from an HTTP request rather than a transport exchange.
	PushMessageID uint16 = 111

	// MaxNotificationLength is the notification body limit in characters.
	MaxNotificationLength = 255
)

// Logger defines the logging interface used by the router.
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

// Sessions is the slice of the session registry the router needs: find the
// transports to fan a frame out to.
type Sessions interface {
	Hardware(userID string) (session.Transport, bool)
	Apps(userID string) []session.Transport
}

// Dispatcher accepts fire-and-forget delivery work. The router's contract
// is "submitted", not "delivered".
type Dispatcher interface {
	EnqueuePush(deviceToken, message string) bool
	EnqueueMail(to, subject, body string) bool
}

// Mirror republishes committed pin state to an external broker. Optional.
type Mirror interface {
	PublishPinState(projectID int64, addr pin.Address, values []string) error
}

// Telemetry records committed pin writes for time-series storage. Optional.
type Telemetry interface {
	RecordPinWrite(projectID int64, addr pin.Address, values []string)
}

// Deps carries the router's collaborators. Profiles, Sessions and
// Dispatcher are required; Mirror, Telemetry and Logger are optional.
type Deps struct {
	Profiles   *project.Registry
	Sessions   Sessions
	Dispatcher Dispatcher
	Mirror     Mirror
	Telemetry  Telemetry
	Logger     Logger
}

// Router performs per-request orchestration. Safe for concurrent use; all
// mutable state lives in the registries it collaborates with.
type Router struct {
	profiles   *project.Registry
	sessions   Sessions
	dispatcher Dispatcher
	mirror     Mirror
	telemetry  Telemetry
	logger     Logger
}

// New creates a router from its dependencies.
func New(deps Deps) *Router {
	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Router{
		profiles:   deps.Profiles,
		sessions:   deps.Sessions,
		dispatcher: deps.Dispatcher,
		mirror:     deps.Mirror,
		telemetry:  deps.Telemetry,
		logger:     logger,
	}
}

// ReadPin resolves the token, parses the pin and returns the bound
// widget's stored values as a JSON array. Reads never touch the session
// registry; no frame is sent anywhere.
func (r *Router) ReadPin(token, pinSpec string) (string, error) {
	_, projectID, err := r.profiles.ResolveToken(token)
	if err != nil {
		return "", err
	}
	addr, err := pin.Parse(pinSpec)
	if err != nil {
		return "", err
	}
	return r.profiles.PinValue(projectID, addr)
}

// WritePin applies a coalesced write and, when the value changed, fans the
// resulting frames out to the user's live transports. Returns whether the
// write changed the stored value.
//
// The in-memory commit inside ApplyPinWrite is the unit of atomicity:
// everything after it (persistence, mirroring, delivery) is best-effort
// and a missing transport leg is skipped, never an error.
func (r *Router) WritePin(ctx context.Context, token, pinSpec string, values []string) (bool, error) {
	user, projectID, err := r.profiles.ResolveToken(token)
	if err != nil {
		return false, err
	}
	addr, err := pin.Parse(pinSpec)
	if err != nil {
		return false, err
	}

	res, err := r.profiles.ApplyPinWrite(ctx, projectID, addr, values)
	if err != nil {
		return false, err
	}
	if !res.Changed {
		r.logger.Debug("write coalesced", "project_id", projectID, "pin", addr.String())
		return false, nil
	}

	if r.mirror != nil {
		if err := r.mirror.PublishPinState(projectID, addr, values); err != nil {
			r.logger.Warn("state mirror publish failed", "project_id", projectID, "error", err)
		}
	}
	if r.telemetry != nil {
		r.telemetry.RecordPinWrite(projectID, addr, values)
	}

	r.deliver(user.ID, projectID, res.Body)
	return true, nil
}

// deliver sends the hardware frame and the project-id-prefixed app frames
// for one committed write.
func (r *Router) deliver(userID string, projectID int64, body string) {
	hwFrame := protocol.EncodeString(protocol.CmdHardware, PushMessageID, body)
	appBody := strconv.FormatInt(projectID, 10) + protocol.BodySeparator + body
	appFrame := protocol.EncodeString(protocol.CmdHardware, PushMessageID, appBody)

	if hw, ok := r.sessions.Hardware(userID); ok {
		if err := hw.Send(hwFrame); err != nil {
			r.logger.Warn("hardware delivery failed", "user_id", userID, "error", err)
		}
	} else {
		r.logger.Info("no hardware transport, leg skipped", "user_id", userID)
	}

	apps := r.sessions.Apps(userID)
	if len(apps) == 0 {
		r.logger.Info("no app transports, leg skipped", "user_id", userID)
		return
	}
	for _, app := range apps {
		if err := app.Send(appFrame); err != nil {
			r.logger.Warn("app delivery failed", "user_id", userID, "error", err)
		}
	}
}

// Notify validates a push notification request and submits it for
// delivery. Checks short-circuit in order: token, project, body, project
// activity, widget presence, widget initialisation.
func (r *Router) Notify(token, body string) error {
	_, projectID, err := r.profiles.ResolveToken(token)
	if err != nil {
		return err
	}
	proj, err := r.profiles.Snapshot(projectID)
	if err != nil {
		return err
	}

	if body == "" || utf8.RuneCountInString(body) > MaxNotificationLength {
		return ErrNotificationBody
	}
	if !proj.IsActive {
		return ErrProjectInactive
	}

	w, ok := proj.WidgetByKind(project.KindNotification)
	if !ok {
		return ErrNoNotificationWidget
	}
	if !w.HasDeviceToken() {
		return ErrNotificationNotInitialised
	}

	for _, deviceToken := range w.DeviceTokens {
		if deviceToken == "" {
			continue
		}
		if !r.dispatcher.EnqueuePush(deviceToken, body) {
			r.logger.Warn("push submission dropped", "project_id", projectID)
		}
	}
	return nil
}

// Email validates an email request and submits it for delivery. Checks
// short-circuit in order: token, project, field presence, project
// activity, widget presence.
func (r *Router) Email(token, to, subject, body string) error {
	_, projectID, err := r.profiles.ResolveToken(token)
	if err != nil {
		return err
	}
	proj, err := r.profiles.Snapshot(projectID)
	if err != nil {
		return err
	}

	if to == "" || subject == "" {
		return ErrMailFields
	}
	if !proj.IsActive {
		return ErrProjectInactive
	}
	if _, ok := proj.WidgetByKind(project.KindMail); !ok {
		return ErrNoMailWidget
	}

	if !r.dispatcher.EnqueueMail(to, subject, body) {
		r.logger.Warn("mail submission dropped", "project_id", projectID)
	}
	return nil
}
