package routing

import "errors"

// Validation errors for the notify and email paths. Checks short-circuit
// in a fixed order, so each failure carries its own sentinel.
var (
	// ErrProjectInactive is returned when the project's activity flag is
	// off. Notify and email are gated on it; pin reads and writes are not.
	ErrProjectInactive = errors.New("routing: project is not active")

	// ErrNotificationBody is returned when a notification body is empty or
	// longer than MaxNotificationLength characters.
	ErrNotificationBody = errors.New("routing: notification body missing or too long")

	// ErrNoNotificationWidget is returned when the project has no
	// notification widget.
	ErrNoNotificationWidget = errors.New("routing: no notification widget")

	// ErrNotificationNotInitialised is returned when the notification
	// widget exists but holds no registered device token.
	ErrNotificationNotInitialised = errors.New("routing: notification widget not initialised")

	// ErrNoMailWidget is returned when the project has no mail widget.
	ErrNoMailWidget = errors.New("routing: no mail widget")

	// ErrMailFields is returned when the email request is missing a
	// recipient or a subject.
	ErrMailFields = errors.New("routing: missing or empty mail fields")
)
