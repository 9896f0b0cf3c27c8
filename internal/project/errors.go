package project

import "errors"

// Domain errors for the project package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, project.ErrInvalidToken) {
//	    // reject the request
//	}
var (
	// ErrInvalidToken is returned when a token is not known at all.
	ErrInvalidToken = errors.New("project: invalid token")

	// ErrNotFound is returned when a token is known but no project is
	// mapped to it, or a project id does not exist.
	ErrNotFound = errors.New("project: not found")

	// ErrWidgetNotFound is returned when no widget in the project is bound
	// to the requested pin, or a typed widget is missing.
	ErrWidgetNotFound = errors.New("project: widget not found")
)
