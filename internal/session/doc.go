// Package session tracks which transports are currently attached for each
// user.
//
// A user has at most one hardware transport (the device itself) and any
// number of app transports (mobile or web clients watching the dashboard).
// Registering a second hardware transport displaces the first: the old
// transport is closed and replaced, so a reconnecting device never fights
// its own stale connection.
//
// The registry only tracks attachment. Frame delivery order is guaranteed
// per transport by the transport implementation, not across transports.
package session
