// Package routing orchestrates one request's pass through the core:
// token resolution, pin parsing, widget lookup, write coalescing and frame
// fan-out to the user's live transports.
//
// The router is stateless across requests. It owns no connections and no
// storage; it wires the profile registry, the session registry and the
// delivery dispatcher together and encodes the frames that flow between
// them. Absent transports are skipped, never errors: a write to a user
// with no connected device still succeeds, because the stored value is the
// source of truth.
package routing
