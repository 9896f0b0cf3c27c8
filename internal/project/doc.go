// Package project holds the domain model for PinHub projects: users, their
// projects ("dashboards"), and the widgets that bind pins to last-known
// values.
//
// The package follows the repository + registry split used across the
// codebase: a Repository persists profiles in SQLite, while the Registry
// keeps the authoritative runtime state in memory and serialises pin writes
// per project. Token resolution, widget lookup and write coalescing all go
// through the Registry.
package project
