// Package pin defines pin addresses: the (type, number) pairs that identify
// a physical or virtual control point on a device.
//
// The external representation is a one-character type tag immediately
// followed by a decimal number, no separator: "V5", "d13", "a0". Parsing is
// case-insensitive; the canonical form uses lowercase tags.
package pin
