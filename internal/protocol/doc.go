// Package protocol implements the server-to-client side of the PinHub binary
// wire protocol.
//
// Every frame exchanged with a hardware or app transport starts with a fixed
// 5-byte header:
//
//	byte 0      command code
//	bytes 1-2   message id (big-endian uint16)
//	bytes 3-4   payload length in bytes (big-endian uint16)
//	bytes 5..N  payload (UTF-8 text for string-carrying commands)
//
// Response frames are header-only: the length slot carries a numeric status
// code instead of a payload length.
//
// The encoder is pure and allocation-conscious: each frame is built in a
// single exactly-sized buffer. Payload semantics are the caller's problem;
// this package only measures and writes bytes.
package protocol
