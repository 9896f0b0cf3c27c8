package protocol

import "encoding/binary"

// HeaderLength is the fixed size of the frame header in bytes.
const HeaderLength = 5

// MaxPayloadLength is the largest payload a frame can carry.
// The header's length field is an unsigned 16-bit integer.
const MaxPayloadLength = 0xFFFF

// Encode builds a wire frame for the given command, message id and payload.
// The result is a single exactly-sized buffer; the payload is copied in
// directly after the header. Callers must guarantee
// len(payload) <= MaxPayloadLength.
func Encode(cmd byte, messageID uint16, payload []byte) []byte {
	buf := make([]byte, HeaderLength+len(payload))
	buf[0] = cmd
	binary.BigEndian.PutUint16(buf[1:3], messageID)
	binary.BigEndian.PutUint16(buf[3:5], uint16(len(payload)))
	copy(buf[HeaderLength:], payload)
	return buf
}

// EncodeString builds a wire frame carrying a UTF-8 text payload.
// The length field counts encoded bytes, not characters.
func EncodeString(cmd byte, messageID uint16, body string) []byte {
	buf := make([]byte, HeaderLength+len(body))
	buf[0] = cmd
	binary.BigEndian.PutUint16(buf[1:3], messageID)
	binary.BigEndian.PutUint16(buf[3:5], uint16(len(body)))
	copy(buf[HeaderLength:], body)
	return buf
}

// EncodeResponse builds a header-only response frame. The payload length
// slot carries the status code; there is no body.
func EncodeResponse(messageID uint16, status uint16) []byte {
	buf := make([]byte, HeaderLength)
	buf[0] = CmdResponse
	binary.BigEndian.PutUint16(buf[1:3], messageID)
	binary.BigEndian.PutUint16(buf[3:5], status)
	return buf
}
