package protocol

// Command codes understood by hardware and app clients.
// The values are fixed by the wire protocol and must not be renumbered.
const (
	CmdResponse byte = 0
	CmdLogin    byte = 2
	CmdPing     byte = 6
	CmdHardware byte = 20
)

// Status codes carried by response frames.
const (
	StatusOK              uint16 = 200
	StatusIllegalCommand  uint16 = 2
	StatusNotRegistered   uint16 = 3
	StatusNoActiveProject uint16 = 8
	StatusInvalidToken    uint16 = 9
	StatusDeviceNotOnline uint16 = 19
)

// BodySeparator joins the fields of a string-carrying payload
// (pin type tag, pin number, values).
const BodySeparator = "\x00"
