package session

// Transport is a bidirectional connection that can accept outbound frames.
// Implementations must make Send safe for concurrent use and must not block
// indefinitely; a slow consumer should fail or drop rather than stall the
// caller.
type Transport interface {
	// Send queues one encoded frame for delivery.
	Send(frame []byte) error

	// Close tears the connection down. Safe to call more than once.
	Close() error
}

// Kind distinguishes the two transport roles attached to a user.
type Kind int

// Transport kinds.
const (
	// Hardware is the device connection. At most one per user.
	Hardware Kind = iota

	// App is a dashboard client connection. Any number per user.
	App
)

// String implements fmt.Stringer for log output.
func (k Kind) String() string {
	switch k {
	case Hardware:
		return "hardware"
	case App:
		return "app"
	default:
		return "unknown"
	}
}
