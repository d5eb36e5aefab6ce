package net

// EventType distinguishes the Events produced by a Transport.
type EventType int

const (
	// Connected means a new connection, inbound or outbound, is open.
	Connected EventType = iota
	// Received means a well-formed message arrived on a connection.
	Received
	// Disconnected means a connection was closed, by either side or by an
	// error. It is delivered once per connection, after any Received event.
	Disconnected
)

// String ...
func (t EventType) String() string {
	switch t {
	case Connected:
		return "Connected"
	case Received:
		return "Received"
	case Disconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// Event is something that happened on a connection.
type Event struct {
	Type    EventType
	Conn    Conn
	Message Message
}

// Transport provides an interface for network transports
// to allow a node to communicate with other nodes.
type Transport interface {

	// Listen accepts inbound connections until the transport is closed.
	Listen()

	// Consumer returns the channel through which all connection Events are
	// delivered. Events of a given connection are delivered in order.
	Consumer() <-chan Event

	// Connect dials target and, on success, delivers a Connected event for the
	// new connection. It blocks for the duration of the dial.
	Connect(target string) error

	// LocalAddr is used to return our local address
	LocalAddr() string

	// AdvertiseAddr is used to return our advertise address where other peers
	// can reach us
	AdvertiseAddr() string

	// Close permanently closes a transport, stopping
	// any associated goroutines and freeing other resources.
	Close() error
}
