package net

import (
	"time"
)

// FrameConn is a connection carrying discrete frames.
type FrameConn interface {
	// ReadFrame blocks until a whole frame is available.
	ReadFrame() ([]byte, error)
	// WriteFrame writes one frame. It is only called from one goroutine.
	WriteFrame([]byte) error
	// RemoteAddr returns the address of the other end.
	RemoteAddr() string
	// Close closes the connection. Pending ReadFrame calls return an error.
	Close() error
}

// StreamLayer is used with the NetworkTransport to provide the low level
// connections.
type StreamLayer interface {
	// Accept waits for the next inbound connection.
	Accept() (FrameConn, error)

	// Dial is used to create a new outgoing connection
	Dial(address string, timeout time.Duration) (FrameConn, error)

	// Close stops accepting connections.
	Close() error

	// Addr returns the local address of the stream
	Addr() string

	// AdvertiseAddr returns the publicly-reachable address of the stream
	AdvertiseAddr() string
}
