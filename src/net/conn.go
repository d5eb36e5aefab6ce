package net

import (
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	// ErrQueueFull is returned by Send when the outbound queue of a connection
	// is full. The message is dropped.
	ErrQueueFull = errors.New("outbound queue full")
	// ErrConnClosed is returned by Send on a closed connection.
	ErrConnClosed = errors.New("connection closed")
)

// Conn is one live connection to a peer. It has no identity beyond itself:
// ID is generated locally when the connection is established.
type Conn interface {
	// ID uniquely identifies the connection within this process.
	ID() string
	// RemoteAddr returns the host:port of the other end.
	RemoteAddr() string
	// Send queues a message for delivery and returns immediately. A nil error
	// does not mean the message was delivered.
	Send(Message) error
	// Close closes the connection. It is safe to call more than once.
	Close() error
}

type netConn struct {
	id     string
	frames FrameConn
	logger *logrus.Entry

	sendCh chan []byte

	closeOnce sync.Once
	closedCh  chan struct{}
}

func newNetConn(frames FrameConn, queueSize int, logger *logrus.Entry) *netConn {
	id := uuid.New().String()
	return &netConn{
		id:     id,
		frames: frames,
		logger: logger.WithFields(logrus.Fields{
			"conn_id": id,
			"remote":  frames.RemoteAddr(),
		}),
		sendCh:   make(chan []byte, queueSize),
		closedCh: make(chan struct{}),
	}
}

// ID implements the Conn interface.
func (c *netConn) ID() string {
	return c.id
}

// RemoteAddr implements the Conn interface.
func (c *netConn) RemoteAddr() string {
	return c.frames.RemoteAddr()
}

// Send implements the Conn interface.
func (c *netConn) Send(m Message) error {
	if c.isClosed() {
		return ErrConnClosed
	}

	raw, err := EncodeMessage(m)
	if err != nil {
		return err
	}

	select {
	case c.sendCh <- raw:
		return nil
	case <-c.closedCh:
		return ErrConnClosed
	default:
		return ErrQueueFull
	}
}

// Close implements the Conn interface.
func (c *netConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.closedCh)
		err = c.frames.Close()
	})
	return err
}

func (c *netConn) isClosed() bool {
	select {
	case <-c.closedCh:
		return true
	default:
		return false
	}
}

// writeLoop writes queued frames until the connection is closed. A write
// error closes the connection, which in turn ends the read loop.
func (c *netConn) writeLoop() {
	for {
		select {
		case raw := <-c.sendCh:
			if err := c.frames.WriteFrame(raw); err != nil {
				c.logger.WithError(err).Debug("Failed to write frame")
				c.Close()
				return
			}
		case <-c.closedCh:
			return
		}
	}
}
