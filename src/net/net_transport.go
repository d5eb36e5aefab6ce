package net

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	// DefaultQueueSize is the default number of messages that can wait in the
	// outbound queue of a connection.
	DefaultQueueSize = 64
)

var (
	// ErrTransportShutdown is returned when operations on a transport are
	// invoked after it's been terminated.
	ErrTransportShutdown = errors.New("transport shutdown")
)

/*
NetworkTransport provides a network based transport that can be used to
communicate with naivechain nodes on remote machines. It requires an underlying
stream layer to provide framed connections, which can be websockets, plain TCP,
or in-memory pipes.

Every connection gets a read loop and a write loop. The read loop decodes
frames into Messages and forwards them, wrapped in Events, to the consumer
channel. Frames that fail to decode are logged and dropped. The write loop
drains the connection's outbound queue.
*/
type NetworkTransport struct {
	logger *logrus.Entry

	conns     map[string]*netConn
	connsLock sync.Mutex
	queueSize int

	consumeCh chan Event

	shutdown     bool
	shutdownCh   chan struct{}
	shutdownLock sync.Mutex

	stream StreamLayer

	timeout time.Duration
}

// NewNetworkTransport creates a new network transport with the given stream
// layer. The queueSize controls how many outbound messages can wait per
// connection. The timeout is used when dialing.
func NewNetworkTransport(
	stream StreamLayer,
	queueSize int,
	timeout time.Duration,
	logger *logrus.Entry,
) *NetworkTransport {

	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	trans := &NetworkTransport{
		conns:      make(map[string]*netConn),
		consumeCh:  make(chan Event),
		logger:     logger,
		queueSize:  queueSize,
		shutdownCh: make(chan struct{}),
		stream:     stream,
		timeout:    timeout,
	}

	return trans
}

// Close is used to stop the network transport.
func (n *NetworkTransport) Close() error {
	n.shutdownLock.Lock()
	defer n.shutdownLock.Unlock()

	if !n.shutdown {
		close(n.shutdownCh)
		n.stream.Close()

		n.connsLock.Lock()
		for _, c := range n.conns {
			c.Close()
		}
		n.connsLock.Unlock()

		n.shutdown = true
	}
	return nil
}

// Consumer implements the Transport interface.
func (n *NetworkTransport) Consumer() <-chan Event {
	return n.consumeCh
}

// LocalAddr implements the Transport interface.
func (n *NetworkTransport) LocalAddr() string {
	return n.stream.Addr()
}

// AdvertiseAddr implements the Transport interface.
func (n *NetworkTransport) AdvertiseAddr() string {
	return n.stream.AdvertiseAddr()
}

// IsShutdown is used to check if the transport is shutdown.
func (n *NetworkTransport) IsShutdown() bool {
	select {
	case <-n.shutdownCh:
		return true
	default:
		return false
	}
}

// NumConns returns the number of open connections.
func (n *NetworkTransport) NumConns() int {
	n.connsLock.Lock()
	defer n.connsLock.Unlock()

	return len(n.conns)
}

// Connect implements the Transport interface.
func (n *NetworkTransport) Connect(target string) error {
	if n.IsShutdown() {
		return ErrTransportShutdown
	}

	frames, err := n.stream.Dial(target, n.timeout)
	if err != nil {
		return err
	}

	n.logger.WithField("target", target).Debug("Dialed peer")

	n.handleConn(frames)

	return nil
}

// Listen opens the stream and handles incoming connections.
func (n *NetworkTransport) Listen() {
	for {
		// Accept incoming connections
		frames, err := n.stream.Accept()
		if err != nil {
			if n.IsShutdown() {
				return
			}
			n.logger.WithField("error", err).Error("Failed to accept connection")
			continue
		}
		n.logger.WithFields(logrus.Fields{
			"node": n.LocalAddr(),
			"from": frames.RemoteAddr(),
		}).Debug("accepted connection")

		n.handleConn(frames)
	}
}

// handleConn registers a new connection, announces it and starts its loops.
// The Connected event is delivered before the read loop starts, so that it
// always precedes the connection's messages.
func (n *NetworkTransport) handleConn(frames FrameConn) {
	conn := newNetConn(frames, n.queueSize, n.logger)

	n.connsLock.Lock()
	n.conns[conn.id] = conn
	n.connsLock.Unlock()

	if !n.emit(Event{Type: Connected, Conn: conn}) {
		n.release(conn)
		return
	}

	go conn.writeLoop()
	go n.readLoop(conn)
}

// readLoop decodes incoming frames for the lifespan of a connection.
func (n *NetworkTransport) readLoop(conn *netConn) {
	defer func() {
		n.release(conn)
		n.emit(Event{Type: Disconnected, Conn: conn})
	}()

	for {
		raw, err := conn.frames.ReadFrame()
		if err != nil {
			if err == io.EOF || conn.isClosed() || n.IsShutdown() {
				conn.logger.Debug("Connection closed")
			} else {
				conn.logger.WithError(err).Debug("Failed to read frame")
			}
			return
		}

		msg, err := DecodeMessage(raw)
		if err != nil {
			conn.logger.WithError(err).Warn("Dropping malformed message")
			continue
		}

		if !n.emit(Event{Type: Received, Conn: conn, Message: msg}) {
			return
		}
	}
}

// release closes a connection and forgets about it.
func (n *NetworkTransport) release(conn *netConn) {
	conn.Close()

	n.connsLock.Lock()
	delete(n.conns, conn.id)
	n.connsLock.Unlock()
}

// emit delivers an Event to the consumer, unless the transport shuts down
// first.
func (n *NetworkTransport) emit(ev Event) bool {
	select {
	case n.consumeCh <- ev:
		return true
	case <-n.shutdownCh:
		return false
	}
}
