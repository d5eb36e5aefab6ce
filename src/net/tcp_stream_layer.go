package net

import (
	"bufio"
	"errors"
	"net"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	errNotAdvertisable = errors.New("local bind address is not advertisable")
	errNotTCP          = errors.New("local address is not a TCP address")
)

// lineConn frames messages as newline-terminated lines. JSON encoding never
// produces raw newlines, so a line is always a whole message.
type lineConn struct {
	conn   net.Conn
	r      *bufio.Reader
	w      *bufio.Writer
	remote string
}

func newLineConn(conn net.Conn, remote string) *lineConn {
	if remote == "" {
		remote = conn.RemoteAddr().String()
	}
	return &lineConn{
		conn:   conn,
		r:      bufio.NewReader(conn),
		w:      bufio.NewWriter(conn),
		remote: remote,
	}
}

// ReadFrame implements the FrameConn interface.
func (l *lineConn) ReadFrame() ([]byte, error) {
	line, err := l.r.ReadBytes('\n')
	if err != nil {
		return nil, err
	}
	return line[:len(line)-1], nil
}

// WriteFrame implements the FrameConn interface.
func (l *lineConn) WriteFrame(frame []byte) error {
	if _, err := l.w.Write(frame); err != nil {
		return err
	}
	if err := l.w.WriteByte('\n'); err != nil {
		return err
	}
	return l.w.Flush()
}

// RemoteAddr implements the FrameConn interface.
func (l *lineConn) RemoteAddr() string {
	return l.remote
}

// Close implements the FrameConn interface.
func (l *lineConn) Close() error {
	return l.conn.Close()
}

// TCPStreamLayer implements StreamLayer interface for plain TCP.
type TCPStreamLayer struct {
	advertise string
	listener  *net.TCPListener
}

// Dial implements the StreamLayer interface.
func (t *TCPStreamLayer) Dial(address string, timeout time.Duration) (FrameConn, error) {
	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return nil, err
	}
	return newLineConn(conn, ""), nil
}

// Accept implements the StreamLayer interface.
func (t *TCPStreamLayer) Accept() (FrameConn, error) {
	conn, err := t.listener.Accept()
	if err != nil {
		return nil, err
	}
	return newLineConn(conn, ""), nil
}

// Close implements the StreamLayer interface.
func (t *TCPStreamLayer) Close() (err error) {
	return t.listener.Close()
}

// Addr implements the StreamLayer interface.
func (t *TCPStreamLayer) Addr() string {
	return t.listener.Addr().String()
}

// AdvertiseAddr implements the SteamLayer interface.
func (t *TCPStreamLayer) AdvertiseAddr() string {
	// Use an advertise addr if provided
	if t.advertise != "" {
		return t.advertise
	}
	return t.listener.Addr().String()
}

// NewTCPTransport returns a NetworkTransport that is built on top of
// a TCP streaming transport layer, with log output going to the supplied Logger
func NewTCPTransport(
	bindAddr string,
	advertise string,
	queueSize int,
	timeout time.Duration,
	logger *logrus.Entry,
) (*NetworkTransport, error) {
	list, err := listenTCP(bindAddr, advertise)
	if err != nil {
		return nil, err
	}

	stream := &TCPStreamLayer{
		advertise: advertise,
		listener:  list,
	}

	return NewNetworkTransport(stream, queueSize, timeout, logger), nil
}

// listenTCP binds bindAddr and verifies that the resulting address, or
// advertiseAddr if provided, can be advertised to other peers.
func listenTCP(bindAddr string, advertiseAddr string) (*net.TCPListener, error) {
	// Try to bind
	list, err := net.Listen("tcp", bindAddr)
	if err != nil {
		return nil, err
	}

	// Try to resolve the advertise address
	var resolvedAdvertise net.Addr
	if advertiseAddr != "" {
		resolvedAdvertise, err = net.ResolveTCPAddr("tcp", advertiseAddr)
		if err != nil {
			list.Close()
			return nil, err
		}
	}

	if resolvedAdvertise == nil {
		resolvedAdvertise = list.Addr()
	}

	// Verify that we have a usable advertise address
	addr, ok := resolvedAdvertise.(*net.TCPAddr)
	if !ok {
		list.Close()
		return nil, errNotTCP
	}
	if addr.IP.IsUnspecified() {
		list.Close()
		return nil, errNotAdvertisable
	}

	return list.(*net.TCPListener), nil
}
