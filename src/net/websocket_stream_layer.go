package net

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const wsScheme = "ws://"

var errStreamClosed = errors.New("stream layer closed")

// wsConn implements FrameConn over a websocket. Each websocket message is one
// frame. gorilla/websocket allows one concurrent reader and one concurrent
// writer, which is exactly what a netConn uses.
type wsConn struct {
	conn   *websocket.Conn
	remote string
}

// ReadFrame implements the FrameConn interface.
func (w *wsConn) ReadFrame() ([]byte, error) {
	_, data, err := w.conn.ReadMessage()
	return data, err
}

// WriteFrame implements the FrameConn interface.
func (w *wsConn) WriteFrame(frame []byte) error {
	return w.conn.WriteMessage(websocket.TextMessage, frame)
}

// RemoteAddr implements the FrameConn interface.
func (w *wsConn) RemoteAddr() string {
	return w.remote
}

// Close implements the FrameConn interface.
func (w *wsConn) Close() error {
	return w.conn.Close()
}

// WebsocketStreamLayer implements the StreamLayer interface with websockets.
// It runs an HTTP server on the bound listener and upgrades every request to a
// websocket connection.
type WebsocketStreamLayer struct {
	advertise string
	listener  net.Listener
	server    *http.Server
	upgrader  websocket.Upgrader

	acceptCh  chan FrameConn
	closeCh   chan struct{}
	closeOnce sync.Once

	logger *logrus.Entry
}

func newWebsocketStreamLayer(listener net.Listener, advertise string, logger *logrus.Entry) *WebsocketStreamLayer {
	ws := &WebsocketStreamLayer{
		advertise: advertise,
		listener:  listener,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		acceptCh: make(chan FrameConn),
		closeCh:  make(chan struct{}),
		logger:   logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", ws.upgrade)
	ws.server = &http.Server{Handler: mux}

	go func() {
		err := ws.server.Serve(listener)
		if err != nil && err != http.ErrServerClosed {
			ws.logger.WithError(err).Error("Websocket server stopped")
		}
	}()

	return ws
}

func (ws *WebsocketStreamLayer) upgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := ws.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ws.logger.WithError(err).Debug("Websocket upgrade failed")
		return
	}

	select {
	case ws.acceptCh <- &wsConn{conn: conn, remote: r.RemoteAddr}:
	case <-ws.closeCh:
		conn.Close()
	}
}

// Dial implements the StreamLayer interface. The address may be given with or
// without the ws:// scheme.
func (ws *WebsocketStreamLayer) Dial(address string, timeout time.Duration) (FrameConn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: timeout,
	}

	conn, _, err := dialer.Dial(wsURL(address), nil)
	if err != nil {
		return nil, err
	}

	return &wsConn{conn: conn, remote: strings.TrimPrefix(address, wsScheme)}, nil
}

// Accept implements the StreamLayer interface.
func (ws *WebsocketStreamLayer) Accept() (FrameConn, error) {
	select {
	case conn := <-ws.acceptCh:
		return conn, nil
	case <-ws.closeCh:
		return nil, errStreamClosed
	}
}

// Close implements the StreamLayer interface.
func (ws *WebsocketStreamLayer) Close() error {
	var err error
	ws.closeOnce.Do(func() {
		close(ws.closeCh)
		err = ws.server.Close()
	})
	return err
}

// Addr implements the StreamLayer interface.
func (ws *WebsocketStreamLayer) Addr() string {
	return ws.listener.Addr().String()
}

// AdvertiseAddr implements the StreamLayer interface.
func (ws *WebsocketStreamLayer) AdvertiseAddr() string {
	if ws.advertise != "" {
		return strings.TrimPrefix(ws.advertise, wsScheme)
	}
	return ws.listener.Addr().String()
}

func wsURL(address string) string {
	if strings.HasPrefix(address, wsScheme) {
		return address
	}
	return wsScheme + address
}

// NewWebsocketTransport returns a NetworkTransport that is built on top of a
// websocket stream layer. Peers are addressed as host:port or ws://host:port.
func NewWebsocketTransport(
	bindAddr string,
	advertise string,
	queueSize int,
	timeout time.Duration,
	logger *logrus.Entry,
) (*NetworkTransport, error) {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	list, err := listenTCP(bindAddr, strings.TrimPrefix(advertise, wsScheme))
	if err != nil {
		return nil, err
	}

	stream := newWebsocketStreamLayer(list, advertise, logger)

	return NewNetworkTransport(stream, queueSize, timeout, logger), nil
}
