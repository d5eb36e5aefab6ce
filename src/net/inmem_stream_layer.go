package net

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// inmemRegistry maps in-memory addresses to their listening stream layers.
var inmemRegistry = struct {
	sync.RWMutex
	layers map[string]*InmemStreamLayer
}{
	layers: make(map[string]*InmemStreamLayer),
}

// NewInmemAddr returns a new in-memory addr with a randomly generated UUID as
// the ID.
func NewInmemAddr() string {
	return uuid.New().String()
}

// InmemStreamLayer implements the StreamLayer interface with synchronous
// in-memory pipes, to allow nodes to be tested in-memory without going over a
// network.
type InmemStreamLayer struct {
	addr string

	acceptCh  chan FrameConn
	closeCh   chan struct{}
	closeOnce sync.Once
}

func newInmemStreamLayer(addr string) *InmemStreamLayer {
	layer := &InmemStreamLayer{
		addr:     addr,
		acceptCh: make(chan FrameConn),
		closeCh:  make(chan struct{}),
	}

	inmemRegistry.Lock()
	inmemRegistry.layers[addr] = layer
	inmemRegistry.Unlock()

	return layer
}

// Dial implements the StreamLayer interface.
func (i *InmemStreamLayer) Dial(address string, timeout time.Duration) (FrameConn, error) {
	inmemRegistry.RLock()
	peer, ok := inmemRegistry.layers[address]
	inmemRegistry.RUnlock()

	if !ok {
		return nil, fmt.Errorf("failed to connect to peer: %v", address)
	}

	local, remote := net.Pipe()

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case peer.acceptCh <- newLineConn(remote, i.addr):
	case <-peer.closeCh:
		local.Close()
		remote.Close()
		return nil, fmt.Errorf("failed to connect to peer: %v", address)
	case <-timeoutCh:
		local.Close()
		remote.Close()
		return nil, fmt.Errorf("connection to %v timed out", address)
	}

	return newLineConn(local, address), nil
}

// Accept implements the StreamLayer interface.
func (i *InmemStreamLayer) Accept() (FrameConn, error) {
	select {
	case conn := <-i.acceptCh:
		return conn, nil
	case <-i.closeCh:
		return nil, errStreamClosed
	}
}

// Close implements the StreamLayer interface. It removes the address from the
// registry so that further dials fail.
func (i *InmemStreamLayer) Close() error {
	i.closeOnce.Do(func() {
		close(i.closeCh)

		inmemRegistry.Lock()
		delete(inmemRegistry.layers, i.addr)
		inmemRegistry.Unlock()
	})
	return nil
}

// Addr implements the StreamLayer interface.
func (i *InmemStreamLayer) Addr() string {
	return i.addr
}

// AdvertiseAddr implements the StreamLayer interface.
func (i *InmemStreamLayer) AdvertiseAddr() string {
	return i.addr
}

// NewInmemTransport is used to initialize a new transport over in-memory
// pipes, and generates a random local address if none is specified.
func NewInmemTransport(addr string, queueSize int, logger *logrus.Entry) (string, *NetworkTransport) {
	if addr == "" {
		addr = NewInmemAddr()
	}

	stream := newInmemStreamLayer(addr)

	return addr, NewNetworkTransport(stream, queueSize, time.Second, logger)
}
