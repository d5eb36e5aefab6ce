package peers

import (
	"sort"
	"sync"
	"sync/atomic"

	"github.com/mosaicnetworks/naivechain/src/net"
	"github.com/sirupsen/logrus"
)

// PeerSet is the collection of currently open connections, keyed by
// connection ID.
type PeerSet struct {
	sync.RWMutex
	conns  map[string]net.Conn
	logger *logrus.Entry

	dropped uint64
}

// NewPeerSet creates an empty PeerSet.
func NewPeerSet(logger *logrus.Entry) *PeerSet {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	return &PeerSet{
		conns:  make(map[string]net.Conn),
		logger: logger,
	}
}

// Add inserts a connection. It reports false if a connection with the same ID
// was already present.
func (ps *PeerSet) Add(conn net.Conn) bool {
	ps.Lock()
	defer ps.Unlock()

	if _, ok := ps.conns[conn.ID()]; ok {
		return false
	}
	ps.conns[conn.ID()] = conn
	return true
}

// Remove deletes the connection with the given ID. Removing an unknown ID is a
// no-op.
func (ps *PeerSet) Remove(id string) {
	ps.Lock()
	defer ps.Unlock()

	delete(ps.conns, id)
}

// Get returns the connection with the given ID.
func (ps *PeerSet) Get(id string) (net.Conn, bool) {
	ps.RLock()
	defer ps.RUnlock()

	c, ok := ps.conns[id]
	return c, ok
}

// Len returns the number of connections.
func (ps *PeerSet) Len() int {
	ps.RLock()
	defer ps.RUnlock()

	return len(ps.conns)
}

// Conns returns the connections in no particular order.
func (ps *PeerSet) Conns() []net.Conn {
	ps.RLock()
	defer ps.RUnlock()

	res := make([]net.Conn, 0, len(ps.conns))
	for _, c := range ps.conns {
		res = append(res, c)
	}
	return res
}

// Addrs returns the remote addresses of the connections, sorted.
func (ps *PeerSet) Addrs() []string {
	ps.RLock()
	defer ps.RUnlock()

	res := make([]string, 0, len(ps.conns))
	for _, c := range ps.conns {
		res = append(res, c.RemoteAddr())
	}
	sort.Strings(res)
	return res
}

// Broadcast sends msg to every connection independently. A failed send is
// logged and does not affect the other connections.
func (ps *PeerSet) Broadcast(msg net.Message) {
	for _, c := range ps.Conns() {
		if err := c.Send(msg); err != nil {
			atomic.AddUint64(&ps.dropped, 1)
			ps.logger.WithFields(logrus.Fields{
				"conn_id": c.ID(),
				"remote":  c.RemoteAddr(),
				"type":    msg.Type(),
				"error":   err,
			}).Warn("Dropping message")
		}
	}
}

// Dropped returns the number of messages that Broadcast failed to queue.
func (ps *PeerSet) Dropped() uint64 {
	return atomic.LoadUint64(&ps.dropped)
}
