package node

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mosaicnetworks/naivechain/src/chain"
	"github.com/mosaicnetworks/naivechain/src/net"
	"github.com/mosaicnetworks/naivechain/src/node/state"
	"github.com/mosaicnetworks/naivechain/src/peers"
	"github.com/sirupsen/logrus"
)

var (
	// ErrNodeShutdown is returned by operations invoked on a shut down node.
	ErrNodeShutdown = errors.New("node is shut down")
	// ErrTooManyDials is returned by AddPeer when too many dials are already
	// in progress.
	ErrTooManyDials = errors.New("too many dials in progress")
	// ErrMineRejected is returned by MineRecord when the freshly built record
	// could not be appended.
	ErrMineRejected = errors.New("mined record rejected")
)

// Node defines a naivechain node
type Node struct {
	// The node runs in a state machine defined in the state package
	state.Manager

	logger *logrus.Entry

	chain *chain.Chain
	peers *peers.PeerSet

	trans net.Transport
	netCh <-chan net.Event

	submitCh     chan *MinePromise
	shutdownCh   chan struct{}
	shutdownOnce sync.Once

	// loopLock orders the start of the event loop against Shutdown
	loopLock sync.Mutex
	loopWG   sync.WaitGroup

	start    time.Time
	received uint64
	dropped  uint64
}

// NewNode is a factory method that returns a Node instance
func NewNode(c *chain.Chain, trans net.Transport, logger *logrus.Entry) *Node {
	if logger == nil {
		log := logrus.New()
		log.Level = logrus.DebugLevel
		logger = logrus.NewEntry(log)
	}

	node := Node{
		logger:     logger,
		chain:      c,
		peers:      peers.NewPeerSet(logger),
		trans:      trans,
		netCh:      trans.Consumer(),
		submitCh:   make(chan *MinePromise),
		shutdownCh: make(chan struct{}),
		start:      time.Now(),
	}

	return &node
}

// RunAsync calls Run as a separate thread
func (n *Node) RunAsync() {
	n.logger.Debug("runasync")

	go n.Run()
}

// Run starts accepting connections and invokes the main loop of the node. It
// blocks until the node is shut down.
func (n *Node) Run() {
	n.loopLock.Lock()
	if n.GetState() != state.Initialized {
		n.loopLock.Unlock()
		return
	}
	n.SetState(state.Running)
	n.loopWG.Add(1)
	n.loopLock.Unlock()

	defer n.loopWG.Done()

	go n.trans.Listen()

	n.logger.WithField("addr", n.trans.AdvertiseAddr()).Info("Node running")

	n.doBackgroundWork()
}

func (n *Node) doBackgroundWork() {
	for {
		select {
		case ev := <-n.netCh:
			n.processEvent(ev)
		case p := <-n.submitCh:
			n.mine(p)
		case <-n.shutdownCh:
			return
		}
	}
}

func (n *Node) processEvent(ev net.Event) {
	logger := n.logger.WithFields(logrus.Fields{
		"conn_id": ev.Conn.ID(),
		"remote":  ev.Conn.RemoteAddr(),
	})

	switch ev.Type {
	case net.Connected:
		n.register(ev.Conn, logger)
	case net.Disconnected:
		n.unregister(ev.Conn, logger)
	case net.Received:
		atomic.AddUint64(&n.received, 1)
		n.processMessage(ev.Conn, ev.Message, logger)
	}
}

func (n *Node) register(conn net.Conn, logger *logrus.Entry) {
	if !n.peers.Add(conn) {
		return
	}

	logger.WithField("peers", n.peers.Len()).Info("Peer connected")

	n.send(conn, net.QueryLatest{}, logger)
}

func (n *Node) unregister(conn net.Conn, logger *logrus.Entry) {
	if _, ok := n.peers.Get(conn.ID()); !ok {
		return
	}

	n.peers.Remove(conn.ID())

	logger.WithField("peers", n.peers.Len()).Info("Peer disconnected")
}

func (n *Node) processMessage(conn net.Conn, msg net.Message, logger *logrus.Entry) {
	logger.WithField("type", msg.Type()).Debug("Received message")

	switch m := msg.(type) {
	case net.QueryLatest:
		n.send(conn, net.ChainAnnounce{Records: []chain.Record{n.chain.Tip()}}, logger)
	case net.QueryAll:
		n.send(conn, net.ChainAnnounce{Records: n.chain.Records()}, logger)
	case net.ChainAnnounce:
		outcome := Resolve(n.chain, m.Records, n.peers, logger)
		logger.WithField("outcome", outcome).Debug("Resolved chain announce")
	default:
		logger.WithField("type", msg.Type()).Error("Unknown message type")
	}
}

func (n *Node) send(conn net.Conn, msg net.Message, logger *logrus.Entry) {
	if err := conn.Send(msg); err != nil {
		atomic.AddUint64(&n.dropped, 1)
		logger.WithFields(logrus.Fields{
			"type":  msg.Type(),
			"error": err,
		}).Warn("Dropping message")
	}
}

func (n *Node) mine(p *MinePromise) {
	record := n.chain.BuildNext(p.Data)

	if !n.chain.TryAppend(record) {
		p.Respond(chain.Record{}, ErrMineRejected)
		return
	}

	n.logger.WithFields(logrus.Fields{
		"index": record.Index,
		"hash":  record.Hash,
	}).Info("Mined record")

	n.peers.Broadcast(net.ChainAnnounce{Records: []chain.Record{record}})

	p.Respond(record, nil)
}

// MineRecord builds a record carrying data on top of the local tip, appends it
// and announces it to every peer. It returns the new record.
func (n *Node) MineRecord(data string) (chain.Record, error) {
	p := NewMinePromise(data)

	select {
	case n.submitCh <- p:
	case <-n.shutdownCh:
		return chain.Record{}, ErrNodeShutdown
	}

	select {
	case res := <-p.RespCh:
		return res.Record, res.Err
	case <-n.shutdownCh:
		return chain.Record{}, ErrNodeShutdown
	}
}

// AddPeer dials address in the background. A failed dial is logged and not
// retried. The returned error only says whether the dial was started.
func (n *Node) AddPeer(address string) error {
	if n.GetState() == state.Shutdown {
		return ErrNodeShutdown
	}

	ok := n.GoFunc(func() {
		logger := n.logger.WithField("peer", address)

		logger.Debug("Connecting to peer")

		if err := n.trans.Connect(address); err != nil {
			logger.WithError(err).Warn("Failed to connect to peer")
		}
	})

	if !ok {
		return ErrTooManyDials
	}

	return nil
}

// ConnectPeers dials every address in the background.
func (n *Node) ConnectPeers(addresses []string) {
	for _, addr := range addresses {
		if err := n.AddPeer(addr); err != nil {
			n.logger.WithError(err).WithField("peer", addr).Warn("Not connecting to peer")
		}
	}
}

// GetChain returns a snapshot of the whole chain.
func (n *Node) GetChain() []chain.Record {
	return n.chain.Records()
}

// GetRecord returns the record at a given index.
func (n *Node) GetRecord(index int) (chain.Record, error) {
	return n.chain.GetRecord(index)
}

// ListPeers returns the remote addresses of the open connections.
func (n *Node) ListPeers() []string {
	return n.peers.Addrs()
}

// Shutdown stops the event loop, then closes the transport and the store.
func (n *Node) Shutdown() {
	n.shutdownOnce.Do(func() {
		n.logger.Debug("Shutdown")

		//Exit any non-shutdown state immediately
		n.loopLock.Lock()
		n.SetState(state.Shutdown)
		n.loopLock.Unlock()

		//Stop the event loop and release the goroutines blocked on it
		close(n.shutdownCh)

		//Pending dials hand their connections to the transport, which only
		//lets go of them once closed
		n.trans.Close()

		n.WaitRoutines()
		n.loopWG.Wait()

		if err := n.chain.Store().Close(); err != nil {
			n.logger.WithError(err).Error("Closing store")
		}
	})
}

// GetStats returns stats
func (n *Node) GetStats() map[string]string {
	tip := n.chain.Tip()

	s := map[string]string{
		"chain_length":      strconv.Itoa(n.chain.Len()),
		"tip_index":         strconv.Itoa(tip.Index),
		"tip_hash":          tip.Hash,
		"num_peers":         strconv.Itoa(n.peers.Len()),
		"messages_received": strconv.FormatUint(atomic.LoadUint64(&n.received), 10),
		"messages_dropped":  strconv.FormatUint(atomic.LoadUint64(&n.dropped)+n.peers.Dropped(), 10),
		"uptime":            time.Since(n.start).Round(time.Second).String(),
		"addr":              n.trans.AdvertiseAddr(),
		"state":             n.GetState().String(),
	}
	return s
}
