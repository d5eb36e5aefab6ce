// Package naivechain wires the components of a naivechain node together: a
// store, a chain, a transport, a node, and an optional HTTP service.
package naivechain

import (
	"context"
	"fmt"

	"github.com/mosaicnetworks/naivechain/src/chain"
	"github.com/mosaicnetworks/naivechain/src/config"
	"github.com/mosaicnetworks/naivechain/src/net"
	"github.com/mosaicnetworks/naivechain/src/node"
	"github.com/mosaicnetworks/naivechain/src/peers"
	"github.com/mosaicnetworks/naivechain/src/service"
	"github.com/sirupsen/logrus"
)

// Naivechain is the engine of a naivechain node.
type Naivechain struct {
	Config    *config.Config
	Node      *node.Node
	Transport net.Transport
	Store     chain.Store
	Chain     *chain.Chain
	Peers     []string
	Service   *service.Service

	logger *logrus.Entry
}

// NewNaivechain is a factory method to produce a Naivechain instance.
func NewNaivechain(c *config.Config) *Naivechain {
	engine := &Naivechain{
		Config: c,
		logger: c.Logger(),
	}

	return engine
}

// Init initialises the engine: it creates the store, the chain, the transport,
// the node and the service.
func (n *Naivechain) Init() error {
	if err := n.initPeers(); err != nil {
		return err
	}

	if err := n.initStore(); err != nil {
		return err
	}

	if err := n.initChain(); err != nil {
		n.Store.Close()
		return err
	}

	if err := n.initTransport(); err != nil {
		n.Store.Close()
		return err
	}

	n.initNode()

	n.initService()

	return nil
}

// Run starts the service, dials the initial peers, and runs the node. It
// blocks until the node is shut down.
func (n *Naivechain) Run() {
	if n.Service != nil {
		go n.Service.Serve()
	}

	n.Node.ConnectPeers(n.Peers)

	n.Node.Run()
}

// Shutdown stops the service and the node. The node closes the transport and
// the store.
func (n *Naivechain) Shutdown() {
	if n.Service != nil {
		ctx, cancel := context.WithTimeout(context.Background(), n.Config.Timeout)
		defer cancel()

		if err := n.Service.Shutdown(ctx); err != nil {
			n.logger.WithError(err).Warn("Shutting down service")
		}
	}

	if n.Node != nil {
		n.Node.Shutdown()
	}
}

func (n *Naivechain) initPeers() error {
	jsonPeers := peers.NewJSONPeers(n.Config.DataDir)

	filePeers, err := jsonPeers.Peers()
	if err != nil {
		return fmt.Errorf("reading %s: %v", jsonPeers.Path(), err)
	}

	n.Peers = append(n.Config.PeerList(), filePeers...)

	n.logger.WithField("peers", n.Peers).Debug("Initial peers")

	return nil
}

func (n *Naivechain) initStore() error {
	var err error

	switch n.Config.Store {
	case config.InmemStore:
		n.Store = chain.NewInmemStore()

		n.logger.Debug("created new in-mem store")
	case config.BadgerStore:
		n.logger.WithField("path", n.Config.DatabasePath()).Debug("Creating badger database")

		n.Store, err = chain.NewBadgerStore(n.Config.DatabasePath(), n.logger)
	case config.LevelDBStore:
		n.logger.WithField("path", n.Config.DatabasePath()).Debug("Creating leveldb database")

		n.Store, err = chain.NewLevelDBStore(n.Config.DatabasePath())
	default:
		err = fmt.Errorf("unknown store type %q", n.Config.Store)
	}

	if err != nil {
		return err
	}

	n.logger.WithField("path", n.Store.StorePath()).Debug("Store ready")

	return nil
}

func (n *Naivechain) initChain() error {
	c, err := chain.NewChain(n.Store, n.logger.WithField("component", "chain"))
	if err != nil {
		return err
	}

	n.Chain = c

	return nil
}

func (n *Naivechain) initTransport() error {
	var (
		trans *net.NetworkTransport
		err   error
	)

	logger := n.logger.WithField("component", "transport")

	switch n.Config.Transport {
	case config.WebsocketTransport:
		trans, err = net.NewWebsocketTransport(
			n.Config.BindAddr,
			n.Config.AdvertiseAddr,
			n.Config.QueueSize,
			n.Config.Timeout,
			logger,
		)
	case config.TCPTransport:
		trans, err = net.NewTCPTransport(
			n.Config.BindAddr,
			n.Config.AdvertiseAddr,
			n.Config.QueueSize,
			n.Config.Timeout,
			logger,
		)
	default:
		err = fmt.Errorf("unknown transport type %q", n.Config.Transport)
	}

	if err != nil {
		return err
	}

	n.Transport = trans

	return nil
}

func (n *Naivechain) initNode() {
	n.Node = node.NewNode(n.Chain, n.Transport, n.logger.WithField("component", "node"))
}

func (n *Naivechain) initService() {
	if !n.Config.NoService {
		n.Service = service.NewService(n.Config.ServiceAddr, n.Node, n.logger.WithField("component", "service"))
	}
}
