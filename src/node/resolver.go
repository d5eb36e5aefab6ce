package node

import (
	"sort"

	"github.com/mosaicnetworks/naivechain/src/chain"
	"github.com/mosaicnetworks/naivechain/src/net"
	"github.com/sirupsen/logrus"
)

// Broadcaster sends a message to every open connection.
type Broadcaster interface {
	Broadcast(net.Message)
}

// Outcome is what the resolver did with an announced chain.
type Outcome int

const (
	// Ignored means the announced tip was not ahead of the local tip.
	Ignored Outcome = iota
	// Appended means the announced tip was appended to the local chain.
	Appended
	// AppendRejected means the announced tip linked to the local tip but was
	// not a valid successor.
	AppendRejected
	// QueriedAll means a lone record did not attach, and the whole chain was
	// requested from every peer.
	QueriedAll
	// Replaced means the local chain was replaced by the announced chain.
	Replaced
	// ReplaceRejected means the announced chain was invalid or not longer.
	ReplaceRejected
)

// String ...
func (o Outcome) String() string {
	switch o {
	case Ignored:
		return "Ignored"
	case Appended:
		return "Appended"
	case AppendRejected:
		return "AppendRejected"
	case QueriedAll:
		return "QueriedAll"
	case Replaced:
		return "Replaced"
	case ReplaceRejected:
		return "ReplaceRejected"
	default:
		return "Unknown"
	}
}

// Resolve reconciles the local chain with records announced by a peer. The
// records may arrive in any order. Resolve may mutate c, and may broadcast to
// peers.
func Resolve(c *chain.Chain, received []chain.Record, peers Broadcaster, logger *logrus.Entry) Outcome {
	if len(received) == 0 {
		logger.Debug("Ignoring empty chain announce")
		return Ignored
	}

	sorted := make([]chain.Record, len(received))
	copy(sorted, received)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Index < sorted[j].Index
	})

	remoteTip := sorted[len(sorted)-1]
	localTip := c.Tip()

	if remoteTip.Index <= localTip.Index {
		logger.WithFields(logrus.Fields{
			"remote_tip": remoteTip.Index,
			"local_tip":  localTip.Index,
		}).Debug("Received chain is not longer than local chain")
		return Ignored
	}

	logger.WithFields(logrus.Fields{
		"remote_tip": remoteTip.Index,
		"local_tip":  localTip.Index,
	}).Debug("Local chain possibly behind")

	switch {
	case localTip.Hash == remoteTip.PreviousHash:
		if !c.TryAppend(remoteTip) {
			return AppendRejected
		}
		peers.Broadcast(net.ChainAnnounce{Records: []chain.Record{c.Tip()}})
		return Appended
	case len(sorted) == 1:
		logger.Debug("Querying chain from peers")
		peers.Broadcast(net.QueryAll{})
		return QueriedAll
	default:
		if !c.TryReplace(sorted) {
			logger.WithField("length", len(sorted)).Info("Received chain invalid")
			return ReplaceRejected
		}
		logger.WithField("length", len(sorted)).Info("Replaced chain")
		peers.Broadcast(net.ChainAnnounce{Records: []chain.Record{c.Tip()}})
		return Replaced
	}
}
