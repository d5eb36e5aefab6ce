// Package node implements the reactive component of a naivechain node.
//
// A Node owns a Chain and a PeerSet, and serializes every mutation of either
// through a single event loop: transport events (connections opening or
// closing, messages arriving) and locally mined records are processed one at a
// time, in the order they are received. Reads of the chain do not go through
// the loop; they are served under the chain's read lock.
//
// Synchronization
//
// Nodes keep their chains in sync with three messages. When a connection
// opens, in either direction, the node asks the other end for its latest
// record (QueryLatest). A node that receives QueryLatest replies with a
// ChainAnnounce carrying its tip; a node that receives QueryAll replies with a
// ChainAnnounce carrying its whole chain.
//
// Every ChainAnnounce goes through the conflict resolver. If the announced tip
// is not ahead of the local tip, nothing happens. If it attaches directly to
// the local tip, it is appended and the new tip is announced to every peer. If
// it is a lone record that does not attach, the node asks all its peers for
// their whole chain. Otherwise the received records are a whole chain, and
// they replace the local chain if they form a valid chain longer than the
// local one. In short, the longest valid chain wins.
//
// Mining a record appends it to the local chain and announces it to every
// peer.
package node
