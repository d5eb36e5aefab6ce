// Package peers manages the connections a naivechain node holds to other
// nodes.
//
// A peer has no identity beyond the connection itself. Every connection,
// inbound or outbound, gets an ID generated locally when it is established,
// and the PeerSet indexes live connections by that ID. Two connections to the
// same remote node are two peers.
//
// Upon starting up, a node can read a peers.json file from its data directory.
// It contains a JSON array of addresses that the node dials once, in addition
// to the addresses passed on the command line. Failed dials are not retried.
package peers
