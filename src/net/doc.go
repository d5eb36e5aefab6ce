// Package net implements the transports used by naivechain nodes to exchange
// messages with their peers.
//
// Unlike request/response RPC, the peer protocol is a stream of discrete
// messages flowing both ways over long-lived connections. A Transport accepts
// inbound connections and dials outbound ones, and reports everything that
// happens on them through a single channel of Events: a connection was
// established, a message was received, a connection went away. The node
// consumes that channel from one goroutine, which is what serializes all
// changes to its state.
//
// Sending is fire-and-forget. Conn.Send encodes the message and queues it for
// a dedicated writer goroutine; it never waits for the network.
//
// There are three stream layers under the NetworkTransport:
//
// - Websocket: the default. Peers are addressed as ws://host:port.
//
// - TCP: plain TCP with one JSON message per line.
//
// - Inmem: in-memory pipes, used for testing.
//
// Messages are JSON objects with a type and, for chain responses, a data
// field holding the JSON text of an array of records. Frames that cannot be
// decoded are dropped individually; the connection remains open.
package net
