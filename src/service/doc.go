// Package service implements the HTTP API of a naivechain node.
//
// Endpoints:
//
//	GET  /blocks     the whole chain
//	GET  /block/{i}  the record at index i
//	POST /mineBlock  {"data": "..."} mines a record and announces it
//	GET  /peers      the addresses of the connected peers
//	POST /addPeer    {"peer": "host:port"} dials a peer
//	GET  /stats      node statistics
package service
