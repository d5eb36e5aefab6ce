// Package chain implements the hash-linked ledger held by every node.
//
// A chain is a non-empty ordered sequence of Records starting with the literal
// Genesis record shared by all nodes. Every subsequent Record carries the hash
// of its predecessor and an index one greater than its predecessor's, and its
// own hash is the SHA256 digest of its index, previous hash, timestamp and
// payload.
//
// The Chain only changes in two ways: by appending a single Record that
// attaches to the current tip, or by being replaced wholesale with a strictly
// longer, fully valid sequence. Candidates that fail validation are discarded
// without raising an error; the predicates in this package report a boolean
// and the Chain logs the reason for the rejection.
//
// Records are kept in a Store. The InmemStore is the default. The BadgerStore
// and LevelDBStore additionally mirror the chain into an on-disk database for
// inspection by external tools. They never load a previous database: a node
// always starts from the Genesis record.
package chain
