package node

import (
	"github.com/mosaicnetworks/naivechain/src/chain"
)

// MineResult is the outcome of a MinePromise.
type MineResult struct {
	Record chain.Record
	Err    error
}

// MinePromise is a request to mine a record, submitted to the event loop.
type MinePromise struct {
	Data   string
	RespCh chan MineResult
}

// NewMinePromise creates a MinePromise for data.
func NewMinePromise(data string) *MinePromise {
	return &MinePromise{
		Data: data,
		// buffered because the submitter may have given up waiting
		RespCh: make(chan MineResult, 1),
	}
}

// Respond resolves the promise.
func (p *MinePromise) Respond(record chain.Record, err error) {
	p.RespCh <- MineResult{Record: record, Err: err}
}
