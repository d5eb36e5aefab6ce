package chain

import (
	"fmt"
	"testing"

	"github.com/mosaicnetworks/naivechain/src/common"
)

// nextRecord builds a valid successor of prev with a deterministic timestamp.
func nextRecord(prev Record, data string) Record {
	index := prev.Index + 1
	ts := float64(genesisTimestamp + index)
	return Record{
		Index:        index,
		PreviousHash: prev.Hash,
		Timestamp:    ts,
		Data:         data,
		Hash:         Digest(index, prev.Hash, ts, data),
	}
}

// buildRecords returns a valid chain of length n, starting at Genesis. The
// prefix differentiates the payloads of independent chains.
func buildRecords(n int, prefix string) []Record {
	records := []Record{Genesis()}
	for i := 1; i < n; i++ {
		records = append(records, nextRecord(records[i-1], fmt.Sprintf("%s%d", prefix, i)))
	}
	return records
}

func newTestChain(t *testing.T, n int) *Chain {
	c, err := NewChain(NewInmemStore(), common.NewTestEntry(t, common.TestLogLevel))
	if err != nil {
		t.Fatal(err)
	}
	if n > 1 && !c.TryReplace(buildRecords(n, "local")) {
		t.Fatalf("could not initialise chain of length %d", n)
	}
	return c
}
