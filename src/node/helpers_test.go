package node

import (
	"fmt"
	"testing"
	"time"

	"github.com/mosaicnetworks/naivechain/src/chain"
	"github.com/mosaicnetworks/naivechain/src/common"
	"github.com/mosaicnetworks/naivechain/src/net"
)

const genesisTimestamp = 1465154705

func nextRecord(prev chain.Record, data string) chain.Record {
	index := prev.Index + 1
	ts := float64(genesisTimestamp + index)
	return chain.Record{
		Index:        index,
		PreviousHash: prev.Hash,
		Timestamp:    ts,
		Data:         data,
		Hash:         chain.Digest(index, prev.Hash, ts, data),
	}
}

// buildRecords returns a valid chain of length n starting at Genesis. The
// prefix differentiates independent chains.
func buildRecords(n int, prefix string) []chain.Record {
	records := []chain.Record{chain.Genesis()}
	for i := 1; i < n; i++ {
		records = append(records, nextRecord(records[i-1], fmt.Sprintf("%s%d", prefix, i)))
	}
	return records
}

func newTestChain(t *testing.T, records []chain.Record) *chain.Chain {
	c, err := chain.NewChain(chain.NewInmemStore(), common.NewTestEntry(t, common.TestLogLevel))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) > 1 && !c.TryReplace(records) {
		t.Fatalf("could not initialise chain of length %d", len(records))
	}
	return c
}

// recorder is a Broadcaster that remembers what it was asked to send.
type recorder struct {
	messages []net.Message
}

func (r *recorder) Broadcast(m net.Message) {
	r.messages = append(r.messages, m)
}

// fakeConn is a net.Conn that records sent messages.
type fakeConn struct {
	id     string
	remote string
	sent   []net.Message
}

func (f *fakeConn) ID() string         { return f.id }
func (f *fakeConn) RemoteAddr() string { return f.remote }
func (f *fakeConn) Close() error       { return nil }

func (f *fakeConn) Send(m net.Message) error {
	f.sent = append(f.sent, m)
	return nil
}

func newTestNode(t *testing.T, records []chain.Record) *Node {
	_, trans := net.NewInmemTransport("", net.DefaultQueueSize, common.NewTestEntry(t, common.TestLogLevel))
	return NewNode(newTestChain(t, records), trans, common.NewTestEntry(t, common.TestLogLevel))
}

// waitFor polls cond until it holds or the timeout expires.
func waitFor(t *testing.T, timeout time.Duration, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}
