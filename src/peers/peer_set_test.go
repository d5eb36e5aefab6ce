package peers

import (
	"testing"

	"github.com/mosaicnetworks/naivechain/src/common"
	"github.com/mosaicnetworks/naivechain/src/net"
	"github.com/stretchr/testify/assert"
)

type fakeConn struct {
	id     string
	remote string
	err    error
	sent   []net.Message
}

func (f *fakeConn) ID() string         { return f.id }
func (f *fakeConn) RemoteAddr() string { return f.remote }
func (f *fakeConn) Close() error       { return nil }

func (f *fakeConn) Send(m net.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m)
	return nil
}

func TestPeerSetAddRemove(t *testing.T) {
	ps := NewPeerSet(common.NewTestEntry(t, common.TestLogLevel))

	a := &fakeConn{id: "a", remote: "10.0.0.2:6001"}
	b := &fakeConn{id: "b", remote: "10.0.0.1:6001"}

	assert.True(t, ps.Add(a))
	assert.True(t, ps.Add(b))
	assert.False(t, ps.Add(a), "adding the same connection twice")
	assert.Equal(t, 2, ps.Len())
	assert.Equal(t, []string{"10.0.0.1:6001", "10.0.0.2:6001"}, ps.Addrs())

	c, ok := ps.Get("a")
	assert.True(t, ok)
	assert.Equal(t, a, c)

	ps.Remove("a")
	ps.Remove("a")
	ps.Remove("unknown")

	assert.Equal(t, 1, ps.Len())
	_, ok = ps.Get("a")
	assert.False(t, ok)
}

func TestPeerSetBroadcast(t *testing.T) {
	ps := NewPeerSet(common.NewTestEntry(t, common.TestLogLevel))

	a := &fakeConn{id: "a"}
	b := &fakeConn{id: "b", err: net.ErrQueueFull}
	c := &fakeConn{id: "c"}

	ps.Add(a)
	ps.Add(b)
	ps.Add(c)

	ps.Remove("c")

	ps.Broadcast(net.QueryAll{})

	assert.Equal(t, []net.Message{net.QueryAll{}}, a.sent)
	assert.Empty(t, b.sent)
	assert.Empty(t, c.sent, "removed connections receive nothing")
	assert.Equal(t, uint64(1), ps.Dropped())
}
