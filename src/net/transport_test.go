package net

import (
	"bufio"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mosaicnetworks/naivechain/src/chain"
	"github.com/mosaicnetworks/naivechain/src/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gonet "net"
)

const eventTimeout = 2 * time.Second

type transportFactory func(t *testing.T) *NetworkTransport

var transportFactories = map[string]transportFactory{
	"inmem": func(t *testing.T) *NetworkTransport {
		_, trans := NewInmemTransport("", 4, common.NewTestEntry(t, common.TestLogLevel))
		return trans
	},
	"tcp": func(t *testing.T) *NetworkTransport {
		trans, err := NewTCPTransport("127.0.0.1:0", "", 4, time.Second, common.NewTestEntry(t, common.TestLogLevel))
		require.NoError(t, err)
		return trans
	},
	"websocket": func(t *testing.T) *NetworkTransport {
		trans, err := NewWebsocketTransport("127.0.0.1:0", "", 4, time.Second, common.NewTestEntry(t, common.TestLogLevel))
		require.NoError(t, err)
		return trans
	},
}

func expectEvent(t *testing.T, trans Transport, typ EventType) Event {
	t.Helper()

	select {
	case ev := <-trans.Consumer():
		if ev.Type != typ {
			t.Fatalf("expected %s event, got %s", typ, ev.Type)
		}
		return ev
	case <-time.After(eventTimeout):
		t.Fatalf("timeout waiting for %s event", typ)
	}
	return Event{}
}

// connectPair connects trans2 to trans1 and returns both ends of the new
// connection.
func connectPair(t *testing.T, trans1, trans2 *NetworkTransport) (Conn, Conn) {
	t.Helper()

	errCh := make(chan error, 1)
	go func() {
		errCh <- trans2.Connect(trans1.AdvertiseAddr())
	}()

	out := expectEvent(t, trans2, Connected)
	in := expectEvent(t, trans1, Connected)

	require.NoError(t, <-errCh)

	return in.Conn, out.Conn
}

func TestTransports(t *testing.T) {
	for name, factory := range transportFactories {
		t.Run(name, func(t *testing.T) {
			trans1 := factory(t)
			defer trans1.Close()
			go trans1.Listen()

			trans2 := factory(t)
			defer trans2.Close()
			go trans2.Listen()

			in, out := connectPair(t, trans1, trans2)

			assert.NotEqual(t, in.ID(), out.ID())
			assert.Equal(t, 1, trans1.NumConns())
			assert.Equal(t, 1, trans2.NumConns())

			// outbound to inbound
			require.NoError(t, out.Send(QueryLatest{}))
			ev := expectEvent(t, trans1, Received)
			assert.Equal(t, in.ID(), ev.Conn.ID())
			assert.Equal(t, QueryLatest{}, ev.Message)

			// inbound to outbound
			records := []chain.Record{chain.Genesis()}
			require.NoError(t, in.Send(ChainAnnounce{Records: records}))
			ev = expectEvent(t, trans2, Received)
			assert.Equal(t, out.ID(), ev.Conn.ID())
			assert.Equal(t, ChainAnnounce{Records: records}, ev.Message)

			// closing one end disconnects both
			require.NoError(t, out.Close())
			ev = expectEvent(t, trans2, Disconnected)
			assert.Equal(t, out.ID(), ev.Conn.ID())
			ev = expectEvent(t, trans1, Disconnected)
			assert.Equal(t, in.ID(), ev.Conn.ID())

			assert.Equal(t, 0, trans1.NumConns())
			assert.Equal(t, 0, trans2.NumConns())
		})
	}
}

func TestTransportConnectUnknown(t *testing.T) {
	_, trans := NewInmemTransport("", 4, common.NewTestEntry(t, common.TestLogLevel))
	defer trans.Close()

	if err := trans.Connect(NewInmemAddr()); err == nil {
		t.Fatal("connecting to an unknown address should fail")
	}
}

func TestTransportConnectAfterClose(t *testing.T) {
	_, trans := NewInmemTransport("", 4, common.NewTestEntry(t, common.TestLogLevel))
	trans.Close()

	if err := trans.Connect(NewInmemAddr()); err != ErrTransportShutdown {
		t.Fatalf("expected ErrTransportShutdown, got %v", err)
	}
}

func TestTCPTransportMalformedFrame(t *testing.T) {
	trans := transportFactories["tcp"](t)
	defer trans.Close()
	go trans.Listen()

	raw, err := gonet.Dial("tcp", trans.LocalAddr())
	require.NoError(t, err)
	defer raw.Close()

	expectEvent(t, trans, Connected)

	w := bufio.NewWriter(raw)
	w.WriteString("this is not json\n")
	w.WriteString(`{"type":"RESPONSE_BLOCKCHAIN"}` + "\n")
	w.WriteString(`{"type":"QUERY_ALL"}` + "\n")
	require.NoError(t, w.Flush())

	// The malformed frames are dropped, the connection stays open.
	ev := expectEvent(t, trans, Received)
	assert.Equal(t, QueryAll{}, ev.Message)
	assert.Equal(t, 1, trans.NumConns())
}

func TestWebsocketTransportMalformedFrame(t *testing.T) {
	trans := transportFactories["websocket"](t)
	defer trans.Close()
	go trans.Listen()

	raw, _, err := websocket.DefaultDialer.Dial("ws://"+trans.LocalAddr(), nil)
	require.NoError(t, err)
	defer raw.Close()

	expectEvent(t, trans, Connected)

	require.NoError(t, raw.WriteMessage(websocket.TextMessage, []byte("{{")))
	require.NoError(t, raw.WriteMessage(websocket.TextMessage, []byte(`{"type":"QUERY_LATEST"}`)))

	ev := expectEvent(t, trans, Received)
	assert.Equal(t, QueryLatest{}, ev.Message)

	// The reply reaches the raw client.
	require.NoError(t, ev.Conn.Send(ChainAnnounce{Records: []chain.Record{chain.Genesis()}}))

	raw.SetReadDeadline(time.Now().Add(eventTimeout))
	_, frame, err := raw.ReadMessage()
	require.NoError(t, err)

	msg, err := DecodeMessage(frame)
	require.NoError(t, err)
	assert.Equal(t, ChainAnnounce{Records: []chain.Record{chain.Genesis()}}, msg)
}

func TestWebsocketURL(t *testing.T) {
	assert.Equal(t, "ws://localhost:6001", wsURL("localhost:6001"))
	assert.Equal(t, "ws://localhost:6001", wsURL("ws://localhost:6001"))
}
