package naivechain

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mosaicnetworks/naivechain/src/chain"
	"github.com/mosaicnetworks/naivechain/src/common"
	"github.com/mosaicnetworks/naivechain/src/config"
	"github.com/mosaicnetworks/naivechain/src/peers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T, dataDir string) *config.Config {
	conf := config.NewTestConfig(t, common.TestLogLevel)
	conf.DataDir = dataDir
	conf.BindAddr = "127.0.0.1:0"
	conf.NoService = true
	return conf
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func TestInitStore(t *testing.T) {
	os.RemoveAll("test_data")
	os.Mkdir("test_data", os.ModeDir|0777)
	defer os.RemoveAll("test_data")

	conf := newTestConfig(t, "test_data")
	conf.Store = config.BadgerStore

	engine := NewNaivechain(conf)
	require.NoError(t, engine.initStore())
	defer engine.Store.Close()

	engine2 := NewNaivechain(conf)
	require.NoError(t, engine2.initStore())
	defer engine2.Store.Close()

	//check that engine2 created a new db (badger_db(1))
	if _, err := os.Stat(filepath.Join("test_data", "badger_db(1)")); os.IsNotExist(err) {
		t.Fatal(err)
	}
}

func TestInitUnknownStore(t *testing.T) {
	conf := newTestConfig(t, "test_data")
	conf.Store = "mongo"

	engine := NewNaivechain(conf)
	assert.Error(t, engine.initStore())
}

func TestInitPeers(t *testing.T) {
	dir, err := ioutil.TempDir("", "naivechain")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	require.NoError(t, peers.NewJSONPeers(dir).SetPeers([]string{"ws://10.0.0.1:6001"}))

	conf := newTestConfig(t, dir)
	conf.Peers = "10.0.0.2:6001"

	engine := NewNaivechain(conf)
	require.NoError(t, engine.initPeers())

	assert.Equal(t, []string{"10.0.0.2:6001", "ws://10.0.0.1:6001"}, engine.Peers)
}

func TestEngines(t *testing.T) {
	for _, transport := range []string{config.WebsocketTransport, config.TCPTransport} {
		t.Run(transport, func(t *testing.T) {
			dir, err := ioutil.TempDir("", "naivechain")
			require.NoError(t, err)
			defer os.RemoveAll(dir)

			conf1 := newTestConfig(t, filepath.Join(dir, "node1"))
			conf1.Transport = transport
			conf1.Store = config.LevelDBStore

			engine1 := NewNaivechain(conf1)
			require.NoError(t, engine1.Init())
			go engine1.Run()
			defer engine1.Shutdown()

			_, err = engine1.Node.MineRecord("first")
			require.NoError(t, err)

			conf2 := newTestConfig(t, filepath.Join(dir, "node2"))
			conf2.Transport = transport
			conf2.Peers = engine1.Transport.AdvertiseAddr()

			engine2 := NewNaivechain(conf2)
			require.NoError(t, engine2.Init())
			go engine2.Run()
			defer engine2.Shutdown()

			waitFor(t, "node2 to catch up", func() bool {
				return len(engine2.Node.GetChain()) == 2
			})

			record, err := engine2.Node.MineRecord("second")
			require.NoError(t, err)

			waitFor(t, "node1 to append", func() bool {
				return engine1.Chain.Tip() == record
			})

			// the store of node1 follows the chain
			stored, err := engine1.Store.Records()
			require.NoError(t, err)
			assert.Equal(t, engine1.Node.GetChain(), stored)
			assert.Equal(t, chain.Genesis(), stored[0])
		})
	}
}
