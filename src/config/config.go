package config

import (
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/mosaicnetworks/naivechain/src/common"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// Default filenames.
const (
	// DefaultBadgerFile is the default name of the folder containing the Badger
	// database
	DefaultBadgerFile = "badger_db"

	// DefaultLevelDBFile is the default name of the folder containing the
	// LevelDB database
	DefaultLevelDBFile = "leveldb_db"

	// DefaultConfigFile is the name, without extension, of the optional
	// configuration file in the data directory
	DefaultConfigFile = "naivechain"
)

// Store types.
const (
	InmemStore   = "inmem"
	BadgerStore  = "badger"
	LevelDBStore = "leveldb"
)

// Transport types.
const (
	WebsocketTransport = "ws"
	TCPTransport       = "tcp"
)

// Default configuration values.
const (
	DefaultLogLevel    = "info"
	DefaultBindAddr    = "127.0.0.1:6001"
	DefaultServiceAddr = "127.0.0.1:3001"
	DefaultTransport   = WebsocketTransport
	DefaultStore       = InmemStore
	DefaultTimeout     = 1000 * time.Millisecond
	DefaultQueueSize   = 64
)

// Config contains all the configuration properties of a naivechain node.
type Config struct {
	// DataDir is the top-level directory containing naivechain configuration
	// and data
	DataDir string `mapstructure:"datadir"`

	// LogLevel determines the chattiness of the log output.
	LogLevel string `mapstructure:"log"`

	// LogFile, when set, receives a copy of every log entry in JSON format.
	LogFile string `mapstructure:"log-file"`

	// BindAddr is the local address:port where this node accepts connections
	// from other nodes.
	BindAddr string `mapstructure:"listen"`

	// AdvertiseAddr is used to change the address that we advertise to other
	// nodes.
	AdvertiseAddr string `mapstructure:"advertise"`

	// Transport selects the peer-to-peer transport: "ws" for websockets, "tcp"
	// for plain TCP.
	Transport string `mapstructure:"transport"`

	// NoService disables the HTTP API service.
	NoService bool `mapstructure:"no-service"`

	// ServiceAddr is the address:port of the HTTP API service.
	ServiceAddr string `mapstructure:"service-listen"`

	// Peers is a comma-separated list of addresses to dial on startup, on top
	// of those listed in the peers.json file of the data directory.
	Peers string `mapstructure:"peers"`

	// Store selects where the chain is kept: "inmem", "badger" or "leveldb".
	// Databases are always created fresh; the chain starts from the genesis
	// record on every run.
	Store string `mapstructure:"store"`

	// DatabaseDir is the directory containing database files. It defaults to
	// a folder inside DataDir.
	DatabaseDir string `mapstructure:"db"`

	// Timeout is the timeout for dialing peers.
	Timeout time.Duration `mapstructure:"timeout"`

	// QueueSize is the number of outbound messages that can wait on a
	// connection before new ones are dropped.
	QueueSize int `mapstructure:"queue-size"`

	logger *logrus.Logger

	// settings the current logger was built from
	loggerLevel string
	loggerFile  string
	// the test logger is never rebuilt
	fixedLogger bool
}

// NewDefaultConfig returns a config object with default values.
func NewDefaultConfig() *Config {
	config := &Config{
		DataDir:     DefaultDataDir(),
		LogLevel:    DefaultLogLevel,
		BindAddr:    DefaultBindAddr,
		ServiceAddr: DefaultServiceAddr,
		Transport:   DefaultTransport,
		Store:       DefaultStore,
		Timeout:     DefaultTimeout,
		QueueSize:   DefaultQueueSize,
	}

	return config
}

// NewTestConfig returns a config object with default values and a special
// logger for debugging tests.
func NewTestConfig(t testing.TB, level logrus.Level) *Config {
	config := NewDefaultConfig()
	config.logger = common.NewTestLogger(t, level)
	config.fixedLogger = true
	return config
}

// DatabasePath returns the directory of the database files: DatabaseDir if
// set, otherwise a folder named after the store type inside DataDir.
func (c *Config) DatabasePath() string {
	if c.DatabaseDir != "" {
		return c.DatabaseDir
	}
	return filepath.Join(c.DataDir, databaseFile(c.Store))
}

// PeerList returns the addresses of the Peers option.
func (c *Config) PeerList() []string {
	var res []string
	for _, p := range strings.Split(c.Peers, ",") {
		if p = strings.TrimSpace(p); p != "" {
			res = append(res, p)
		}
	}
	return res
}

// Logger returns a formatted logrus Entry, with prefix set to "naivechain".
// When LogFile is set, entries are also written to that file in JSON. The
// logger is rebuilt whenever LogLevel or LogFile changed since the last call,
// so that values read from a config file take effect.
func (c *Config) Logger() *logrus.Entry {
	if c.logger == nil || c.loggerOutdated() {
		c.logger = logrus.New()
		c.logger.Level = LogLevel(c.LogLevel)
		c.logger.Formatter = new(prefixed.TextFormatter)

		if c.LogFile != "" {
			c.logger.Hooks.Add(lfshook.NewHook(
				c.LogFile,
				&logrus.JSONFormatter{},
			))
		}

		c.loggerLevel = c.LogLevel
		c.loggerFile = c.LogFile
	}
	return c.logger.WithField("prefix", "naivechain")
}

func (c *Config) loggerOutdated() bool {
	if c.fixedLogger {
		return false
	}
	return c.loggerLevel != c.LogLevel || c.loggerFile != c.LogFile
}

// databaseFile returns the default folder name of a store type.
func databaseFile(store string) string {
	if store == LevelDBStore {
		return DefaultLevelDBFile
	}
	return DefaultBadgerFile
}

// DefaultDataDir return the default directory name for top-level naivechain
// config based on the underlying OS, attempting to respect conventions.
func DefaultDataDir() string {
	// Try to place the data folder in the user's home dir
	home := HomeDir()
	if home != "" {
		if runtime.GOOS == "darwin" {
			return filepath.Join(home, ".Naivechain")
		} else if runtime.GOOS == "windows" {
			return filepath.Join(home, "AppData", "Roaming", "Naivechain")
		} else {
			return filepath.Join(home, ".naivechain")
		}
	}
	// As we cannot guess a stable location, return empty and handle later
	return ""
}

// HomeDir returns the user's home directory.
func HomeDir() string {
	if home := os.Getenv("HOME"); home != "" {
		return home
	}
	if usr, err := user.Current(); err == nil {
		return usr.HomeDir
	}
	return ""
}

// LogLevel parses a string into a Logrus log level.
func LogLevel(l string) logrus.Level {
	switch l {
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "panic":
		return logrus.PanicLevel
	default:
		return logrus.DebugLevel
	}
}
