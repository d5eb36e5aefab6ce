package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/mosaicnetworks/naivechain/src/config"
	"github.com/mosaicnetworks/naivechain/src/naivechain"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

//NewRunCmd returns the command that starts a naivechain node
func NewRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "run",
		Short:   "Run node",
		PreRunE: loadConfig,
		RunE:    runNaivechain,
	}
	AddRunFlags(cmd)
	return cmd
}

/*******************************************************************************
* RUN
*******************************************************************************/

func runNaivechain(cmd *cobra.Command, args []string) error {
	engine := naivechain.NewNaivechain(_config)

	if err := engine.Init(); err != nil {
		_config.Logger().Error("Cannot initialize engine:", err)
		return err
	}

	sigintCh := make(chan os.Signal, 1)
	signal.Notify(sigintCh, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigintCh
		_config.Logger().Debug("Reacting to SIGINT - Shutdown")
		engine.Shutdown()
	}()

	engine.Run()

	return nil
}

/*******************************************************************************
* CONFIG
*******************************************************************************/

//AddRunFlags adds flags to the Run command
func AddRunFlags(cmd *cobra.Command) {

	cmd.Flags().String("datadir", _config.DataDir, "Top-level directory for configuration and data")
	cmd.Flags().String("log", _config.LogLevel, "debug, info, warn, error, fatal, panic")
	cmd.Flags().String("log-file", _config.LogFile, "Also write logs to this file, in JSON")

	// Network
	cmd.Flags().StringP("listen", "l", _config.BindAddr, "Listen IP:Port for peer connections")
	cmd.Flags().StringP("advertise", "a", _config.AdvertiseAddr, "Advertise IP:Port for peer connections")
	cmd.Flags().String("transport", _config.Transport, "Peer transport: ws or tcp")
	cmd.Flags().String("peers", _config.Peers, "Comma-separated addresses of peers to connect to")
	cmd.Flags().DurationP("timeout", "t", _config.Timeout, "Dial Timeout")
	cmd.Flags().Int("queue-size", _config.QueueSize, "Max number of outbound messages waiting per connection")

	// Service
	cmd.Flags().StringP("service-listen", "s", _config.ServiceAddr, "Listen IP:Port for HTTP service")
	cmd.Flags().Bool("no-service", _config.NoService, "Disable HTTP service")

	// Store
	cmd.Flags().String("store", _config.Store, "Chain store: inmem, badger or leveldb")
	cmd.Flags().String("db", _config.DatabaseDir, "Database directory (default [datadir]/[store]_db)")
}

func loadConfig(cmd *cobra.Command, args []string) error {

	err := bindFlagsLoadViper(cmd)
	if err != nil {
		return err
	}

	logFields := logrus.Fields{
		"DataDir":       _config.DataDir,
		"LogLevel":      _config.LogLevel,
		"LogFile":       _config.LogFile,
		"BindAddr":      _config.BindAddr,
		"AdvertiseAddr": _config.AdvertiseAddr,
		"Transport":     _config.Transport,
		"Peers":         _config.Peers,
		"Timeout":       _config.Timeout,
		"QueueSize":     _config.QueueSize,
		"ServiceAddr":   _config.ServiceAddr,
		"NoService":     _config.NoService,
		"Store":         _config.Store,
	}

	if _config.Store != config.InmemStore {
		logFields["DatabaseDir"] = _config.DatabasePath()
	}

	_config.Logger().WithFields(logFields).Debug("RUN")

	return nil
}

// Bind all flags and read the config into viper
func bindFlagsLoadViper(cmd *cobra.Command) error {
	// Register flags with viper. Include flags from this command and all other
	// persistent flags from the parent
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// first unmarshal to read from CLI flags
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// look for config file in [datadir]/naivechain.toml (.json, .yaml also work)
	viper.SetConfigName(config.DefaultConfigFile) // name of config file (without extension)
	viper.AddConfigPath(_config.DataDir)

	// If a config file is found, read it in.
	err := viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		_config.Logger().Debugf("No config file found in: %s", _config.DataDir)
		return nil
	} else if err != nil {
		return err
	}

	// second unmarshal to read from config file
	if err := viper.Unmarshal(_config); err != nil {
		return err
	}

	// the logger picks up log and log-file from the file
	_config.Logger().Debugf("Using config file: %s", viper.ConfigFileUsed())

	return nil
}
