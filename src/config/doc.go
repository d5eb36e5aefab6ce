// Package config defines the configuration for a naivechain node.
//
// Regardless of how naivechain is started, directly from Go code or as a
// standalone process from the command line, it uses the Config object defined
// in this package to store and forward configuration options. On top of these
// configuration options, naivechain relies on a data directory, defined by
// Config.DataDir, where it looks for a few optional files:
//
//  naivechain.toml // configuration options, overridden by command line flags.
//  peers.json // a JSON array of addresses to dial on startup.
package config
