package commands

import (
	"fmt"
	"os"

	"github.com/mosaicnetworks/naivechain/src/peers"
	"github.com/spf13/cobra"
)

//NewPeersCmd returns the command that manages the peers.json file of the data
//directory. The addresses it lists are dialed by the run command on startup.
func NewPeersCmd() *cobra.Command {
	var datadir string

	cmd := &cobra.Command{
		Use:   "peers",
		Short: "Manage the initial peers in [datadir]/peers.json",
	}
	cmd.PersistentFlags().StringVar(&datadir, "datadir", _config.DataDir, "Top-level directory for configuration and data")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the initial peers",
		RunE: func(cmd *cobra.Command, args []string) error {
			addrs, err := peers.NewJSONPeers(datadir).Peers()
			if err != nil {
				return err
			}
			for _, a := range addrs {
				fmt.Fprintln(cmd.OutOrStdout(), a)
			}
			return nil
		},
	}

	addCmd := &cobra.Command{
		Use:   "add [address...]",
		Short: "Add addresses to the initial peers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return addPeers(datadir, args)
		},
	}

	cmd.AddCommand(listCmd, addCmd)

	return cmd
}

// addPeers appends the addresses that peers.json does not list yet.
func addPeers(datadir string, addrs []string) error {
	if err := os.MkdirAll(datadir, 0700); err != nil {
		return err
	}

	jsonPeers := peers.NewJSONPeers(datadir)

	current, err := jsonPeers.Peers()
	if err != nil {
		return err
	}

	known := make(map[string]bool, len(current))
	for _, a := range current {
		known[a] = true
	}

	for _, a := range addrs {
		if !known[a] {
			current = append(current, a)
			known[a] = true
		}
	}

	return jsonPeers.SetPeers(current)
}
