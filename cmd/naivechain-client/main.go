package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mosaicnetworks/naivechain/src/client"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	nodes   string
	data    string
	tuples  int
	timeout time.Duration
	verbose bool
)

// RootCmd mines records on a set of nodes.
var RootCmd = &cobra.Command{
	Use:          "naivechain-client",
	Short:        "Mine records on naivechain nodes",
	SilenceUsage: true,
	RunE:         mine,
}

// BlocksCmd prints the chain of a node.
var BlocksCmd = &cobra.Command{
	Use:          "blocks",
	Short:        "Print the chain of the first node",
	SilenceUsage: true,
	RunE:         blocks,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&nodes, "nodes", "", "Comma-separated list of node API addresses")
	RootCmd.PersistentFlags().DurationVar(&timeout, "timeout", client.DefaultTimeout, "HTTP request timeout")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log requests")
	RootCmd.Flags().StringVar(&data, "data", "", "Payload of the mined records")
	RootCmd.Flags().IntVarP(&tuples, "tuples", "t", 1, "Number of records to mine on every node")

	RootCmd.AddCommand(BlocksCmd)
}

func main() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newClient() *client.Client {
	logger := logrus.New()
	logger.Level = logrus.WarnLevel
	if verbose {
		logger.Level = logrus.DebugLevel
	}
	return client.NewClient(timeout, logrus.NewEntry(logger))
}

func nodeList() []string {
	var res []string
	for _, n := range strings.Split(nodes, ",") {
		if n = strings.TrimSpace(n); n != "" {
			res = append(res, n)
		}
	}
	return res
}

func mine(cmd *cobra.Command, args []string) error {
	list := nodeList()
	if len(list) == 0 {
		pterm.Warning.Println("Empty nodes, please pass --nodes parameter")
		return nil
	}
	if data == "" {
		pterm.Warning.Println("Empty data, please pass --data parameter")
		return nil
	}

	failed := 0
	newClient().AddBlock(list, data, tuples, func(r client.Result) {
		if r.Err != nil {
			failed++
			pterm.Error.Printfln("%s [%s]: %v", r.Node, r.Data, r.Err)
			return
		}
		pterm.Success.Printfln("%s [%s]: %s, index %d, hash %s",
			r.Node, r.Data, r.Response.Msg, r.Response.Block.Index, r.Response.Block.Hash)
	})

	if failed > 0 {
		return fmt.Errorf("%d requests failed", failed)
	}
	return nil
}

func blocks(cmd *cobra.Command, args []string) error {
	list := nodeList()
	if len(list) == 0 {
		pterm.Warning.Println("Empty nodes, please pass --nodes parameter")
		return nil
	}

	records, err := newClient().Blocks(list[0])
	if err != nil {
		pterm.Error.Println(err)
		return err
	}

	table := pterm.TableData{{"Index", "Timestamp", "Data", "Hash"}}
	for _, r := range records {
		table = append(table, []string{
			strconv.Itoa(r.Index),
			strconv.FormatFloat(r.Timestamp, 'f', -1, 64),
			r.Data,
			r.Hash,
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(table).Render()
}
