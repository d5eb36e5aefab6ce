package commands

import (
	"github.com/mosaicnetworks/naivechain/src/config"
	"github.com/spf13/cobra"
)

var (
	_config = config.NewDefaultConfig()
)

//RootCmd is the root command for naivechain
var RootCmd = &cobra.Command{
	Use:              "naivechain",
	Short:            "naive peer-replicated chain of records",
	TraverseChildren: true,
}
