package counter

import (
	"github.com/ValentinKolb/fsSync/cmd/util"
	"github.com/ValentinKolb/fsSync/lib/common"
	"github.com/ValentinKolb/fsSync/lib/counter"
	"github.com/spf13/cobra"
)

var (
	counterConf  common.Config
	counterStore counter.ICounterStore

	// CounterCommands represents the counter command group
	CounterCommands = &cobra.Command{
		Use:               "counter",
		Short:             "Perform counter operations",
		PersistentPreRunE: setupCounterStore,
	}
)

func init() {
	// Add subcommands
	CounterCommands.AddCommand(setCmd)
	CounterCommands.AddCommand(getCmd)
	CounterCommands.AddCommand(incCmd)
	CounterCommands.AddCommand(hasCmd)
	CounterCommands.AddCommand(delCmd)
	CounterCommands.AddCommand(pathCmd)
	CounterCommands.AddCommand(perfTestCmd)

	// negative values are arguments, not shorthand flags
	setCmd.Flags().SetInterspersed(false)
	incCmd.Flags().SetInterspersed(false)
}

// setupCounterStore initializes the counter store
func setupCounterStore(cmd *cobra.Command, _ []string) error {
	conf, err := util.Setup(cmd)
	if err != nil {
		return err
	}
	counterConf = conf
	counterStore = util.NewCounterStore(conf)
	return nil
}
