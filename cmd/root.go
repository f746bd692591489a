package cmd

import (
	"fmt"
	"os"

	"github.com/ValentinKolb/fsSync/cmd/counter"
	"github.com/ValentinKolb/fsSync/cmd/lock"
	"github.com/ValentinKolb/fsSync/cmd/util"
	"github.com/ValentinKolb/fsSync/lib/common"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "fssync",
		Short: "filesystem based locks and counters",
		Long: fmt.Sprintf(`fsSync (v%s)

Cross-process locks and atomic integer counters for processes that
share nothing but a directory. Built on flock(2), no server required.`, Version),
		SilenceUsage:      true,
		PersistentPostRun: dumpMetrics,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of fsSync",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("fsSync v%s\n", Version)
		},
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitConfig)

	// Add Commands
	RootCmd.AddCommand(lock.LockCommands)
	RootCmd.AddCommand(counter.CounterCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	util.SetupStorageFlags(RootCmd)
}

// dumpMetrics prints all metrics to stderr if requested
func dumpMetrics(_ *cobra.Command, _ []string) {
	if viper.GetBool("metrics") {
		common.WriteMetrics(os.Stderr, false)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
