package lock

import (
	"github.com/ValentinKolb/fsSync/cmd/util"
	"github.com/ValentinKolb/fsSync/lib/common"
	"github.com/ValentinKolb/fsSync/lib/lockmgr"
	"github.com/ValentinKolb/fsSync/lib/pathmap"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
)

var (
	log = logger.GetLogger("cli")

	lockConf common.Config
	lockMgr  lockmgr.ILockManager

	// LockCommands represents the lock command group
	LockCommands = &cobra.Command{
		Use:               "lock",
		Short:             "Perform lock operations",
		PersistentPreRunE: setupLockManager,
	}
)

func init() {
	LockCommands.AddCommand(acquireCmd)
	LockCommands.AddCommand(holdCmd)
	LockCommands.AddCommand(waitCmd)
	LockCommands.AddCommand(existsCmd)
	LockCommands.AddCommand(pathCmd)

	acquireCmd.Flags().Duration("timeout", 0, util.WrapString("Give up if the lock could not be acquired within this duration (0 blocks forever)"))
	acquireCmd.Flags().Duration("hold", 0, util.WrapString("Release the lock after this duration (0 holds it until SIGINT or SIGTERM)"))

	holdCmd.Flags().Duration("duration", 0, util.WrapString("How long to hold the lock once acquired"))
	holdCmd.Flags().Int("instance", 0, util.WrapString("Instance number used to prefix the output"))

	waitCmd.Flags().Int("instance", 0, util.WrapString("Instance number used to prefix the output"))
}

// setupLockManager initializes the lock manager
func setupLockManager(cmd *cobra.Command, _ []string) error {
	conf, err := util.Setup(cmd)
	if err != nil {
		return err
	}
	lockConf = conf
	lockMgr = util.NewLockManager(conf)
	log.Debugf("lock manager ready:%s", conf.String())
	return nil
}

// lockPath returns the file backing the lock for key
func lockPath(key string) string {
	return pathmap.NewPathMapper(lockConf.Root).Resolve(key, lockmgr.Category)
}
