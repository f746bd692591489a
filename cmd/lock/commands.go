package lock

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ValentinKolb/fsSync/lib/lockmgr"
	"github.com/spf13/cobra"
)

var (
	// acquireCmd represents the acquire command
	acquireCmd = &cobra.Command{
		Use:   "acquire [key]",
		Short: "Acquire a lock and hold it",
		Long:  "Acquire a lock and hold it until the process receives SIGINT or SIGTERM (or --hold expires), then release it.",
		Args:  cobra.ExactArgs(1),
		RunE:  runAcquire,
	}

	// holdCmd is the lock agent used to exercise locks from several processes
	holdCmd = &cobra.Command{
		Use:   "hold [key]",
		Short: "Acquire a lock, hold it for a fixed duration and release it",
		Args:  cobra.ExactArgs(1),
		RunE:  runHold,
	}

	waitCmd = &cobra.Command{
		Use:   "wait [key]",
		Short: "Wait until a lock is released",
		Args:  cobra.ExactArgs(1),
		RunE:  runWait,
	}

	existsCmd = &cobra.Command{
		Use:   "exists [key]",
		Short: "Check if a lock is currently held",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			locked, err := lockMgr.Exists(key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, locked=%t\n", key, locked)
			return nil
		},
	}

	pathCmd = &cobra.Command{
		Use:   "path [key]",
		Short: "Print the path of the file backing a lock",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(lockPath(args[0]))
		},
	}
)

// runAcquire handles the acquire lock command
func runAcquire(cmd *cobra.Command, args []string) error {
	key := args[0]
	timeout, _ := cmd.Flags().GetDuration("timeout")
	hold, _ := cmd.Flags().GetDuration("hold")

	if timeout > 0 {
		acquired, err := lockmgr.AcquireWithin(lockMgr, key, timeout, lockConf.PollInterval)
		if err != nil {
			return fmt.Errorf("failed to acquire lock: %w", err)
		}
		if !acquired {
			fmt.Printf("acquired=false\n")
			return nil
		}
	} else if err := lockMgr.Lock(key); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	fmt.Printf("acquired=true\n")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if hold > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, hold)
		defer cancel()
	}
	<-ctx.Done()

	released, err := lockMgr.Unlock(key)
	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	fmt.Printf("released=%t\n", released)
	return nil
}

// runHold acquires, holds and releases a lock while reporting every step
func runHold(cmd *cobra.Command, args []string) error {
	key := args[0]
	duration, _ := cmd.Flags().GetDuration("duration")
	instance, _ := cmd.Flags().GetInt("instance")

	output(instance, "acquiring lock %s", key)
	if err := lockMgr.Lock(key); err != nil {
		return err
	}
	output(instance, "lock %s acquired", key)

	time.Sleep(duration)

	if _, err := lockMgr.Unlock(key); err != nil {
		return err
	}
	output(instance, "lock %s released", key)
	return nil
}

// runWait waits for a lock while reporting every step
func runWait(cmd *cobra.Command, args []string) error {
	key := args[0]
	instance, _ := cmd.Flags().GetInt("instance")

	output(instance, "waiting for lock %s", key)
	if err := lockMgr.Wait(key); err != nil {
		return err
	}
	output(instance, "lock %s was released", key)
	return nil
}

func output(instance int, format string, args ...interface{}) {
	fmt.Printf("#%d: %s\n", instance, fmt.Sprintf(format, args...))
}
