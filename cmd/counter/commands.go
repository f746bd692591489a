package counter

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/ValentinKolb/fsSync/lib/counter"
	"github.com/ValentinKolb/fsSync/lib/fserr"
	"github.com/ValentinKolb/fsSync/lib/pathmap"
	"github.com/spf13/cobra"
)

var (
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value of a counter",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return fmt.Errorf("value must be an integer: %w", err)
			}
			stored, err := counterStore.SetValue(key, value)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, value=%d\n", key, stored)
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value of a counter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value, err := counterStore.GetValue(key)
			if errors.Is(err, fserr.ErrNotFound) {
				fmt.Printf("key=%s, found=false\n", key)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=true, value=%d\n", key, value)
			return nil
		},
	}
	incCmd = &cobra.Command{
		Use:   "inc [key] [delta]",
		Short: "Atomically adds delta (default 1, may be negative) to a counter",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			delta := int64(1)
			if len(args) == 2 {
				var err error
				if delta, err = strconv.ParseInt(args[1], 10, 64); err != nil {
					return fmt.Errorf("delta must be an integer: %w", err)
				}
			}
			value, err := counterStore.Increment(key, delta)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, value=%d\n", key, value)
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a counter has a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			found, err := counterStore.HasValue(key)
			if err != nil {
				return err
			}
			fmt.Printf("key=%s, found=%t\n", key, found)
			return nil
		},
	}
	delCmd = &cobra.Command{
		Use:   "del [key]",
		Short: "Deletes a counter",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := counterStore.Delete(args[0]); err != nil {
				return err
			}
			fmt.Println("delete successfully")
			return nil
		},
	}
	pathCmd = &cobra.Command{
		Use:   "path [key]",
		Short: "Print the path of the file backing a counter",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(pathmap.NewPathMapper(counterConf.Root).Resolve(args[0], counter.Category))
		},
	}
)
