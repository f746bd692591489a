package counter

import (
	"encoding/csv"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ValentinKolb/fsSync/cmd/util"
	"github.com/ValentinKolb/fsSync/lib/common"
	"github.com/ValentinKolb/fsSync/lib/counter"
	"github.com/ValentinKolb/fsSync/lib/lockmgr"
	"github.com/ValentinKolb/fsSync/lib/pathmap"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the counter and lock primitives",
		Long:    "Runs benchmarks against the configured root. Run it from several machines or processes at once to measure contention on a shared mount.",
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix  = "__test"
	perfNumThreads = 10
	perfKeySpread  = 100
	perfSkip       = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines to use for the benchmark, each with its own store"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for fsSync")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(counterConf.String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("staring tests...")

	results := make(map[string]testing.BenchmarkResult)

	// every goroutine gets its own store and manager, just like separate processes
	newStore := func() counter.ICounterStore {
		return counter.NewCounterStore(pathmap.NewPathMapper(counterConf.Root))
	}
	newLockMgr := func() lockmgr.ILockManager {
		return lockmgr.NewLockManager(pathmap.NewPathMapper(counterConf.Root))
	}

	benchmarks := []struct {
		name string
		fn   func(pb *testing.PB, getKey func(int) string)
	}{
		{"set", func(pb *testing.PB, getKey func(int) string) {
			store := newStore()
			for i := 0; pb.Next(); i++ {
				if _, err := store.SetValue(getKey(i), int64(i)); err != nil {
					log.Printf("(set) - error setting key: %v\n", err)
				}
			}
		}},
		{"get", func(pb *testing.PB, getKey func(int) string) {
			store := newStore()
			for i := 0; pb.Next(); i++ {
				if _, err := store.GetValue(getKey(i)); err != nil {
					log.Printf("(get) - error getting key: %v\n", err)
				}
			}
		}},
		{"inc", func(pb *testing.PB, getKey func(int) string) {
			store := newStore()
			for i := 0; pb.Next(); i++ {
				if _, err := store.Increment(getKey(i), 1); err != nil {
					log.Printf("(inc) - error incrementing key: %v\n", err)
				}
			}
		}},
		{"inc-contended", func(pb *testing.PB, getKey func(int) string) {
			store := newStore()
			for pb.Next() {
				if _, err := store.Increment(getKey(0), 1); err != nil {
					log.Printf("(inc-contended) - error incrementing key: %v\n", err)
				}
			}
		}},
		{"has-not", func(pb *testing.PB, _ func(int) string) {
			store := newStore()
			for i := 0; pb.Next(); i++ {
				key := fmt.Sprintf("%s/has-not-%d", perfKeyPrefix, i%100)
				if _, err := store.HasValue(key); err != nil {
					log.Printf("(has-not) - error checking key: %v\n", err)
				}
			}
		}},
		{"lock", func(pb *testing.PB, getKey func(int) string) {
			mgr := newLockMgr()
			for i := 0; pb.Next(); i++ {
				key := getKey(i)
				if err := mgr.Lock(key); err != nil {
					log.Printf("(lock) - error locking key: %v\n", err)
					continue
				}
				if _, err := mgr.Unlock(key); err != nil {
					log.Printf("(lock) - error unlocking key: %v\n", err)
				}
			}
		}},
		{"lock-contended", func(pb *testing.PB, getKey func(int) string) {
			mgr := newLockMgr()
			for pb.Next() {
				if err := mgr.Lock(getKey(0)); err != nil {
					log.Printf("(lock-contended) - error locking key: %v\n", err)
					continue
				}
				if _, err := mgr.Unlock(getKey(0)); err != nil {
					log.Printf("(lock-contended) - error unlocking key: %v\n", err)
				}
			}
		}},
	}

	for _, bench := range benchmarks {
		if shouldSkip(bench.name) {
			printResult(bench.name, testing.BenchmarkResult{})
			continue
		}

		getKey, iter := getKeys(bench.name)

		// every key starts at 0 so that get finds a value
		store := newStore()
		iter(func(k string) {
			if _, err := store.SetValue(k, 0); err != nil {
				log.Printf("(%s) - error preparing key: %v\n", bench.name, err)
			}
		})

		result := testing.Benchmark(func(b *testing.B) {
			b.SetParallelism(perfNumThreads)
			b.ResetTimer()
			b.RunParallel(func(pb *testing.PB) {
				bench.fn(pb, getKey)
			})
		})

		// cleanup
		iter(func(k string) {
			if err := store.Delete(k); err != nil {
				log.Printf("(%s) - error deleting key: %v\n", bench.name, err)
			}
		})

		results[bench.name] = result
		printResult(bench.name, result)
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, counterConf); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, config common.Config) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Root", "Threads", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			config.Root,
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
