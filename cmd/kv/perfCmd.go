package kv

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/MakeenTechnology/tiny-idb-helper/cmd/util"
	"github.com/MakeenTechnology/tiny-idb-helper/lib/common"
	"github.com/dustin/go-humanize"
	"github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the local store",
		Long:    "Runs a set of parallel benchmarks against the configured store. All keys used by the benchmarks are removed afterwards.",
		RunE:    runPerf,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix      = "__test"
	perfLargeValueSize = uint64(100 * humanize.KByte)
	perfNumThreads     = 10
	perfKeySpread      = 100
	perfSkip           = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of goroutines per CPU to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().String(key, "100KB", util.WrapString("How large the value for the set-large test should be (e.g. 512B, 100KB, 1MB)"))
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
	size, err := humanize.ParseBytes(viper.GetString("large-value-size"))
	if err != nil {
		return fmt.Errorf("invalid large-value-size: %w", err)
	}
	perfLargeValueSize = size
	perfKeySpread = viper.GetInt("keys")
	perfNumThreads = viper.GetInt("threads")
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	if perfKeySpread < 1 {
		return fmt.Errorf("keys must be at least 1, got %d", perfKeySpread)
	}
	if perfNumThreads < 1 {
		return fmt.Errorf("threads must be at least 1, got %d", perfNumThreads)
	}
	return nil
}

// --------------------------------------------------------------------------
// Benchmarks
// --------------------------------------------------------------------------

// perfCase is one benchmark. prepare runs before the timer starts, op is called
// with the key for the current iteration.
type perfCase struct {
	name    string
	prepare func(key string) error
	op      func(key string, i int) error
}

// perfResult combines the benchmark result with the latency histogram of all
// operations it ran.
type perfResult struct {
	bench   testing.BenchmarkResult
	latency metrics.Histogram
	errors  int64
}

func perfCases() []perfCase {
	largeValue := strings.Repeat("x", int(perfLargeValueSize))
	setValue := func(v any) func(string) error {
		return func(k string) error { return kvStore.Set(k, v) }
	}

	return []perfCase{
		{
			name: "set",
			op:   func(k string, _ int) error { return kvStore.Set(k, "test") },
		},
		{
			name: "set-large",
			op:   func(k string, _ int) error { return kvStore.Set(k, largeValue) },
		},
		{
			name:    "get",
			prepare: setValue("test"),
			op: func(k string, _ int) error {
				_, _, err := kvStore.Get(k)
				return err
			},
		},
		{
			name:    "has",
			prepare: setValue("test"),
			op: func(k string, _ int) error {
				_, err := kvStore.Has(k)
				return err
			},
		},
		{
			name:    "incr",
			prepare: setValue(0),
			op: func(k string, _ int) error {
				_, err := kvStore.IncrementOne(k)
				return err
			},
		},
		{
			name:    "toggle",
			prepare: setValue(false),
			op: func(k string, _ int) error {
				_, err := kvStore.Toggle(k)
				return err
			},
		},
		{
			name: "mixed",
			op: func(k string, i int) error {
				var err error
				switch i % 4 {
				case 0: // set
					err = kvStore.Set(k, "test")
				case 1: // get
					_, _, err = kvStore.Get(k)
				case 2: // remove
					err = kvStore.Remove(k)
				case 3: // has
					_, err = kvStore.Has(k)
				}
				return err
			},
		},
	}
}

// runCase benchmarks a single case and removes its keys afterwards
func runCase(c perfCase) perfResult {
	result := perfResult{latency: metrics.NewHistogram(metrics.NewUniformSample(4096))}
	errCount := metrics.NewCounter()

	result.bench = testing.Benchmark(func(b *testing.B) {
		getKey, iter := getKeys(c.name)

		if c.prepare != nil {
			iter(func(k string) {
				if err := c.prepare(k); err != nil {
					log.Warningf("(%s) - error preparing key: %v", c.name, err)
				}
			})
		}

		// cleanup
		b.Cleanup(func() {
			iter(func(k string) {
				if err := kvStore.Remove(k); err != nil {
					log.Warningf("(%s) - error removing key: %v", c.name, err)
				}
			})
		})

		b.SetParallelism(perfNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				if err := c.op(getKey(counter), counter); err != nil {
					errCount.Inc(1)
					log.Debugf("(%s) - error performing operation: %v", c.name, err)
				}
				result.latency.Update(time.Since(start).Nanoseconds())
				counter++
			}
		})
	})

	result.errors = errCount.Count()
	return result
}

func runPerf(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for the local store")

	// Print configuration
	config := util.GetStoreConfig()
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Println(config.String())
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Printf("Large value: %s\n", humanize.Bytes(perfLargeValueSize))
	fmt.Println()

	fmt.Println("starting tests...")

	// the store is opened lazily, so make sure the backend is chosen before timing
	if _, err := kvStore.Length(); err != nil {
		return err
	}
	fmt.Printf("backend: %s\n\n", kvStore.Backend())

	results := make(map[string]perfResult)
	for _, c := range perfCases() {
		if shouldSkip(c.name) {
			continue
		}
		results[c.name] = runCase(c)
		printResult(c.name, results[c.name])
	}

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, config); err != nil {
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
	// Check if the test is in the skip list
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
	for i := range keys {
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

// opsPerSec converts the result to operations per second, 0 if nothing ran
func opsPerSec(result testing.BenchmarkResult) (float64, float64) {
	if result.NsPerOp() == 0 {
		return 0, 0
	}
	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	return nsPerOp, 1.0 / (nsPerOp / 1e9)
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result perfResult) {
	nsPerOp, perSec := opsPerSec(result.bench)
	if nsPerOp == 0 {
		fmt.Printf("%-12sskipped\n", test)
		return
	}

	p := result.latency.Percentiles([]float64{0.5, 0.99})
	fmt.Printf("%-12s%.0fns/op (%s/op)\t%.0f ops/sec\tp50=%s p99=%s\terrors=%d\n",
		test, nsPerOp, time.Duration(nsPerOp), perSec,
		time.Duration(p[0]), time.Duration(p[1]), result.errors)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]perfResult, config *common.StoreConfig) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50Ns", "P99Ns", "MaxNs", "Errors",
		"Backend", "DataDir", "StoreName", "NoSync",
		"Threads", "LargeValueBytes", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		nsPerOp, perSec := opsPerSec(result.bench)
		p := result.latency.Percentiles([]float64{0.5, 0.99})

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", perSec),
			fmt.Sprintf("%.0f", p[0]),
			fmt.Sprintf("%.0f", p[1]),
			strconv.FormatInt(result.latency.Max(), 10),
			strconv.FormatInt(result.errors, 10),
			string(kvStore.Backend()),
			config.DataDir,
			config.StoreName,
			strconv.FormatBool(config.NoSync),
			strconv.Itoa(perfNumThreads),
			strconv.FormatUint(perfLargeValueSize, 10),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
