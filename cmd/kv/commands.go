package kv

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/MakeenTechnology/tiny-idb-helper/cmd/util"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Reads the value for a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if value, found, err := kvStore.Get(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v, value=%s\n", key, found, util.FormatValue(value))
			}
			return nil
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Sets the value for a key",
		Long:  "Sets the value for a key. The value is parsed as JSON and stored as a plain string if that fails.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := kvStore.Set(args[0], util.ParseValue(args[1])); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	removeCmd = &cobra.Command{
		Use:   "remove [key]",
		Short: "Removes a key value pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := kvStore.Remove(args[0]); err != nil {
				return err
			}
			fmt.Println("remove successfully")
			return nil
		},
	}
	nullifyCmd = &cobra.Command{
		Use:   "nullify [key]",
		Short: "Sets the value for a key to null",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := kvStore.Nullify(args[0]); err != nil {
				return err
			}
			fmt.Println("nullify successfully")
			return nil
		},
	}
	hasCmd = &cobra.Command{
		Use:   "has [key]",
		Short: "Checks if a key exists",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if found, err := kvStore.Has(key); err != nil {
				return err
			} else {
				fmt.Printf("key=%s, found=%v\n", key, found)
			}
			return nil
		},
	}
	incrCmd = &cobra.Command{
		Use:   "incr [key] [amount]",
		Short: "Adds amount (default 1) to a numeric value",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args)
			if err != nil {
				return err
			}
			result, err := kvStore.Increment(args[0], amount)
			if err != nil {
				return err
			}
			fmt.Println(util.FormatValue(result))
			return nil
		},
	}
	decrCmd = &cobra.Command{
		Use:   "decr [key] [amount]",
		Short: "Subtracts amount (default 1) from a numeric value",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args)
			if err != nil {
				return err
			}
			result, err := kvStore.Decrement(args[0], amount)
			if err != nil {
				return err
			}
			fmt.Println(util.FormatValue(result))
			return nil
		},
	}
	toggleCmd = &cobra.Command{
		Use:   "toggle [key]",
		Short: "Stores the logical negation of the current value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := kvStore.Toggle(args[0])
			if err != nil {
				return err
			}
			fmt.Println(result)
			return nil
		},
	}
	appendCmd = &cobra.Command{
		Use:   "append [key] [value]",
		Short: "Adds a value to the end of a list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := kvStore.Append(args[0], util.ParseValue(args[1]))
			if err != nil {
				return err
			}
			fmt.Println(util.FormatValue(list))
			return nil
		},
	}
	prependCmd = &cobra.Command{
		Use:   "prepend [key] [value]",
		Short: "Adds a value to the front of a list",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := kvStore.Prepend(args[0], util.ParseValue(args[1]))
			if err != nil {
				return err
			}
			fmt.Println(util.FormatValue(list))
			return nil
		},
	}
	keysCmd = &cobra.Command{
		Use:   "keys",
		Short: "Lists all keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := kvStore.Keys()
			if err != nil {
				return err
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Println(key)
			}
			return nil
		},
	}
	valuesCmd = &cobra.Command{
		Use:   "values",
		Short: "Lists all values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values, err := kvStore.Values()
			if err != nil {
				return err
			}
			for _, value := range values {
				fmt.Println(util.FormatValue(value))
			}
			return nil
		},
	}
	entriesCmd = &cobra.Command{
		Use:   "entries",
		Short: "Prints all entries as one JSON object",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, err := kvStore.Entries()
			if err != nil {
				return err
			}
			fmt.Println(util.FormatValue(entries))
			return nil
		},
	}
	lengthCmd = &cobra.Command{
		Use:   "length",
		Short: "Prints the number of keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := kvStore.Length()
			if err != nil {
				return err
			}
			fmt.Println(n)
			return nil
		},
	}
	replaceCmd = &cobra.Command{
		Use:   "replace [json-object]",
		Short: "Replaces the whole store content",
		Long:  "Clears the store and writes every entry of the given JSON object. Use - to read the object from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := []byte(args[0])
			if args[0] == "-" {
				var err error
				if raw, err = io.ReadAll(os.Stdin); err != nil {
					return fmt.Errorf("failed to read stdin: %w", err)
				}
			}

			var data map[string]any
			if err := json.Unmarshal(raw, &data); err != nil {
				return fmt.Errorf("argument must be a JSON object: %w", err)
			}
			if data == nil {
				return fmt.Errorf("argument must be a JSON object, got null")
			}

			if err := kvStore.ReplaceAll(data); err != nil {
				return err
			}
			fmt.Printf("replaced with %d entries\n", len(data))
			return nil
		},
	}
	clearCmd = &cobra.Command{
		Use:   "clear",
		Short: "Removes all entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := kvStore.Clear(); err != nil {
				return err
			}
			fmt.Println("clear successfully")
			return nil
		},
	}
	infoCmd = &cobra.Command{
		Use:   "info",
		Short: "Prints information about the active backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := kvStore.Info()
			if err != nil {
				return err
			}

			features := make([]string, 0, len(info.SupportedFeatures))
			for _, f := range info.SupportedFeatures {
				features = append(features, f.String())
			}

			fmt.Printf("%-12s: %s\n", "Store", kvStore.Config().StoreName)
			fmt.Printf("%-12s: %s (%s)\n", "Backend", kvStore.Backend(), info.DbType)
			fmt.Printf("%-12s: %d\n", "Keys", info.Keys)
			fmt.Printf("%-12s: %s\n", "Size", humanize.Bytes(uint64(info.SizeBytes)))
			fmt.Printf("%-12s: %s\n", "Features", strings.Join(features, ", "))
			if reason := kvStore.FallbackReason(); reason != nil {
				fmt.Printf("%-12s: %v\n", "Fallback", reason)
			}
			return nil
		},
	}
	statsCmd = &cobra.Command{
		Use:   "stats",
		Short: "Prints the store metrics in Prometheus text format",
		Long:  "Initializes the store and prints its metrics. Counters start at zero for every invocation.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := kvStore.Length(); err != nil {
				return err
			}
			kvStore.WriteMetrics(os.Stdout)
			return nil
		},
	}
)

// parseAmount reads the optional amount argument of incr and decr
func parseAmount(args []string) (float64, error) {
	if len(args) < 2 {
		return 1, nil
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return 0, fmt.Errorf("amount must be a number: %w", err)
	}
	return amount, nil
}
