package cmd

import (
	"fmt"
	"os"

	"github.com/MakeenTechnology/tiny-idb-helper/cmd/kv"
	"github.com/spf13/cobra"
)

const (
	Version = "1.0.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "tinykv",
		Short: "embedded key-value store",
		Long: fmt.Sprintf(`tinykv (v%s)

An embedded key-value store for JSON values. Data is kept in a local bbolt
file per store name; when the file cannot be opened the store keeps working
in memory.`, Version),
		SilenceUsage: true,
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of tinykv",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tinykv v%s\n", Version)
		},
	}
)

func init() {
	// Add Commands
	RootCmd.AddCommand(kv.KeyValueCommands)
	RootCmd.AddCommand(versionCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
