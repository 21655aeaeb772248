package util

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/MakeenTechnology/tiny-idb-helper/lib/common"
	"github.com/MakeenTechnology/tiny-idb-helper/lib/db"
	"github.com/MakeenTechnology/tiny-idb-helper/lib/db/engines/bolt"
	"github.com/MakeenTechnology/tiny-idb-helper/lib/store"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var line strings.Builder

	for _, word := range strings.Fields(text) {
		// Check if we need to wrap
		if line.Len() > 0 && line.Len()+1+len(word) > Wrap {
			wrappedLines = append(wrappedLines, line.String())
			line.Reset()
		}

		if line.Len() > 0 {
			line.WriteString(" ")
		}
		line.WriteString(word)
	}

	// Add any remaining text
	if line.Len() > 0 {
		wrappedLines = append(wrappedLines, line.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the storage and logging flags to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "data-dir"
	cmd.PersistentFlags().String(key, "./data", WrapString("Directory for the persistent store files. An empty value keeps all data in memory"))

	key = "store-name"
	cmd.PersistentFlags().String(key, store.DefaultStoreName, WrapString("Name of the store namespace to operate on"))

	key = "open-timeout"
	cmd.PersistentFlags().Int(key, 1, WrapString("How long to wait for the store file lock before falling back to memory (in seconds)"))

	key = "no-sync"
	cmd.PersistentFlags().Bool(key, false, WrapString("Skip fsync after each write (faster, but data may be lost on a crash)"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "warn", WrapString("Log level (debug, info, warn, error)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("tinykv")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// GetStoreConfig reads the store configuration from viper
func GetStoreConfig() *common.StoreConfig {
	return &common.StoreConfig{
		DataDir:           viper.GetString("data-dir"),
		StoreName:         viper.GetString("store-name"),
		OpenTimeoutSecond: viper.GetInt("open-timeout"),
		NoSync:            viper.GetBool("no-sync"),
		LogLevel:          viper.GetString("log-level"),
	}
}

// NewStore creates a configured store from config. Without a data directory the
// store has no persistent facility and runs on the in-memory engine.
func NewStore(config *common.StoreConfig) (*store.Store, error) {
	var opener db.Opener
	if config.DataDir != "" {
		opener = bolt.NewOpener(bolt.Options{
			Dir:     config.DataDir,
			Timeout: time.Duration(config.OpenTimeoutSecond) * time.Second,
			NoSync:  config.NoSync,
		})
	}

	s := store.NewStore(opener, nil)
	if err := s.Configure(store.Config{StoreName: config.StoreName}); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseValue converts a command line argument into a store value. Valid JSON is
// decoded, the literal undefined maps to store.Undefined and everything else is
// kept as a plain string.
func ParseValue(arg string) any {
	if arg == "undefined" {
		return store.Undefined
	}

	var value any
	if err := json.Unmarshal([]byte(arg), &value); err != nil {
		return arg
	}
	return value
}

// FormatValue renders a store value for output. Strings are printed as JSON so
// that "1" and 1 stay distinguishable.
func FormatValue(value any) string {
	if store.IsUndefined(value) {
		return "undefined"
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err.Error()
	}
	return string(raw)
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
