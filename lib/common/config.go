package common

import (
	"fmt"
	"strings"
)

// --------------------------------------------------------------------------
// CLI store configuration struct
// --------------------------------------------------------------------------

// StoreConfig holds everything the command line needs to build a store.
type StoreConfig struct {
	// DataDir holds one bolt file per store name. Empty disables persistence.
	DataDir string
	// StoreName selects the namespace
	StoreName string
	// OpenTimeoutSecond bounds the wait for the file lock
	OpenTimeoutSecond int
	// NoSync skips fsync after each commit
	NoSync bool

	// Logging configuration
	LogLevel string
}

// String returns a formatted string representation of the configuration
func (c *StoreConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	// Storage
	addSection("Storage")
	dataDir := c.DataDir
	if dataDir == "" {
		dataDir = "(none, in-memory only)"
	}
	addField("Data Directory", dataDir)
	addField("Store Name", c.StoreName)
	addField("Open Timeout", fmt.Sprintf("%d sec", c.OpenTimeoutSecond))
	addField("No Sync", fmt.Sprintf("%t", c.NoSync))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}
