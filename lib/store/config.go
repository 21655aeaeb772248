package store

import (
	"fmt"
	"strings"
)

// DefaultStoreName is the namespace used until Configure is called.
const DefaultStoreName = "app-db"

// Config is the Store configuration. Each distinct StoreName is an independent
// namespace.
type Config struct {
	StoreName string
}

// DefaultConfig returns the configuration a new Store starts with.
func DefaultConfig() Config {
	return Config{StoreName: DefaultStoreName}
}

// validate checks the configuration before any state is touched.
func (c Config) validate() error {
	if strings.TrimSpace(c.StoreName) == "" {
		return NewError(CodeInvalidConfiguration, "store name must be a non-empty string")
	}
	if strings.ContainsRune(c.StoreName, 0) {
		return NewError(CodeInvalidConfiguration, "store name must not contain NUL bytes")
	}
	return nil
}

// String returns a formatted string representation of the configuration
func (c Config) String() string {
	return fmt.Sprintf("store name: %q", c.StoreName)
}
