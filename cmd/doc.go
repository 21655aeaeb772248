// Package cmd implements the command-line interface for the tinykv embedded
// key-value store. Every command opens the store described by its flags, runs a
// single operation and closes the store again.
//
// The package is organized into several subpackages:
//
//   - kv: Commands for key-value store operations (get, set, incr, append, etc.)
//     and the local performance test
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See tinykv -help for a list of all commands.
package cmd
