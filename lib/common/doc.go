// Package common contains the pieces shared by the command line tools: the
// StoreConfig struct filled from flags and environment, and the logger factory
// that formats every package logger (store, db, cli) the same way.
package common
