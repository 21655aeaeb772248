// Package bolt implements the persistent key-value engine on top of bbolt.
//
// Every namespace name is mapped to its own file, <Dir>/<escaped name>.db, holding a
// single bucket. Distinct names therefore never share keys, and destroying a
// namespace is removing its file.
//
// The Opener is the storage facility: Available performs the cheap capability check
// (a data directory is configured and usable) and Open creates the directory, the
// file and the bucket as needed. Open waits at most Options.Timeout for the file
// lock, so a namespace already held by another process fails fast instead of
// hanging; the store then falls back to memory.
//
// All reads copy values out of bbolt's mmap before the transaction ends.
package bolt
