// Package db provides the engine layer below the store: a KVDB handle interface for
// one namespace of opaque byte values, and the Opener interface for the storage
// facility that hands such handles out.
//
// Key Components:
//
//   - KVDB Interface: handle-level operations (Get, Put, Delete, Clear, Count, Keys,
//     GetAll, Destroy) plus feature discovery and metadata. Every operation either
//     completes or returns an error; engines never panic on I/O failures.
//
//   - Opener Interface: the capability check (Available) and Open(name). An Opener
//     maps each name to an independent namespace, so two names never share keys.
//
//   - Feature Flags: The Feature type defines capability flags that implementations
//     advertise through SupportsFeature. The store uses them to report
//     NOT_SUPPORTED instead of failing in an engine specific way.
//
//   - Database Information: DatabaseInfo reports implementation, size and key count.
//     Sizes are estimates for most engines.
//
// Related Packages:
//
// The engines/bolt package is the persistent engine. Each namespace is one bbolt
// file holding a single bucket; Destroy removes the file.
//
// The engines/maple package is the volatile engine, a concurrent map that lives as
// long as the handle.
//
// The testing package provides RunKVDBTests, a conformance suite every engine runs.
package db
