// Package store provides a small key-value API over a persistent engine with a
// transparent in-memory fallback. Values are any JSON representable Go value, plus
// nil and Undefined, and keys are non-empty strings.
//
// The package focuses on:
//   - A lazy initialization gate that picks the backend once per configuration epoch
//   - A value codec that keeps Undefined distinct from nil and from a missing key
//   - Convenience operations built on Get and Set (Increment, Toggle, Append, ...)
//   - Unified, typed error reporting across both backends
//
// Key Components:
//
//   - Store: The object every operation goes through. NewStore takes a db.Opener (the
//     persistent storage facility) and a db.Factory for the in-memory engine.
//     Nothing is opened until the first operation.
//
//   - Initialization Gate: Every operation calls ensureReady first. The first call of
//     an epoch checks Opener.Available and calls Opener.Open(StoreName); if either
//     fails the store silently uses the in-memory engine instead. Concurrent first
//     calls share a single initialization (singleflight keyed by the epoch).
//     IsUsingFallback and FallbackReason expose the outcome.
//
//   - Epochs: Configure, Close and a persistent Clear end the current epoch. The
//     active handle is closed (in-memory data is dropped) and the next operation
//     initializes again. Different store names are independent namespaces.
//
//   - Codec: Encode/Decode turn values into their stored form. Undefined is stored as
//     a reserved marker that starts with a NUL byte and can never be valid JSON;
//     everything else is JSON. Unencodable values (cycles, channels, NaN) fail with
//     SERIALIZATION_ERROR before any write, on both backends.
//
//   - Error System: *Error carries a stable Code (OPEN_FAILURE, TRANSACTION_FAILURE,
//     SERIALIZATION_ERROR, DESERIALIZATION_ERROR, NOT_SUPPORTED, INVALID_ARGUMENT,
//     INVALID_CONFIGURATION) and wraps the engine error when there is one.
//
// Concurrency:
//
//	All methods are safe for concurrent use. Single-key Get, Set and Remove map to
//	one engine call each. Increment, Decrement, Toggle, Append, Prepend, ReplaceAll
//	and Entries are compositions of several engine calls and are not atomic:
//	two concurrent Increments of the same key can lose an update.
//
// Usage Example:
//
//	s := store.NewStore(bolt.NewOpener(bolt.Options{Dir: "data"}), nil)
//	defer s.Close()
//
//	_ = s.Set("user", map[string]any{"name": "alice"})
//	value, found, err := s.Get("user")
//
//	n, err := s.IncrementOne("visits")
//	fmt.Println(n, s.IsUsingFallback())
package store
