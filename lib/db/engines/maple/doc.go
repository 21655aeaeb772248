// Package maple implements the volatile key-value engine: a db.KVDB kept entirely in
// process memory on top of xsync.MapOf. It is the fallback backend of the store and
// the engine used wherever persistence is not wanted (tests, CLI dry runs).
//
// Key Properties:
//
//   - Values are copied on Put and on every read, so callers never share memory
//     with the engine and a concurrent reader never sees a half written value.
//   - xsync.MapOf shards keys internally, so no additional locking is needed for
//     single-key operations.
//   - Keys and GetAll walk the map with Range; the iteration order is unspecified
//     and not stable between calls.
//   - A maple instance has no namespace outside itself: Destroy is Clear plus Close,
//     and a fresh instance (see Factory) is an empty namespace.
//
// Usage Example:
//
//	database := maple.NewMapleDB(nil)
//	defer database.Close()
//
//	_ = database.Put("session:123", []byte(`{"user":"alice"}`))
//	value, ok, _ := database.Get("session:123")
package maple
