package db

import "errors"

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplMaple Implementation = "maple"
	ImplBolt  Implementation = "bolt"
)

// Feature represents database features as bit flags
type Feature uint64

const (
	FeatureGet     Feature = 1 << iota // Support for Get operations
	FeaturePut                         // Support for Put operations
	FeatureDelete                      // Support for Delete operations
	FeatureClear                       // Support for Clear operations
	FeatureCount                       // Support for Count operations
	FeatureKeys                        // Support for Keys operations
	FeatureGetAll                      // Support for GetAll operations
	FeatureDestroy                     // Support for Destroy operations
)

func (f Feature) String() string {
	switch f {
	case FeatureGet:
		return "Get"
	case FeaturePut:
		return "Put"
	case FeatureDelete:
		return "Delete"
	case FeatureClear:
		return "Clear"
	case FeatureCount:
		return "Count"
	case FeatureKeys:
		return "Keys"
	case FeatureGetAll:
		return "GetAll"
	case FeatureDestroy:
		return "Destroy"
	default:
		return "Unknown"
	}
}

type DatabaseInfo struct {
	SizeBytes         int            `json:"size_bytes"`
	Keys              int            `json:"keys"`
	DbType            Implementation `json:"db_type"`
	Persistent        bool           `json:"persistent"`
	SupportedFeatures []Feature      `json:"supported_features"`
	Metadata          interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

var (
	// ErrClosed is returned by every operation on a handle that was closed or destroyed.
	ErrClosed = errors.New("db: handle is closed")
	// ErrUnavailable is returned by an Opener whose storage facility is not usable.
	ErrUnavailable = errors.New("db: persistent storage is not available")
)

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB is an open handle to one namespace of a key-value database.
// Values are opaque byte strings; the encoding is owned by the caller.
// All methods are safe for concurrent use.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Put inserts or updates the value for key in a single atomic write.
	// A reader never observes a partially written value.
	Put(key string, value []byte) (err error)

	// Delete removes the entry for key. Deleting a missing key is not an error.
	Delete(key string) (err error)

	// Clear removes every entry but keeps the namespace open.
	Clear() (err error)

	// Destroy removes the whole namespace including data written by other means
	// and closes the handle. Every later call returns ErrClosed.
	Destroy() (err error)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get retrieves the value for an exact key.
	// The boolean return value indicates whether a value for the key was found.
	// The returned slice is owned by the caller.
	Get(key string) (value []byte, loaded bool, err error)

	// Count returns the number of stored keys.
	Count() (n int, err error)

	// Keys returns all stored keys. The order is implementation defined.
	Keys() (keys []string, err error)

	// GetAll returns all stored values. The order is implementation defined.
	GetAll() (values [][]byte, err error)

	// --------------------------------------------------------------------------
	// Feature Support
	// --------------------------------------------------------------------------

	// SupportsFeature checks if the database implementation supports the specified feature.
	// Returns true if the feature is supported, false otherwise.
	// Multiple features can be checked at once using bitwise OR (|) operator.
	SupportsFeature(feature Feature) (ok bool)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close releases the handle. Data in a persistent namespace survives Close.
	Close() (err error)
}

// Opener is the storage facility that hands out KVDB handles by namespace name.
type Opener interface {
	// Available reports whether the facility can be used at all.
	// It must not block and must not create anything.
	Available() bool

	// Open returns a handle for the namespace name, creating it if needed.
	// Distinct names are independent namespaces.
	Open(name string) (KVDB, error)
}

// Factory creates a fresh, empty KVDB. It is used for engines that have no
// namespace concept, like the in-memory engine.
type Factory func() KVDB

// FeaturesOf lists every feature in the mask supported by database.
func FeaturesOf(database KVDB) []Feature {
	var features []Feature
	for f := FeatureGet; f <= FeatureDestroy; f <<= 1 {
		if database.SupportsFeature(f) {
			features = append(features, f)
		}
	}
	return features
}
