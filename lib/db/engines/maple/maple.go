package maple

import (
	"sync/atomic"

	"github.com/MakeenTechnology/tiny-idb-helper/lib/db"
	"github.com/MakeenTechnology/tiny-idb-helper/lib/db/util"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Core Maple database structure
// --------------------------------------------------------------------------

// mapleImpl implements an in-memory database over a concurrent map
type mapleImpl struct {
	data   *xsync.MapOf[string, []byte] // Map of active key-value entries
	size   atomic.Int64                 // Sum of all value lengths (estimate)
	sizes  *util.SizeHistogram          // Distribution of value lengths
	closed atomic.Bool
}

// DBOptions configures the mapleImpl behavior during initialization
type DBOptions struct {
	PresizeKeys int // Number of keys to allocate room for (0 = xsync default)
}

// DefaultOptions returns the default mapleImpl options
func DefaultOptions() *DBOptions {
	return &DBOptions{}
}

// --------------------------------------------------------------------------
// Initialization and Setup
// --------------------------------------------------------------------------

// NewMapleDB creates a new, empty MapleDB instance with the specified options (optional)
func NewMapleDB(opts *DBOptions) db.KVDB {
	if opts == nil {
		opts = DefaultOptions()
	}

	data := xsync.NewMapOf[string, []byte]()
	if opts.PresizeKeys > 0 {
		data = xsync.NewMapOf[string, []byte](xsync.WithPresize(opts.PresizeKeys))
	}

	return &mapleImpl{data: data, sizes: util.NewSizeHistogram()}
}

// Factory returns a db.Factory producing independent MapleDB instances.
func Factory(opts *DBOptions) db.Factory {
	return func() db.KVDB {
		return NewMapleDB(opts)
	}
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Put stores a private copy of value under key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Put(key string, value []byte) error {
	if maple.closed.Load() {
		return db.ErrClosed
	}

	// Copy value to prevent memory corruption
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)

	maple.data.Compute(key, func(old []byte, loaded bool) ([]byte, bool) {
		maple.size.Add(int64(len(valueCopy) - len(old)))
		if loaded {
			maple.sizes.Remove(len(old))
		}
		maple.sizes.Add(len(valueCopy))
		return valueCopy, false
	})
	return nil
}

// Delete removes key. Missing keys are ignored.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Delete(key string) error {
	if maple.closed.Load() {
		return db.ErrClosed
	}
	if old, loaded := maple.data.LoadAndDelete(key); loaded {
		maple.size.Add(-int64(len(old)))
		maple.sizes.Remove(len(old))
	}
	return nil
}

// Clear removes every entry.
func (maple *mapleImpl) Clear() error {
	if maple.closed.Load() {
		return db.ErrClosed
	}
	maple.data.Clear()
	maple.size.Store(0)
	maple.sizes.Reset()
	return nil
}

// Destroy drops all entries and closes the handle. An in-memory namespace
// has nothing outside the handle, so this is Clear followed by Close.
func (maple *mapleImpl) Destroy() error {
	if err := maple.Clear(); err != nil {
		return err
	}
	return maple.Close()
}

// --------------------------------------------------------------------------
// Core KVDB Interface Methods - Query Operations
// --------------------------------------------------------------------------

// Get returns a copy of the value stored under key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (maple *mapleImpl) Get(key string) ([]byte, bool, error) {
	if maple.closed.Load() {
		return nil, false, db.ErrClosed
	}
	value, ok := maple.data.Load(key)
	if !ok {
		return nil, false, nil
	}
	valueCopy := make([]byte, len(value))
	copy(valueCopy, value)
	return valueCopy, true, nil
}

func (maple *mapleImpl) Count() (int, error) {
	if maple.closed.Load() {
		return 0, db.ErrClosed
	}
	return maple.data.Size(), nil
}

func (maple *mapleImpl) Keys() ([]string, error) {
	if maple.closed.Load() {
		return nil, db.ErrClosed
	}
	keys := make([]string, 0, maple.data.Size())
	maple.data.Range(func(key string, _ []byte) bool {
		keys = append(keys, key)
		return true
	})
	return keys, nil
}

func (maple *mapleImpl) GetAll() ([][]byte, error) {
	if maple.closed.Load() {
		return nil, db.ErrClosed
	}
	values := make([][]byte, 0, maple.data.Size())
	maple.data.Range(func(_ string, value []byte) bool {
		valueCopy := make([]byte, len(value))
		copy(valueCopy, value)
		values = append(values, valueCopy)
		return true
	})
	return values, nil
}

// --------------------------------------------------------------------------
// Feature Support and Metadata
// --------------------------------------------------------------------------

// SupportsFeature checks if the database implementation supports the specified feature.
// Maple supports every feature.
func (maple *mapleImpl) SupportsFeature(feature db.Feature) bool {
	const supported = db.FeatureGet | db.FeaturePut | db.FeatureDelete | db.FeatureClear |
		db.FeatureCount | db.FeatureKeys | db.FeatureGetAll | db.FeatureDestroy
	return feature&supported == feature
}

// GetInfo returns information about the database. SizeBytes counts value
// bytes only and ignores map overhead.
func (maple *mapleImpl) GetInfo() db.DatabaseInfo {
	info := db.DatabaseInfo{
		DbType:     db.ImplMaple,
		Persistent: false,
		SizeBytes:  int(maple.size.Load()),
		Keys:       maple.data.Size(),
		Metadata: map[string]interface{}{
			"closed":      maple.closed.Load(),
			"value_sizes": maple.sizes.Summary(),
		},
	}
	info.SupportedFeatures = db.FeaturesOf(maple)
	return info
}

// Close drops the data. A closed maple instance rejects every call with db.ErrClosed.
func (maple *mapleImpl) Close() error {
	if maple.closed.Swap(true) {
		return nil
	}
	maple.data.Clear()
	maple.size.Store(0)
	maple.sizes.Reset()
	return nil
}
