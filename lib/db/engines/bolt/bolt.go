package bolt

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/MakeenTechnology/tiny-idb-helper/lib/db"
	"go.etcd.io/bbolt"
)

// bucketName is the single bucket every namespace file holds.
var bucketName = []byte("kv")

// boltImpl is one open namespace file.
type boltImpl struct {
	name string
	path string

	// lock guards handle against Close/Destroy running concurrently with a transaction.
	lock   sync.RWMutex
	handle *bbolt.DB
}

// --------------------------------------------------------------------------
// Transaction helpers
// --------------------------------------------------------------------------

// view runs fn in a read transaction on the bucket.
func (b *boltImpl) view(fn func(bucket *bbolt.Bucket) error) error {
	b.lock.RLock()
	defer b.lock.RUnlock()
	if b.handle == nil {
		return db.ErrClosed
	}
	return b.handle.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}
		return fn(bucket)
	})
}

// update runs fn in a write transaction; tx is exposed for bucket level changes.
func (b *boltImpl) update(fn func(tx *bbolt.Tx) error) error {
	b.lock.RLock()
	defer b.lock.RUnlock()
	if b.handle == nil {
		return db.ErrClosed
	}
	return b.handle.Update(fn)
}

// --------------------------------------------------------------------------
// Interface Methods (docu see db.KVDB)
// --------------------------------------------------------------------------

func (b *boltImpl) Put(key string, value []byte) error {
	err := b.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}
		return bucket.Put([]byte(key), value)
	})
	if err != nil {
		return fmt.Errorf("put %q: %w", key, err)
	}
	return nil
}

func (b *boltImpl) Delete(key string) error {
	err := b.update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}
		return bucket.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Clear drops and recreates the bucket in one transaction.
func (b *boltImpl) Clear() error {
	err := b.update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketName); err != nil {
			return fmt.Errorf("failed to delete bucket %s: %w", bucketName, err)
		}
		if _, err := tx.CreateBucket(bucketName); err != nil {
			return fmt.Errorf("failed to create bucket %s: %w", bucketName, err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("unable to clear %q: %w", b.name, err)
	}
	return nil
}

// Destroy closes the handle and removes the namespace file.
func (b *boltImpl) Destroy() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.handle == nil {
		return db.ErrClosed
	}

	closeErr := b.handle.Close()
	b.handle = nil

	if err := os.Remove(b.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("unable to remove %q: %w", b.path, err)
	}
	log.Infof("destroyed namespace %q (%s)", b.name, b.path)
	return closeErr
}

func (b *boltImpl) Get(key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := b.view(func(bucket *bbolt.Bucket) error {
		raw := bucket.Get([]byte(key))
		if raw == nil {
			return nil
		}
		// Clone value bytes to avoid aliasing bbolt's internal memory.
		value = make([]byte, len(raw))
		copy(value, raw)
		found = true
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, found, nil
}

// Count uses bbolt's Stats().KeyN instead of iterating entries.
func (b *boltImpl) Count() (int, error) {
	var n int
	err := b.view(func(bucket *bbolt.Bucket) error {
		n = bucket.Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Keys returns keys in lexicographic order (bbolt cursor order).
func (b *boltImpl) Keys() ([]string, error) {
	var keys []string
	err := b.view(func(bucket *bbolt.Bucket) error {
		return bucket.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("keys: %w", err)
	}
	return keys, nil
}

func (b *boltImpl) GetAll() ([][]byte, error) {
	var values [][]byte
	err := b.view(func(bucket *bbolt.Bucket) error {
		return bucket.ForEach(func(_, v []byte) error {
			valueCopy := make([]byte, len(v))
			copy(valueCopy, v)
			values = append(values, valueCopy)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("get all: %w", err)
	}
	return values, nil
}

func (b *boltImpl) SupportsFeature(feature db.Feature) bool {
	const supported = db.FeatureGet | db.FeaturePut | db.FeatureDelete | db.FeatureClear |
		db.FeatureCount | db.FeatureKeys | db.FeatureGetAll | db.FeatureDestroy
	return feature&supported == feature
}

// GetInfo reports the file size as seen by the last read transaction.
func (b *boltImpl) GetInfo() db.DatabaseInfo {
	info := db.DatabaseInfo{
		DbType:     db.ImplBolt,
		Persistent: true,
		Metadata: map[string]interface{}{
			"path":      b.path,
			"namespace": b.name,
		},
	}
	_ = b.view(func(bucket *bbolt.Bucket) error {
		info.SizeBytes = int(bucket.Tx().Size())
		info.Keys = bucket.Stats().KeyN
		return nil
	})
	info.SupportedFeatures = db.FeaturesOf(b)
	return info
}

// Close releases the file lock. Closing twice is a no-op.
func (b *boltImpl) Close() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.handle == nil {
		return nil
	}
	err := b.handle.Close()
	b.handle = nil
	return err
}
