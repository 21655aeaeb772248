package store

import (
	"fmt"

	"github.com/MakeenTechnology/tiny-idb-helper/lib/db"
)

// MaxKeySize is the longest accepted key in bytes.
const MaxKeySize = 32768

// validateKey rejects keys that one of the engines cannot store, so both engines
// reject the same keys.
func validateKey(key string) error {
	if key == "" {
		return NewError(CodeInvalidArgument, "key must be a non-empty string")
	}
	if len(key) > MaxKeySize {
		return NewError(CodeInvalidArgument, fmt.Sprintf("key must not be longer than %d bytes, got %d", MaxKeySize, len(key)))
	}
	return nil
}

// --------------------------------------------------------------------------
// Backend level helpers (no metrics, no gate)
// --------------------------------------------------------------------------

func (s *Store) get(b *backend, key string) (any, bool, error) {
	if err := b.require(db.FeatureGet); err != nil {
		return nil, false, err
	}
	raw, ok, err := b.db.Get(key)
	if err != nil {
		return nil, false, wrapError(CodeTransactionFailure, err, "get %q", key)
	}
	if !ok {
		return nil, false, nil
	}
	value, err := Decode(raw)
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// set encodes before touching the engine, so an unencodable value leaves the
// stored state unchanged on every backend.
func (s *Store) set(b *backend, key string, value any) error {
	raw, err := Encode(value)
	if err != nil {
		return err
	}
	if err := b.require(db.FeaturePut); err != nil {
		return err
	}
	if err := b.db.Put(key, raw); err != nil {
		return wrapError(CodeTransactionFailure, err, "set %q", key)
	}
	return nil
}

// --------------------------------------------------------------------------
// CRUD operations
// --------------------------------------------------------------------------

// Get returns the value stored under key. found is false when the key is absent;
// a key holding nil or Undefined is found.
func (s *Store) Get(key string) (value any, found bool, err error) {
	defer s.metrics.observe("get", &err)

	b := s.ensureReady()
	if err = validateKey(key); err != nil {
		return nil, false, err
	}
	return s.get(b, key)
}

// Set stores value under key. value may be anything encoding/json accepts, nil,
// or Undefined.
func (s *Store) Set(key string, value any) (err error) {
	defer s.metrics.observe("set", &err)

	b := s.ensureReady()
	if err = validateKey(key); err != nil {
		return err
	}
	return s.set(b, key, value)
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(key string) (err error) {
	defer s.metrics.observe("remove", &err)

	b := s.ensureReady()
	if err = validateKey(key); err != nil {
		return err
	}
	if err = b.require(db.FeatureDelete); err != nil {
		return err
	}
	if err = b.db.Delete(key); err != nil {
		return wrapError(CodeTransactionFailure, err, "remove %q", key)
	}
	return nil
}

// Nullify stores nil under key.
func (s *Store) Nullify(key string) (err error) {
	defer s.metrics.observe("nullify", &err)

	b := s.ensureReady()
	if err = validateKey(key); err != nil {
		return err
	}
	return s.set(b, key, nil)
}

// Has reports whether Get would find key. A key holding nil counts as present.
func (s *Store) Has(key string) (found bool, err error) {
	defer s.metrics.observe("has", &err)

	b := s.ensureReady()
	if err = validateKey(key); err != nil {
		return false, err
	}
	_, found, err = s.get(b, key)
	return found, err
}
