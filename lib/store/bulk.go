package store

import (
	"sort"

	"github.com/MakeenTechnology/tiny-idb-helper/lib/db"
)

// Keys returns every stored key. The order depends on the backend and is not
// guaranteed to be stable.
func (s *Store) Keys() (keys []string, err error) {
	defer s.metrics.observe("keys", &err)

	b := s.ensureReady()
	if err = b.require(db.FeatureKeys); err != nil {
		return nil, err
	}
	if keys, err = b.db.Keys(); err != nil {
		return nil, wrapError(CodeTransactionFailure, err, "list keys")
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

// Values returns every stored value. A value that cannot be decoded is returned
// as its raw string instead of failing the whole call.
func (s *Store) Values() (values []any, err error) {
	defer s.metrics.observe("values", &err)

	b := s.ensureReady()
	if err = b.require(db.FeatureGetAll); err != nil {
		return nil, err
	}
	raws, err := b.db.GetAll()
	if err != nil {
		return nil, wrapError(CodeTransactionFailure, err, "list values")
	}

	values = make([]any, 0, len(raws))
	for _, raw := range raws {
		value, decodeErr := Decode(raw)
		if decodeErr != nil {
			log.Debugf("returning undecodable value as raw string: %v", decodeErr)
			value = string(raw)
		}
		values = append(values, value)
	}
	return values, nil
}

// Entries returns a map of every key to its value. It lists the keys and then
// reads them one by one, so it is not a snapshot: keys removed in between are
// skipped. Undecodable values fail the call.
func (s *Store) Entries() (entries map[string]any, err error) {
	defer s.metrics.observe("entries", &err)

	b := s.ensureReady()
	if err = b.require(db.FeatureKeys); err != nil {
		return nil, err
	}
	keys, err := b.db.Keys()
	if err != nil {
		return nil, wrapError(CodeTransactionFailure, err, "list keys")
	}

	entries = make(map[string]any, len(keys))
	for _, key := range keys {
		value, found, getErr := s.get(b, key)
		if getErr != nil {
			return nil, getErr
		}
		if found {
			entries[key] = value
		}
	}
	return entries, nil
}

// Length returns the number of stored keys.
func (s *Store) Length() (n int, err error) {
	defer s.metrics.observe("length", &err)

	b := s.ensureReady()
	if err = b.require(db.FeatureCount); err != nil {
		return 0, err
	}
	if n, err = b.db.Count(); err != nil {
		return 0, wrapError(CodeTransactionFailure, err, "count keys")
	}
	return n, nil
}

// ReplaceAll clears the store and then sets every entry of data in key order.
// It is not atomic: if a Set fails, the entries before it are stored and the old
// data is gone.
func (s *Store) ReplaceAll(data map[string]any) (err error) {
	defer s.metrics.observe("replace_all", &err)

	s.ensureReady()
	if data == nil {
		return NewError(CodeInvalidArgument, "data must be a non-nil map")
	}

	keys := make([]string, 0, len(data))
	for key := range data {
		if err = validateKey(key); err != nil {
			return err
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	if err = s.clear(); err != nil {
		return err
	}

	// a persistent clear starts a new epoch, so the backend is fetched afterwards
	b := s.ensureReady()
	for _, key := range keys {
		if err = s.set(b, key, data[key]); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every key. For the persistent backend the whole namespace is
// destroyed, including data written by other means, and the next operation opens
// a fresh one.
func (s *Store) Clear() (err error) {
	defer s.metrics.observe("clear", &err)
	return s.clear()
}

func (s *Store) clear() error {
	b := s.ensureReady()

	if b.fallback {
		if err := b.require(db.FeatureClear); err != nil {
			return err
		}
		if err := b.db.Clear(); err != nil {
			return wrapError(CodeTransactionFailure, err, "clear")
		}
		return nil
	}

	if err := b.require(db.FeatureDestroy); err != nil {
		return err
	}
	destroyErr := b.db.Destroy()

	s.lock.Lock()
	if s.active == b {
		s.active = nil
		s.reason = nil
		s.epoch++
	}
	s.lock.Unlock()

	if destroyErr != nil {
		return wrapError(CodeTransactionFailure, destroyErr, "destroy namespace")
	}
	log.Debugf("destroyed %s namespace", BackendPersistent)
	return nil
}
