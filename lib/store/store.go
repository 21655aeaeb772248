package store

import (
	"fmt"
	"strconv"
	"sync"

	"github.com/MakeenTechnology/tiny-idb-helper/lib/db"
	"github.com/MakeenTechnology/tiny-idb-helper/lib/db/engines/maple"
	"github.com/lni/dragonboat/v4/logger"
	"golang.org/x/sync/singleflight"
)

var log = logger.GetLogger("store")

// BackendKind names the engine a Store dispatches to.
type BackendKind string

const (
	BackendUninitialized BackendKind = "uninitialized"
	BackendPersistent    BackendKind = "persistent"
	BackendVolatile      BackendKind = "volatile"
)

// backend is the engine selected for one configuration epoch.
type backend struct {
	db       db.KVDB
	fallback bool
	epoch    uint64
}

func (b *backend) kind() BackendKind {
	if b.fallback {
		return BackendVolatile
	}
	return BackendPersistent
}

// require fails with NOT_SUPPORTED when the engine lacks feature.
func (b *backend) require(feature db.Feature) error {
	if !b.db.SupportsFeature(feature) {
		return NewError(CodeNotSupported, fmt.Sprintf("%s operation is not supported by the %s backend", feature, b.kind()))
	}
	return nil
}

// Store is a key-value store over a persistent engine with an in-memory fallback.
//
// The engine is chosen lazily by the first operation of each configuration epoch
// and stays fixed until Configure, a persistent Clear, or Close starts a new epoch.
// A Store is safe for concurrent use, but derived operations (Increment, Toggle,
// Append, ...) and bulk operations are read-modify-write compositions and are not
// atomic with respect to each other.
type Store struct {
	persistent db.Opener
	volatile   db.Factory

	lock   sync.Mutex
	config Config
	epoch  uint64
	active *backend
	reason error

	// init collapses concurrent initializations of the same epoch into one
	init singleflight.Group

	metrics *storeMetrics
}

// NewStore creates a store using persistent as storage facility and volatile as
// the fallback engine factory. A nil persistent opener means persistent storage is
// not supported; a nil volatile factory selects the maple engine.
// Nothing is opened until the first operation.
func NewStore(persistent db.Opener, volatile db.Factory) *Store {
	if volatile == nil {
		volatile = maple.Factory(nil)
	}
	s := &Store{
		persistent: persistent,
		volatile:   volatile,
		config:     DefaultConfig(),
	}
	s.metrics = newStoreMetrics(s)
	return s
}

// --------------------------------------------------------------------------
// Configuration & lifecycle
// --------------------------------------------------------------------------

// Configure replaces the configuration and starts a new epoch: the open handle is
// closed, the in-memory data is dropped and the next operation initializes again.
// Keys written before are not visible under a different store name.
func (s *Store) Configure(config Config) error {
	if err := config.validate(); err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.resetLocked(); err != nil {
		log.Warningf("closing %s backend of %q failed: %v", BackendPersistent, s.config.StoreName, err)
	}
	s.config = config
	log.Debugf("configured %s", config)
	return nil
}

// Config returns the current configuration.
func (s *Store) Config() Config {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.config
}

// Close releases the active handle. The Store stays usable: the next operation
// initializes a new epoch.
func (s *Store) Close() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.resetLocked(); err != nil {
		return wrapError(CodeTransactionFailure, err, "close %q", s.config.StoreName)
	}
	return nil
}

// resetLocked closes the active handle and bumps the epoch.
// The caller must hold s.lock.
func (s *Store) resetLocked() error {
	var err error
	if s.active != nil {
		err = s.active.db.Close()
	}
	s.active = nil
	s.reason = nil
	s.epoch++
	return err
}

// --------------------------------------------------------------------------
// Initialization gate
// --------------------------------------------------------------------------

// ensureReady returns the backend of the current epoch, initializing it on first use.
// Concurrent callers of the same epoch share one initialization.
func (s *Store) ensureReady() *backend {
	for {
		s.lock.Lock()
		if s.active != nil {
			b := s.active
			s.lock.Unlock()
			return b
		}
		epoch, config := s.epoch, s.config
		s.lock.Unlock()

		v, _, _ := s.init.Do(strconv.FormatUint(epoch, 10), func() (any, error) {
			return s.initialize(epoch, config), nil
		})
		if b, _ := v.(*backend); b != nil {
			return b
		}
		// the epoch changed while initializing, try again with the new one
	}
}

// initialize opens the backend for epoch unless another call already did so.
// It returns nil when the epoch is no longer current.
func (s *Store) initialize(epoch uint64, config Config) *backend {
	s.lock.Lock()
	if s.epoch != epoch {
		s.lock.Unlock()
		return nil
	}
	if s.active != nil {
		b := s.active
		s.lock.Unlock()
		return b
	}
	s.lock.Unlock()

	s.metrics.initializations.Inc()
	b, reason := s.open(config)
	b.epoch = epoch

	s.lock.Lock()
	defer s.lock.Unlock()

	if s.epoch != epoch {
		_ = b.db.Close()
		return nil
	}
	s.active = b
	s.reason = reason
	return b
}

// open selects the engine. Open failures never propagate: they become the
// fallback reason.
func (s *Store) open(config Config) (*backend, error) {
	var reason error
	if s.persistent == nil || !s.persistent.Available() {
		reason = NewError(CodeNotSupported, "persistent storage is not available")
	} else {
		handle, err := s.persistent.Open(config.StoreName)
		if err == nil {
			log.Infof("opened %s backend for %q", BackendPersistent, config.StoreName)
			return &backend{db: handle}, nil
		}
		reason = wrapError(CodeOpenFailure, err, "cannot open %q", config.StoreName)
	}

	log.Warningf("falling back to %s backend for %q: %v", BackendVolatile, config.StoreName, reason)
	s.metrics.fallbacks.Inc()
	return &backend{db: s.volatile(), fallback: true}, reason
}

// --------------------------------------------------------------------------
// Introspection
// --------------------------------------------------------------------------

// IsUsingFallback reports whether the in-memory engine is active.
// It is false before the first operation.
func (s *Store) IsUsingFallback() bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.active != nil && s.active.fallback
}

// FallbackReason returns why the in-memory engine was chosen (an *Error with code
// NOT_SUPPORTED or OPEN_FAILURE), or nil.
func (s *Store) FallbackReason() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	return s.reason
}

// Backend returns the kind of the active engine.
func (s *Store) Backend() BackendKind {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.active == nil {
		return BackendUninitialized
	}
	return s.active.kind()
}

// Info initializes the store if needed and returns metadata of the active engine.
func (s *Store) Info() (info db.DatabaseInfo, err error) {
	defer s.metrics.observe("info", &err)

	b := s.ensureReady()
	return b.db.GetInfo(), nil
}
