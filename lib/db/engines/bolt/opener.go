package bolt

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MakeenTechnology/tiny-idb-helper/lib/db"
	"github.com/lni/dragonboat/v4/logger"
	"go.etcd.io/bbolt"
)

var log = logger.GetLogger("db")

const (
	// fileExt is appended to the escaped namespace name to form the file name.
	fileExt = ".db"
	// defaultTimeout bounds how long Open waits for the file lock.
	// bbolt itself waits forever on zero.
	defaultTimeout = time.Second
)

// Options configures the Opener.
type Options struct {
	// Dir is the directory holding one file per namespace.
	// An empty Dir makes the Opener unavailable.
	Dir string
	// Timeout is how long to wait for the file lock (0 = defaultTimeout).
	Timeout time.Duration
	// NoSync skips fsync after each commit. Faster, but a crash can lose writes.
	NoSync bool
}

// Opener hands out bolt backed db.KVDB handles, one file per namespace.
type Opener struct {
	opts Options
}

// NewOpener creates an Opener for the given options. Nothing is touched on disk
// until Open is called.
func NewOpener(opts Options) *Opener {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	opts.Dir = strings.TrimSpace(opts.Dir)
	return &Opener{opts: opts}
}

// Available reports whether Dir is set and is not occupied by a regular file.
// A missing Dir counts as available; Open creates it.
func (o *Opener) Available() bool {
	if o == nil || o.opts.Dir == "" {
		return false
	}
	stat, err := os.Stat(o.opts.Dir)
	if err != nil {
		return os.IsNotExist(err)
	}
	return stat.IsDir()
}

// Path returns the file backing the namespace name.
func (o *Opener) Path(name string) string {
	return filepath.Join(o.opts.Dir, url.PathEscape(name)+fileExt)
}

// Open opens (creating if needed) the namespace name.
func (o *Opener) Open(name string) (db.KVDB, error) {
	if !o.Available() {
		return nil, db.ErrUnavailable
	}
	if name == "" {
		return nil, fmt.Errorf("bolt: namespace name must not be empty")
	}

	if err := os.MkdirAll(o.opts.Dir, 0o700); err != nil {
		return nil, fmt.Errorf("bolt: create data directory %q: %w", o.opts.Dir, err)
	}

	path := o.Path(name)

	boltOpts := *bbolt.DefaultOptions
	boltOpts.Timeout = o.opts.Timeout
	boltOpts.NoSync = o.opts.NoSync

	// Open bbolt file with restrictive permissions (owner read/write only).
	handle, err := bbolt.Open(path, 0o600, &boltOpts)
	if err != nil {
		return nil, fmt.Errorf("bolt: open %q: %w", path, err)
	}

	// Ensure the application bucket exists.
	err = handle.Update(func(tx *bbolt.Tx) error {
		if _, bucketErr := tx.CreateBucketIfNotExists(bucketName); bucketErr != nil {
			return fmt.Errorf("failed to create internal bucket %q: %w", bucketName, bucketErr)
		}
		return nil
	})
	if err != nil {
		_ = handle.Close()
		return nil, fmt.Errorf("bolt: initialize %q: %w", path, err)
	}

	log.Debugf("opened namespace %q at %s", name, path)

	return &boltImpl{
		name:   name,
		path:   path,
		handle: handle,
	}, nil
}
