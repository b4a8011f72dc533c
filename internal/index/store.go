// Package index persists the last good collection in a bbolt file so the
// site can still serve content when the feed is down.
package index

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

var ErrNotFound = errors.New("snapshot not found")

// Store holds one snapshot. bbolt locks the file, so a second process
// opening the same path waits up to OpenOptions.Timeout and then fails.
type Store struct {
	db   *bolt.DB
	path string
}

type OpenOptions struct {
	Path    string // e.g. "./.prizma/snapshot.db"
	Timeout time.Duration
}

func Open(opt OpenOptions) (*Store, error) {
	if opt.Path == "" {
		return nil, errors.New("index: missing path")
	}
	if opt.Timeout <= 0 {
		opt.Timeout = time.Second
	}
	if err := os.MkdirAll(filepath.Dir(opt.Path), 0o755); err != nil {
		return nil, fmt.Errorf("index: %w", err)
	}
	db, err := bolt.Open(opt.Path, 0o600, &bolt.Options{Timeout: opt.Timeout})
	if err != nil {
		return nil, fmt.Errorf("index: open %s: %w", opt.Path, err)
	}
	return &Store{db: db, path: opt.Path}, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
