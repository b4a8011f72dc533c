package app

import (
	"context"
	"sync"
	"sync/atomic"

	"prizma/internal/domain/content"
	domainerr "prizma/internal/domain/errors"
)

// Loader produces a complete collection or fails without side effects.
type Loader func(ctx context.Context) (*content.Collection, error)

// State owns the current collection. Readers never lock; a load swaps the
// whole collection at once and only one load runs at a time.
type State struct {
	coll    atomic.Pointer[content.Collection]
	loading sync.Mutex
}

// Collection returns the current collection, nil before the first load.
func (s *State) Collection() *content.Collection {
	return s.coll.Load()
}

func (s *State) Set(c *content.Collection) {
	s.coll.Store(c)
}

// Reload runs load and installs its result. While another load is running
// it returns ErrLoadInProgress. On failure the current collection is kept.
func (s *State) Reload(ctx context.Context, load Loader) (*content.Collection, error) {
	if !s.loading.TryLock() {
		return nil, domainerr.ErrLoadInProgress
	}
	defer s.loading.Unlock()

	c, err := load(ctx)
	if err != nil {
		return nil, err
	}
	s.coll.Store(c)
	return c, nil
}
