package favorites

import (
	"context"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Cache persists the favorite set under one key.
//
// Read never fails: absent, corrupted, or unreachable storage reads as an empty set.
// Write replaces the whole set; callers read, mutate, and write back.
type Cache interface {
	Read(ctx context.Context) Set
	Write(ctx context.Context, s Set) error
}

// Signal reports that the persisted set may have been changed by someone else.
//
// Watch calls fn for every change until ctx is done, then returns ctx.Err() or the first watch error.
type Signal interface {
	Watch(ctx context.Context, fn func()) error
}

// MemoryCache is an in-process [Cache].
type MemoryCache struct {
	mu  sync.Mutex
	set Set
}

// NewMemoryCache creates a [MemoryCache] holding ids.
func NewMemoryCache(ids ...string) *MemoryCache {
	return &MemoryCache{set: NewSet(ids...)}
}

func (m *MemoryCache) Read(ctx context.Context) Set {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.set.Clone()
}

func (m *MemoryCache) Write(ctx context.Context, s Set) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set = s.Clone()
	return nil
}

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

// decodeOrEmpty decodes stored data, logging and discarding anything malformed.
func decodeOrEmpty(logger *log.Logger, source string, data []byte) Set {
	s, err := Decode(data)
	if err != nil {
		logger.Debug("discarding malformed favorite set", "source", source, "err", err)
		return NewSet()
	}
	return s
}
