package favorites

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
)

// Store is the process-wide favorites state handed to every view.
type Store interface {
	Read(ctx context.Context) Set
	Write(ctx context.Context, s Set) error
	Publish(e Event)
	Subscribe(h Handler) (unsubscribe func())
}

// LocalStore combines a [Cache] with a [Notifier].
//
// It remembers the last set it read or wrote so that [LocalStore.Follow] can turn external
// writes into per-id events without echoing its own.
type LocalStore struct {
	cache    Cache
	notifier *Notifier
	logger   *log.Logger

	mu   sync.Mutex
	last Set
}

// NewLocalStore creates a [LocalStore] over cache.
func NewLocalStore(cache Cache, logger *log.Logger) *LocalStore {
	if logger == nil {
		logger = discardLogger()
	}
	return &LocalStore{cache: cache, notifier: NewNotifier(), logger: logger}
}

// Cache returns the underlying cache.
func (s *LocalStore) Cache() Cache { return s.cache }

func (s *LocalStore) Read(ctx context.Context) Set {
	set := s.cache.Read(ctx)
	s.mu.Lock()
	if s.last == nil {
		s.last = set.Clone()
	}
	s.mu.Unlock()
	return set
}

// Write replaces the persisted set. Only the ids this write changes are folded into the last
// known set, so external changes it absorbed are still reported by the next [LocalStore.Refresh].
func (s *LocalStore) Write(ctx context.Context, set Set) error {
	before := s.cache.Read(ctx)
	if err := s.cache.Write(ctx, set); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		s.last = before
	}
	for _, e := range Diff(before, set) {
		s.last.Apply(e.ChaletID, e.IsLiked)
	}
	return nil
}

func (s *LocalStore) Publish(e Event) {
	s.logger.Debug("favorite event", "chalet", e.ChaletID, "liked", e.IsLiked)
	s.notifier.Publish(e)
}

func (s *LocalStore) Subscribe(h Handler) func() {
	return s.notifier.Subscribe(h)
}

// Refresh re-reads the cache and publishes one event per id that differs from the last known set.
// It returns the published events.
func (s *LocalStore) Refresh(ctx context.Context) []Event {
	next := s.cache.Read(ctx)

	s.mu.Lock()
	prev := s.last
	if prev == nil {
		prev = NewSet()
	}
	s.last = next.Clone()
	s.mu.Unlock()

	events := Diff(prev, next)
	for _, e := range events {
		s.Publish(e)
	}
	return events
}

// Follow blocks, refreshing on every signal until ctx is done.
//
// The baseline is the first set read through the store. When Follow runs in its own goroutine,
// call [LocalStore.Read] first so that writes made before the watch starts are still reported.
func (s *LocalStore) Follow(ctx context.Context, signal Signal) error {
	s.Read(ctx)
	return signal.Watch(ctx, func() {
		if events := s.Refresh(ctx); len(events) > 0 {
			s.logger.Debug("applied external favorite changes", "count", len(events))
		}
	})
}
