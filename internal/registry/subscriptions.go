package registry

import (
	"context"
	"sync"
)

// StartFunc starts the shared resource for key and returns its stop function.
type StartFunc[K comparable, V any] func(ctx context.Context, key K) (V, func(), error)

// Subscriptions shares one resource per key between many consumers.
// The resource starts when the first consumer subscribes and stops when the
// last one unsubscribes.
type Subscriptions[K comparable, V any] struct {
	start StartFunc[K, V]

	mu      sync.Mutex
	entries map[K]*subscription[V]
}

type subscription[V any] struct {
	value V
	stop  func()
	refs  int
}

// NewSubscriptions creates a registry that uses start to create resources.
func NewSubscriptions[K comparable, V any](start StartFunc[K, V]) *Subscriptions[K, V] {
	return &Subscriptions[K, V]{
		start:   start,
		entries: make(map[K]*subscription[V]),
	}
}

// Subscribe returns the resource for key, starting it if needed, and a release
// function. Calling release more than once has no further effect.
func (s *Subscriptions[K, V]) Subscribe(ctx context.Context, key K) (V, func(), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		value, stop, err := s.start(ctx, key)
		if err != nil {
			var zero V
			return zero, func() {}, err
		}
		entry = &subscription[V]{value: value, stop: stop}
		s.entries[key] = entry
	}
	entry.refs++

	var once sync.Once
	release := func() {
		once.Do(func() { s.unsubscribe(key, entry) })
	}
	return entry.value, release, nil
}

func (s *Subscriptions[K, V]) unsubscribe(key K, entry *subscription[V]) {
	s.mu.Lock()
	entry.refs--
	last := entry.refs == 0
	if last && s.entries[key] == entry {
		delete(s.entries, key)
	}
	s.mu.Unlock()

	if last && entry.stop != nil {
		entry.stop()
	}
}

// Refs returns the number of live subscriptions for key.
func (s *Subscriptions[K, V]) Refs(key K) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[key]; ok {
		return entry.refs
	}
	return 0
}

// Len returns the number of running resources.
func (s *Subscriptions[K, V]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
