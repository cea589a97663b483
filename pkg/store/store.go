package store

import (
	"sync"

	"github.com/oullin/profilesync/handler/payload"
)

// Update is a typed partial change of the profile read model. Each update
// touches only the fields it names.
type Update interface {
	Apply(p *payload.ProfileData)
}

type Listener func(payload.ProfileData)

// Store owns the profile read model. Every completion goes through Dispatch
// so concurrent slice refreshes merge instead of replacing each other.
type Store struct {
	mu        sync.RWMutex
	state     payload.ProfileData
	version   uint64
	listeners map[int]Listener
	nextID    int
}

func New() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// Dispatch applies updates in order and notifies listeners with the result.
func (s *Store) Dispatch(updates ...Update) payload.ProfileData {
	s.mu.Lock()

	for _, u := range updates {
		if u != nil {
			u.Apply(&s.state)
		}
	}

	s.version++
	snapshot := s.state.Clone()

	listeners := make([]Listener, 0, len(s.listeners))
	for _, l := range s.listeners {
		listeners = append(listeners, l)
	}

	s.mu.Unlock()

	for _, l := range listeners {
		l(snapshot.Clone())
	}

	return snapshot
}

// Snapshot returns a copy that callers may modify freely.
func (s *Store) Snapshot() payload.ProfileData {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Clone()
}

func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.version
}

// Subscribe registers l for every dispatched change and returns a function
// removing it.
func (s *Store) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		delete(s.listeners, id)
	}
}
