// Package store is the action dispatcher shared by the global state and
// every view state machine: one immutable snapshot, replaced only by running
// a pure reducer over a dispatched action.
package store

import "sync"

// Reducer produces the next snapshot. It must not mutate prev.
type Reducer[S, A any] func(prev S, action A) S

// Listener observes every transition after it has been applied.
type Listener[S any] func(prev, next S)

// Store holds one snapshot of S and replaces it only through Dispatch.
type Store[S, A any] struct {
	mu        sync.RWMutex
	state     S
	reduce    Reducer[S, A]
	listeners map[int]Listener[S]
	order     []int
	nextId    int

	pending  []A
	draining bool
}

// New returns a store starting at initial.
func New[S, A any](initial S, reduce Reducer[S, A]) *Store[S, A] {
	return &Store[S, A]{
		state:     initial,
		reduce:    reduce,
		listeners: make(map[int]Listener[S]),
	}
}

// GetState returns the current snapshot.
func (s *Store[S, A]) GetState() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies action and notifies listeners in registration order.
// Listeners run outside the lock and may dispatch: such an action is queued
// and applied once every listener has seen the current transition, so the
// last next a listener receives is always the current state. Dispatch
// returns after the queue is drained.
func (s *Store[S, A]) Dispatch(action A) {
	s.mu.Lock()
	s.pending = append(s.pending, action)
	if s.draining {
		s.mu.Unlock()
		return
	}
	s.draining = true

	locked := true
	defer func() {
		if locked {
			s.mu.Unlock()
		}
		if r := recover(); r != nil {
			s.mu.Lock()
			s.draining = false
			s.pending = nil
			s.mu.Unlock()
			panic(r)
		}
	}()

	for len(s.pending) > 0 {
		a := s.pending[0]
		s.pending = s.pending[1:]
		prev := s.state
		next := s.reduce(prev, a)
		s.state = next
		listeners := make([]Listener[S], 0, len(s.order))
		for _, id := range s.order {
			listeners = append(listeners, s.listeners[id])
		}

		s.mu.Unlock()
		locked = false
		for _, l := range listeners {
			l(prev, next)
		}
		s.mu.Lock()
		locked = true
	}
	s.pending = nil
	s.draining = false
}

// Subscribe registers l and returns a func that removes it.
func (s *Store[S, A]) Subscribe(l Listener[S]) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextId
	s.nextId++
	s.listeners[id] = l
	s.order = append(s.order, id)
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}
