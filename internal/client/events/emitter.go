// Package events provides a small in-process observer used to tell dependent
// surfaces about auth and payment transitions.
package events

import "sync"

// Emitter delivers values synchronously to every current subscriber, in
// subscription order. Subscribers that attach after a Fire do not see it.
type Emitter[T any] struct {
	mu     sync.Mutex
	nextID uint64
	subs   []subscription[T]
}

type subscription[T any] struct {
	id uint64
	fn func(T)
}

// Subscribe registers fn and returns a function that detaches it. Calling
// the returned function more than once is harmless.
func (e *Emitter[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	e.mu.Lock()
	e.nextID++
	id := e.nextID
	e.subs = append(e.subs, subscription[T]{id: id, fn: fn})
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { e.remove(id) })
	}
}

func (e *Emitter[T]) remove(id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for i, s := range e.subs {
		if s.id == id {
			next := make([]subscription[T], 0, len(e.subs)-1)
			next = append(next, e.subs[:i]...)
			e.subs = append(next, e.subs[i+1:]...)
			return
		}
	}
}

// Fire calls every subscriber with v. The subscriber list is snapshotted
// first, so a listener may unsubscribe itself (or others) while running.
func (e *Emitter[T]) Fire(v T) {
	e.mu.Lock()
	subs := e.subs
	e.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}

// Len returns the number of attached subscribers.
func (e *Emitter[T]) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.subs)
}
