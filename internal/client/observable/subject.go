// Package observable provides replay-latest multicast streams.
//
// A Subject holds a current value and a set of subscribers. Subscribing
// delivers the current value immediately, then every later publish. Delivery
// is synchronous on the publishing goroutine, and each subscriber sees values
// in publish order: if two publishes race, a subscriber never receives the
// older value after the newer one.
//
// Subscriptions are explicit resources. Every Subscribe must be paired with
// Unsubscribe (directly or through a Scope); nothing is released by the
// garbage collector.
package observable

import (
	"sync"
	"sync/atomic"
)

// Stream is the read side of a Subject.
type Stream[T any] interface {
	// Subscribe registers fn and immediately calls it with the current value.
	Subscribe(fn func(T)) *Subscription
	// Value returns a snapshot of the current value without subscribing.
	Value() T
}

// Subject is a replay-latest multicast value. The zero value is not usable;
// construct with NewSubject.
//
// Callbacks must not publish to the subject they are subscribed to.
type Subject[T any] struct {
	mu     sync.Mutex
	value  T
	seq    uint64
	nextID uint64
	subs   map[uint64]*subscriber[T]
}

func NewSubject[T any](initial T) *Subject[T] {
	return &Subject[T]{
		value: initial,
		seq:   1,
		subs:  make(map[uint64]*subscriber[T]),
	}
}

func (s *Subject[T]) Value() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// Publish replaces the current value and notifies all subscribers.
func (s *Subject[T]) Publish(v T) {
	s.Update(func(T) T { return v })
}

// Update atomically derives the next value from the current one, stores it
// and notifies subscribers. fn runs under the subject lock and must not call
// back into the subject. Concurrent updates are applied in the order they
// acquire the lock, each seeing the previous result.
func (s *Subject[T]) Update(fn func(current T) T) T {
	s.mu.Lock()
	next := fn(s.value)
	s.value = next
	s.seq++
	seq := s.seq
	targets := s.snapshot()
	s.mu.Unlock()

	for _, sub := range targets {
		sub.deliver(seq, next)
	}
	return next
}

func (s *Subject[T]) Subscribe(fn func(T)) *Subscription {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	sub := &subscriber[T]{fn: fn}
	s.subs[id] = sub
	seq, v := s.seq, s.value
	s.mu.Unlock()

	sub.deliver(seq, v)

	return &Subscription{cancel: func() {
		sub.closed.Store(true)
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}}
}

// Subscribers reports how many subscriptions are still active.
func (s *Subject[T]) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Subject[T]) snapshot() []*subscriber[T] {
	out := make([]*subscriber[T], 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	return out
}

type subscriber[T any] struct {
	mu     sync.Mutex
	last   uint64
	closed atomic.Bool
	fn     func(T)
}

// deliver drops values older than the last one delivered.
func (sub *subscriber[T]) deliver(seq uint64, v T) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed.Load() || seq <= sub.last {
		return
	}
	sub.last = seq
	sub.fn(v)
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// Unsubscribe stops delivery. It is safe to call more than once and from
// inside the subscription's own callback.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(s.cancel)
}
