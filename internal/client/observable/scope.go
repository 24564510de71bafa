package observable

import "sync"

// Scope collects the subscriptions owned by one consumer (a view, a command
// handler) so its teardown path can release all of them at once.
//
//	scope := &observable.Scope{}
//	defer scope.Close()
//	scope.Add(cars.Stream().Subscribe(render))
type Scope struct {
	mu     sync.Mutex
	subs   []*Subscription
	closed bool
}

// Add takes ownership of sub. Adding to a closed scope unsubscribes at once.
func (sc *Scope) Add(sub *Subscription) {
	sc.mu.Lock()
	if sc.closed {
		sc.mu.Unlock()
		sub.Unsubscribe()
		return
	}
	sc.subs = append(sc.subs, sub)
	sc.mu.Unlock()
}

// Close unsubscribes everything the scope owns. Later calls are no-ops.
func (sc *Scope) Close() {
	sc.mu.Lock()
	subs := sc.subs
	sc.subs = nil
	sc.closed = true
	sc.mu.Unlock()

	for _, sub := range subs {
		sub.Unsubscribe()
	}
}

// Len reports how many subscriptions the scope currently owns.
func (sc *Scope) Len() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return len(sc.subs)
}
