// Package cell provides Cell, a concurrency-safe holder of a current value that
// pushes every update to its observers and subscribers.
package cell

import (
	"context"
	"iter"
	"sync"
)

// Cell holds the latest value of a signal.
//
// Set calls are serialised: observers registered with Observe run
// synchronously inside Set, one update at a time, and see updates in the order
// they were set. Observers must not call Set on the same cell.
type Cell[T any] struct {
	// notifyMu serialises Set and observer registration against each other.
	notifyMu sync.Mutex

	mu        sync.RWMutex
	value     T
	version   uint64
	nextID    uint64
	observers map[uint64]func(T)
	subs      map[*Subscription[T]]struct{}
	onClose   []func()
	closed    bool
}

// New returns a cell holding initial. Version reports 0 until the first Set.
func New[T any](initial T) *Cell[T] {
	return &Cell[T]{
		value:     initial,
		observers: make(map[uint64]func(T)),
		subs:      make(map[*Subscription[T]]struct{}),
	}
}

// Get returns the current value. It never blocks on observers.
func (c *Cell[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

// Version returns the number of Set calls the cell has seen.
func (c *Cell[T]) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Set stores v and notifies every observer and subscriber with it. After
// Close the value is still stored but nobody is notified.
func (c *Cell[T]) Set(v T) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	c.value = v
	c.version++
	if c.closed {
		c.mu.Unlock()
		return
	}
	observers := make([]func(T), 0, len(c.observers))
	for _, fn := range c.observers {
		observers = append(observers, fn)
	}
	c.mu.Unlock()

	for _, fn := range observers {
		fn(v)
	}
}

// Observe registers fn for every subsequent update and returns a function
// that unregisters it.
func (c *Cell[T]) Observe(fn func(T)) (cancel func()) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	return c.addObserverLocked(fn)
}

// ObserveCurrent calls fn with the current value and then with every
// subsequent update, with no update lost or repeated in between.
func (c *Cell[T]) ObserveCurrent(fn func(T)) (cancel func()) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	fn(c.Get())
	return c.addObserverLocked(fn)
}

func (c *Cell[T]) addObserverLocked(fn func(T)) func() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || fn == nil {
		return func() {}
	}
	id := c.nextID
	c.nextID++
	c.observers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.observers, id)
			c.mu.Unlock()
		})
	}
}

// Subscribe returns a Subscription whose channel yields the current value
// followed by every later update. Delivery is buffered without bound so a slow
// reader never blocks Set and never loses a value.
func (c *Cell[T]) Subscribe() *Subscription[T] {
	s := newSubscription[T]()

	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	s.push(c.Get())
	go s.run()

	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		s.finish()
		return s
	}

	cancel := c.addObserverLocked(s.push)
	c.mu.Lock()
	c.subs[s] = struct{}{}
	c.mu.Unlock()

	s.cancel = func() {
		cancel()
		c.mu.Lock()
		delete(c.subs, s)
		c.mu.Unlock()
	}
	return s
}

// All returns a sequence of the current value followed by every later update.
// Each range over the sequence opens its own subscription, so the sequence can
// be iterated more than once. Iteration ends when ctx is done, the loop breaks,
// or the cell is closed.
func (c *Cell[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		sub := c.Subscribe()
		defer sub.Close()
		for {
			select {
			case v, ok := <-sub.C():
				if !ok {
					return
				}
				if !yield(v) {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}
}

// Close stops all notification. Pending subscription values are still
// delivered before their channels close.
func (c *Cell[T]) Close() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	subs := make([]*Subscription[T], 0, len(c.subs))
	for s := range c.subs {
		subs = append(subs, s)
	}
	c.observers = make(map[uint64]func(T))
	c.subs = make(map[*Subscription[T]]struct{})
	onClose := c.onClose
	c.onClose = nil
	c.mu.Unlock()

	for _, s := range subs {
		s.finish()
	}
	for _, fn := range onClose {
		fn()
	}
}

// Map returns a cell that holds fn applied to src's value and follows every
// update of src until the returned cell is closed.
func Map[S, T any](src *Cell[S], fn func(S) T) *Cell[T] {
	var zero T
	dst := New(zero)
	first := true
	cancel := src.ObserveCurrent(func(v S) {
		if first {
			first = false
			dst.mu.Lock()
			dst.value = fn(v)
			dst.mu.Unlock()
			return
		}
		dst.Set(fn(v))
	})
	dst.mu.Lock()
	dst.onClose = append(dst.onClose, cancel)
	dst.mu.Unlock()
	return dst
}
