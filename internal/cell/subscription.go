package cell

import "sync"

// Subscription delivers cell values on a channel, in order and without drops.
type Subscription[T any] struct {
	out  chan T
	wake chan struct{}
	done chan struct{}

	mu       sync.Mutex
	queue    []T
	finished bool

	cancel func()
	once   sync.Once
}

func newSubscription[T any]() *Subscription[T] {
	return &Subscription[T]{
		out:    make(chan T),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		cancel: func() {},
	}
}

// C returns the delivery channel. It is closed once the subscription or its
// cell is closed and every queued value has been received.
func (s *Subscription[T]) C() <-chan T {
	return s.out
}

// Close releases the subscription. Queued values are discarded.
func (s *Subscription[T]) Close() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
	})
}

func (s *Subscription[T]) push(v T) {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return
	}
	s.queue = append(s.queue, v)
	s.mu.Unlock()
	s.signal()
}

func (s *Subscription[T]) finish() {
	s.mu.Lock()
	s.finished = true
	s.mu.Unlock()
	s.signal()
}

func (s *Subscription[T]) signal() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription[T]) run() {
	defer close(s.out)
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			finished := s.finished
			s.mu.Unlock()
			if finished {
				return
			}
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		v := s.queue[0]
		var zero T
		s.queue[0] = zero
		s.queue = s.queue[1:]
		s.mu.Unlock()

		select {
		case s.out <- v:
		case <-s.done:
			return
		}
	}
}
