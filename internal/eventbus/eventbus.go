// Package eventbus is a small in-process fan-out bus. Publishers never block:
// an event is dropped for a subscriber whose buffer is full, and the drop is
// counted.
package eventbus

import (
	"sync"
	"sync/atomic"
)

const defaultBuffer = 64

// Bus delivers events of type T to every subscriber.
type Bus[T any] struct {
	mu      sync.RWMutex
	subs    []chan T
	closed  bool
	buffer  int
	dropped atomic.Uint64
}

// Option configures a Bus.
type Option func(*config)

type config struct{ buffer int }

// WithBuffer sets the channel capacity given to new subscribers.
func WithBuffer(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.buffer = n
		}
	}
}

// New creates a Bus.
func New[T any](opts ...Option) *Bus[T] {
	c := config{buffer: defaultBuffer}
	for _, o := range opts {
		o(&c)
	}
	return &Bus[T]{buffer: c.buffer}
}

// Publish sends e to all subscribers and reports how many received it.
func (b *Bus[T]) Publish(e T) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return 0
	}
	delivered := 0
	for _, ch := range b.subs {
		select {
		case ch <- e:
			delivered++
		default:
			b.dropped.Add(1)
		}
	}
	return delivered
}

// Dropped returns the number of deliveries skipped because a subscriber was
// full.
func (b *Bus[T]) Dropped() uint64 { return b.dropped.Load() }

// Subscribe registers a subscriber and returns its channel. Subscribing to a
// closed bus yields a closed channel.
func (b *Bus[T]) Subscribe() <-chan T {
	ch := make(chan T, b.buffer)
	b.mu.Lock()
	if b.closed {
		close(ch)
	} else {
		b.subs = append(b.subs, ch)
	}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Bus[T]) Unsubscribe(sub <-chan T) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, ch := range b.subs {
		if ch == sub {
			b.subs = append(b.subs[:i], b.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// Close closes the bus and all subscriber channels. It is idempotent.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for _, ch := range b.subs {
		close(ch)
	}
	b.subs = nil
}
