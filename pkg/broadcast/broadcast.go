package broadcast

import (
	"sync"
	"sync/atomic"
)

// DefaultCapacity is the per-subscriber buffer used by the endpoint streams.
const DefaultCapacity = 10

// Channel is a single-producer, multi-consumer fan-out primitive. Every
// subscriber observes published items in publish order. A subscriber that
// falls more than the buffer capacity behind loses the oldest buffered items
// instead of blocking the producer; the loss is visible through
// Subscription.Missed.
type Channel[T any] struct {
	capacity int

	mu   sync.Mutex
	subs map[*Subscription[T]]struct{}
}

func New[T any](capacity int) *Channel[T] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Channel[T]{
		capacity: capacity,
		subs:     make(map[*Subscription[T]]struct{}),
	}
}

// Send publishes v to all current subscribers without ever blocking.
func (c *Channel[T]) Send(v T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for sub := range c.subs {
		select {
		case sub.ch <- v:
			continue
		default:
		}
		// subscriber buffer full: evict the oldest item, then retry once
		select {
		case <-sub.ch:
			sub.missed.Add(1)
		default:
		}
		select {
		case sub.ch <- v:
		default:
			sub.missed.Add(1)
		}
	}
}

// Subscribe registers a new consumer. The returned subscription starts empty:
// it only observes items published after this call.
func (c *Channel[T]) Subscribe() *Subscription[T] {
	sub := &Subscription[T]{
		ch:     make(chan T, c.capacity),
		parent: c,
	}
	c.mu.Lock()
	c.subs[sub] = struct{}{}
	c.mu.Unlock()
	return sub
}

// Len returns the number of active subscribers.
func (c *Channel[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subs)
}

type Subscription[T any] struct {
	ch     chan T
	missed atomic.Uint64
	parent *Channel[T]
	once   sync.Once
}

// Updates is the receive side of the subscription. The channel is never
// closed; consumers should select on it together with their own context.
func (s *Subscription[T]) Updates() <-chan T { return s.ch }

// Missed reports how many published items this subscriber lost to buffer
// overflow since subscribing.
func (s *Subscription[T]) Missed() uint64 { return s.missed.Load() }

// Unsubscribe detaches the subscription from the producer. Items already
// buffered remain readable.
func (s *Subscription[T]) Unsubscribe() {
	s.once.Do(func() {
		s.parent.mu.Lock()
		delete(s.parent.subs, s)
		s.parent.mu.Unlock()
	})
}
