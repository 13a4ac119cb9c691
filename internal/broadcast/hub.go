// Package broadcast implements the lossy single-producer/multi-consumer
// fan-out hub (C4) that decouples the merger from RPC subscribers.
package broadcast

import (
	"sync"

	"github.com/DimaJoyti/orderbook-aggregator/internal/model"
)

// DefaultCapacity is the ring buffer size used when New is called with a
// non-positive capacity.
const DefaultCapacity = 100

// Item is what the hub actually stores and redelivers: a Summary, or the
// string form of whatever error replaced it. Publishers convert from
// model.Result (via FromResult) before calling Publish, so no live error
// value — and nothing it might wrap, such as a transport error tied to a
// specific connection — ever crosses the broadcast boundary into a
// subscriber.
type Item struct {
	Value model.Summary
	Err   string
}

// FromResult converts a model.Result into the string-typed Item the hub
// stores, collapsing any error to its message.
func FromResult(r model.Result[model.Summary]) Item {
	if r.Err != nil {
		return Item{Err: r.Err.Error()}
	}
	return Item{Value: r.Value}
}

// Hub is a bounded ring buffer of published items plus a monotonically
// increasing sequence number: a subscriber that falls behind the buffer's
// capacity observes a lag indication instead of blocking the producer.
type Hub struct {
	mu       sync.Mutex
	cond     *sync.Cond
	buf      []Item
	capacity uint64
	nextSeq  uint64
	closed   bool
}

// New builds a Hub with the given ring buffer capacity. A non-positive
// capacity defaults to DefaultCapacity.
func New(capacity int) *Hub {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	h := &Hub{
		buf:      make([]Item, capacity),
		capacity: uint64(capacity),
	}
	h.cond = sync.NewCond(&h.mu)
	return h
}

// Publish makes item visible to every current and future subscriber that
// hasn't already fallen behind. It never blocks the caller: with no
// subscribers, published items are simply overwritten in place once the
// ring buffer wraps — a valid steady state.
func (h *Hub) Publish(item Item) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.buf[h.nextSeq%h.capacity] = item
	h.nextSeq++
	h.cond.Broadcast()
}

// Close marks the hub closed. Every Subscription.Next call returns
// ok=false once its backlog (if any) has been drained.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	h.cond.Broadcast()
}

// Subscription is a per-caller cursor into the hub's ring buffer. It is not
// safe for concurrent use by multiple goroutines — each RPC call owns one.
type Subscription struct {
	hub     *Hub
	nextSeq uint64
}

// Subscribe returns a handle that observes only items published after this
// call returns, never items published before it.
func (h *Hub) Subscribe() *Subscription {
	h.mu.Lock()
	defer h.mu.Unlock()
	return &Subscription{hub: h, nextSeq: h.nextSeq}
}

// Next blocks until an item is available, the subscription has lagged, or
// the hub has closed and been fully drained. lagged reports that items
// were dropped before this subscription could read them; when lagged is
// true, item is the zero value and the caller should simply call Next
// again. ok is false only once the hub is closed with nothing left to
// deliver.
func (s *Subscription) Next() (item Item, lagged bool, ok bool) {
	h := s.hub
	h.mu.Lock()
	defer h.mu.Unlock()

	for s.nextSeq == h.nextSeq && !h.closed {
		h.cond.Wait()
	}

	if s.nextSeq == h.nextSeq && h.closed {
		return Item{}, false, false
	}

	var oldest uint64
	if h.nextSeq > h.capacity {
		oldest = h.nextSeq - h.capacity
	}
	if s.nextSeq < oldest {
		s.nextSeq = oldest
		return Item{}, true, true
	}

	item = h.buf[s.nextSeq%h.capacity]
	s.nextSeq++
	return item, false, true
}
