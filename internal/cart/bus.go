package cart

import (
	"sync"
)

// EventCartUpdated is the only event the bus carries. It has no payload:
// subscribers re-read the cart when they see it.
const EventCartUpdated = "cartUpdated"

type Handler func()

// Bus fans a change signal out to every subscriber of a cart. Delivery is
// synchronous, in subscription order, on the publishing goroutine.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscriber
}

type subscriber struct {
	id      uint64
	handler Handler
}

// Subscription is returned by Subscribe; call Unsubscribe on teardown.
type Subscription struct {
	bus    *Bus
	cartID string
	id     uint64
	once   sync.Once
}

func NewBus() *Bus {
	return &Bus{
		subs: make(map[string][]subscriber),
	}
}

func (b *Bus) Subscribe(cartID string, h Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.subs[cartID] = append(b.subs[cartID], subscriber{id: b.nextID, handler: h})
	return &Subscription{bus: b, cartID: cartID, id: b.nextID}
}

// Unsubscribe is safe to call more than once and from inside a handler.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.bus.remove(s.cartID, s.id)
	})
}

func (b *Bus) remove(cartID string, id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[cartID]
	for i, sub := range subs {
		if sub.id == id {
			// copy so an in-flight Publish keeps iterating its own snapshot
			next := make([]subscriber, 0, len(subs)-1)
			next = append(next, subs[:i]...)
			next = append(next, subs[i+1:]...)
			if len(next) == 0 {
				delete(b.subs, cartID)
			} else {
				b.subs[cartID] = next
			}
			return
		}
	}
}

// Publish notifies the subscribers registered when it was called.
func (b *Bus) Publish(cartID string) {
	b.mu.RLock()
	subs := b.subs[cartID]
	b.mu.RUnlock()

	for _, sub := range subs {
		sub.handler()
	}
}

// Subscribers reports how many handlers are registered for a cart.
func (b *Bus) Subscribers(cartID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[cartID])
}
