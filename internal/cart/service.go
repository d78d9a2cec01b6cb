package cart

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"github.com/fjod/phone_store/internal/domain"
)

const lockStripes = 64

// Service is the cart mutation API plus the derived aggregates. Every
// mutation reads, modifies and writes the whole cart while holding that
// cart's lock, so two requests in one process never interleave.
type Service struct {
	store *Store
	bus   *Bus
	locks [lockStripes]sync.Mutex
	now   func() time.Time
}

func NewService(store *Store) *Service {
	return &Service{
		store: store,
		bus:   store.bus,
		now:   time.Now,
	}
}

func (s *Service) lock(cartID string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(cartID))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

// Items returns the current cart.
func (s *Service) Items(ctx context.Context, cartID string) []domain.CartLineItem {
	return s.store.Read(ctx, cartID)
}

// AddToCart increments the quantity of an existing line or appends a new one
// with quantity 1.
func (s *Service) AddToCart(ctx context.Context, cartID string, product domain.Snapshotter) []domain.CartLineItem {
	defer s.lock(cartID)()

	snap := product.Snapshot()
	items := s.store.Read(ctx, cartID)

	if i := indexOf(items, snap.ID); i >= 0 {
		items[i].Quantity++
	} else {
		items = append(items, domain.NewLineItem(snap, s.now()))
	}

	s.store.Write(ctx, cartID, items)
	return items
}

func (s *Service) RemoveFromCart(ctx context.Context, cartID string, id domain.ProductID) []domain.CartLineItem {
	defer s.lock(cartID)()
	return s.remove(ctx, cartID, id)
}

func (s *Service) remove(ctx context.Context, cartID string, id domain.ProductID) []domain.CartLineItem {
	items := s.store.Read(ctx, cartID)

	kept := make([]domain.CartLineItem, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			kept = append(kept, item)
		}
	}

	s.store.Write(ctx, cartID, kept)
	return kept
}

// UpdateQuantity sets the quantity of an existing line. A quantity of zero
// or less removes the line; an unknown id changes nothing.
func (s *Service) UpdateQuantity(ctx context.Context, cartID string, id domain.ProductID, quantity int) []domain.CartLineItem {
	defer s.lock(cartID)()

	if quantity <= 0 {
		return s.remove(ctx, cartID, id)
	}

	items := s.store.Read(ctx, cartID)
	if i := indexOf(items, id); i >= 0 {
		items[i].Quantity = quantity
		s.store.Write(ctx, cartID, items)
	}
	return items
}

func (s *Service) ClearCart(ctx context.Context, cartID string) []domain.CartLineItem {
	defer s.lock(cartID)()

	empty := []domain.CartLineItem{}
	s.store.Write(ctx, cartID, empty)
	return empty
}

// Take empties the cart and returns what it held, as one step under the
// cart lock. An empty cart is left untouched and nothing is broadcast.
func (s *Service) Take(ctx context.Context, cartID string) []domain.CartLineItem {
	defer s.lock(cartID)()

	items := s.store.Read(ctx, cartID)
	if len(items) == 0 {
		return items
	}
	s.store.Write(ctx, cartID, []domain.CartLineItem{})
	return items
}

// Subscribers reports how many handlers are listening on cartID.
func (s *Service) Subscribers(cartID string) int {
	return s.bus.Subscribers(cartID)
}

func (s *Service) IsInCart(ctx context.Context, cartID string, id domain.ProductID) bool {
	return indexOf(s.store.Read(ctx, cartID), id) >= 0
}

// Count is the number of units in the cart.
func (s *Service) Count(ctx context.Context, cartID string) int {
	return CountOf(s.store.Read(ctx, cartID))
}

// Total is the cart value in rupees.
func (s *Service) Total(ctx context.Context, cartID string) int64 {
	return TotalOf(s.store.Read(ctx, cartID))
}

// Subscribe registers h for change notifications on cartID. Handlers run
// while the mutating call still holds the cart lock: they may read the cart
// but must not mutate it.
func (s *Service) Subscribe(cartID string, h Handler) *Subscription {
	return s.bus.Subscribe(cartID, h)
}

func CountOf(items []domain.CartLineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func TotalOf(items []domain.CartLineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.Subtotal()
	}
	return total
}

func indexOf(items []domain.CartLineItem, id domain.ProductID) int {
	for i, item := range items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
