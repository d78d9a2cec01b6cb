package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fjod/phone_store/internal/domain"
	"github.com/fjod/phone_store/internal/storage"
	"github.com/fjod/phone_store/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func setupService(t *testing.T) (*Service, *Bus) {
	t.Helper()
	bus := NewBus()
	store := NewStore(storage.NewMemoryStore(0), bus, logger.Discard())
	svc := NewService(store)
	svc.now = func() time.Time { return fixedNow }
	return svc, bus
}

func phone(id string, price int64) domain.ProductSnapshot {
	return domain.ProductSnapshot{
		ID:        domain.ProductID(id),
		Name:      "Phone " + id,
		Brand:     "Apple",
		Price:     price,
		Images:    []string{"https://img.example/" + id + ".jpg"},
		Condition: "Good",
		Storage:   "128GB",
	}
}

func countingSubscriber(svc *Service, cartID string) *int {
	hits := new(int)
	svc.Subscribe(cartID, func() { *hits++ })
	return hits
}

func TestAddToCart_NewProduct(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	items := svc.AddToCart(ctx, "c1", phone("p1", 15000))

	require.Len(t, items, 1)
	assert.Equal(t, domain.ProductID("p1"), items[0].ID)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, fixedNow, items[0].AddedAt)
	assert.Equal(t, "Phone p1", items[0].Name)
	assert.Equal(t, items, svc.Items(ctx, "c1"))
}

func TestAddToCart_ExistingProductIncrements(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	svc.AddToCart(ctx, "c1", phone("p1", 15000))
	svc.AddToCart(ctx, "c1", phone("p2", 9000))
	items := svc.AddToCart(ctx, "c1", phone("p1", 15000))

	require.Len(t, items, 2)
	assert.Equal(t, domain.ProductID("p1"), items[0].ID)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, items[1].Quantity)
}

func TestAddToCart_KeepsSnapshot(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	p := phone("p1", 15000)
	svc.AddToCart(ctx, "c1", p)

	// later catalog edits do not reach the cart
	p.Price = 99999
	p.Images[0] = "https://img.example/changed.jpg"
	items := svc.AddToCart(ctx, "c1", p)

	require.Len(t, items, 1)
	assert.Equal(t, int64(15000), items[0].Price)
	assert.Equal(t, "https://img.example/p1.jpg", items[0].Images[0])
	assert.Equal(t, 2, items[0].Quantity)
}

func TestAddToCart_AcceptsCatalogPhone(t *testing.T) {
	svc, _ := setupService(t)

	items := svc.AddToCart(context.Background(), "c1", domain.Phone{
		ID: "p9", Name: "Pixel 7", Brand: "Google", Price: 30000, Battery: "91%", Available: true,
	})

	require.Len(t, items, 1)
	assert.Equal(t, "Pixel 7", items[0].Name)
	assert.Equal(t, "91%", items[0].Battery)
}

func TestRemoveFromCart(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	svc.AddToCart(ctx, "c1", phone("p1", 100))
	svc.AddToCart(ctx, "c1", phone("p2", 200))

	items := svc.RemoveFromCart(ctx, "c1", "p1")

	require.Len(t, items, 1)
	assert.Equal(t, domain.ProductID("p2"), items[0].ID)
}

func TestRemoveFromCart_AbsentLeavesCartUnchanged(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	svc.AddToCart(ctx, "c1", phone("p1", 100))
	before := svc.Items(ctx, "c1")

	svc.RemoveFromCart(ctx, "c1", "missing")

	assert.Equal(t, before, svc.Items(ctx, "c1"))
}

func TestUpdateQuantity(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	svc.AddToCart(ctx, "c1", phone("p1", 100))

	items := svc.UpdateQuantity(ctx, "c1", "p1", 4)

	require.Len(t, items, 1)
	assert.Equal(t, 4, items[0].Quantity)
	assert.Equal(t, 4, svc.Count(ctx, "c1"))
}

func TestUpdateQuantity_NonPositiveRemoves(t *testing.T) {
	for _, q := range []int{0, -5} {
		svc, _ := setupService(t)
		ctx := context.Background()
		svc.AddToCart(ctx, "c1", phone("p1", 100))
		svc.AddToCart(ctx, "c1", phone("p2", 100))

		items := svc.UpdateQuantity(ctx, "c1", "p1", q)

		require.Len(t, items, 1, "quantity %d", q)
		assert.Equal(t, domain.ProductID("p2"), items[0].ID)
		assert.False(t, svc.IsInCart(ctx, "c1", "p1"))
	}
}

func TestUpdateQuantity_AbsentIsNoOp(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	svc.AddToCart(ctx, "c1", phone("p1", 100))
	before := svc.Items(ctx, "c1")
	hits := countingSubscriber(svc, "c1")

	svc.UpdateQuantity(ctx, "c1", "missing", 3)

	assert.Equal(t, before, svc.Items(ctx, "c1"))
	assert.Equal(t, 0, *hits, "no write happens for an unknown id")
}

func TestClearCart(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	svc.AddToCart(ctx, "c1", phone("p1", 100))
	svc.AddToCart(ctx, "c2", phone("p1", 100))

	items := svc.ClearCart(ctx, "c1")

	assert.Empty(t, items)
	assert.Empty(t, svc.Items(ctx, "c1"))
	assert.Equal(t, 1, svc.Count(ctx, "c2"), "other carts are untouched")
}

func TestCount(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	assert.Equal(t, 0, svc.Count(ctx, "c1"))

	svc.AddToCart(ctx, "c1", phone("a", 1))
	svc.UpdateQuantity(ctx, "c1", "a", 2)
	svc.AddToCart(ctx, "c1", phone("b", 1))
	svc.AddToCart(ctx, "c1", phone("c", 1))
	svc.UpdateQuantity(ctx, "c1", "c", 3)

	assert.Equal(t, 6, svc.Count(ctx, "c1"))
}

func TestTotal(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	assert.Equal(t, int64(0), svc.Total(ctx, "c1"))

	svc.AddToCart(ctx, "c1", phone("A", 10000))
	svc.AddToCart(ctx, "c1", phone("A", 10000))
	svc.AddToCart(ctx, "c1", phone("B", 5000))

	assert.Equal(t, int64(25000), svc.Total(ctx, "c1"))
}

func TestAddThenRemoveScenario(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	svc.AddToCart(ctx, "", phone("p1", 15000))
	assert.True(t, svc.IsInCart(ctx, "", "p1"))

	svc.RemoveFromCart(ctx, "", "p1")
	assert.False(t, svc.IsInCart(ctx, "", "p1"))
	assert.Equal(t, 0, svc.Count(ctx, ""))
}

func TestMutationsBroadcastOnce(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	hits := countingSubscriber(svc, "c1")

	svc.AddToCart(ctx, "c1", phone("p1", 100))
	assert.Equal(t, 1, *hits)

	svc.UpdateQuantity(ctx, "c1", "p1", 3)
	assert.Equal(t, 2, *hits)

	svc.UpdateQuantity(ctx, "c1", "p1", 0)
	assert.Equal(t, 3, *hits)

	svc.RemoveFromCart(ctx, "c1", "p1")
	assert.Equal(t, 4, *hits)

	svc.ClearCart(ctx, "c1")
	assert.Equal(t, 5, *hits)
}

func TestReadsDoNotBroadcast(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	svc.AddToCart(ctx, "c1", phone("p1", 100))
	hits := countingSubscriber(svc, "c1")

	svc.IsInCart(ctx, "c1", "p1")
	svc.Count(ctx, "c1")
	svc.Total(ctx, "c1")
	svc.Items(ctx, "c1")

	assert.Equal(t, 0, *hits)
}

func TestSubscribersSeeNewStateBeforeMutationReturns(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	var badge []int
	svc.Subscribe("c1", func() { badge = append(badge, svc.Count(ctx, "c1")) })

	svc.AddToCart(ctx, "c1", phone("p1", 100))
	svc.AddToCart(ctx, "c1", phone("p1", 100))
	svc.ClearCart(ctx, "c1")

	assert.Equal(t, []int{1, 2, 0}, badge)
}

func TestConcurrentAddsAreNotLost(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.AddToCart(ctx, "c1", phone("p1", 100))
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, svc.Count(ctx, "c1"))
	assert.Len(t, svc.Items(ctx, "c1"), 1)
}

func TestTake(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()
	svc.AddToCart(ctx, "c1", phone("p1", 100))
	svc.AddToCart(ctx, "c1", phone("p2", 250))
	hits := countingSubscriber(svc, "c1")

	taken := svc.Take(ctx, "c1")

	require.Len(t, taken, 2)
	assert.Equal(t, int64(350), TotalOf(taken))
	assert.Empty(t, svc.Items(ctx, "c1"))
	assert.Equal(t, 1, *hits)
}

func TestTake_EmptyCartDoesNotBroadcast(t *testing.T) {
	svc, _ := setupService(t)
	hits := countingSubscriber(svc, "c1")

	assert.Empty(t, svc.Take(context.Background(), "c1"))
	assert.Equal(t, 0, *hits)
}

func TestTake_RacingAddIsNeverLost(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		cartID := "race"
		svc.ClearCart(ctx, cartID)
		svc.AddToCart(ctx, cartID, phone("p1", 100))

		var (
			wg    sync.WaitGroup
			taken []domain.CartLineItem
		)
		wg.Add(2)
		go func() {
			defer wg.Done()
			taken = svc.Take(ctx, cartID)
		}()
		go func() {
			defer wg.Done()
			svc.AddToCart(ctx, cartID, phone("p2", 200))
		}()
		wg.Wait()

		// p2 is either part of what was taken or still waiting in the cart
		inTaken := indexOf(taken, "p2") >= 0
		inCart := svc.IsInCart(ctx, cartID, "p2")
		require.True(t, inTaken != inCart, "iteration %d: p2 taken=%t in cart=%t", i, inTaken, inCart)
		require.GreaterOrEqual(t, indexOf(taken, "p1"), 0)
	}
}
