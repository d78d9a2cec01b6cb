package cart

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/fjod/phone_store/internal/domain"
	"github.com/fjod/phone_store/internal/storage"
	"github.com/fjod/phone_store/pkg/logger"
	"github.com/sirupsen/logrus"
)

// StorageKey is the key every cart is persisted under, suffixed with the
// cart id when there is one.
const StorageKey = "balaji_mobiles_cart"

// Store is the single source of truth for cart contents. Read never fails
// and Write never returns an error: storage problems are logged and the
// cart degrades to empty.
//
// Two processes sharing one backend are not coordinated; the last Write wins.
type Store struct {
	kv  storage.KVStore
	bus *Bus
	log logrus.FieldLogger
}

func NewStore(kv storage.KVStore, bus *Bus, log logrus.FieldLogger) *Store {
	return &Store{
		kv:  kv,
		bus: bus,
		log: log,
	}
}

func Key(cartID string) string {
	if cartID == "" {
		return StorageKey
	}
	return StorageKey + ":" + cartID
}

func (s *Store) Read(ctx context.Context, cartID string) []domain.CartLineItem {
	log := logger.FromContext(ctx, s.log).WithField("cart_id", cartID)

	data, err := s.kv.Get(ctx, Key(cartID))
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			log.WithError(err).Error("error reading cart")
		}
		return []domain.CartLineItem{}
	}

	var items []domain.CartLineItem
	if err := json.Unmarshal(data, &items); err != nil {
		log.WithError(err).Error("error decoding cart, treating as empty")
		return []domain.CartLineItem{}
	}

	valid := make([]domain.CartLineItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			log.WithFields(logrus.Fields{
				"product_id": item.ID,
				"quantity":   item.Quantity,
			}).Warn("dropping stored cart item with non-positive quantity")
			continue
		}
		valid = append(valid, item)
	}
	return valid
}

// Write replaces the stored cart and broadcasts. A write that fails is
// logged and not broadcast.
func (s *Store) Write(ctx context.Context, cartID string, items []domain.CartLineItem) {
	log := logger.FromContext(ctx, s.log).WithField("cart_id", cartID)

	if items == nil {
		items = []domain.CartLineItem{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		log.WithError(err).Error("error encoding cart")
		return
	}

	if err := s.kv.Set(ctx, Key(cartID), data); err != nil {
		log.WithError(err).Error("error saving cart")
		return
	}

	s.bus.Publish(cartID)
}
