package checkout

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fjod/phone_store/internal/cart"
	"github.com/fjod/phone_store/internal/domain"
	"github.com/fjod/phone_store/pkg/logger"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	currency       = "INR"
	publishTimeout = 5 * time.Second
)

// EventPublisher forwards completed checkouts to whoever follows up on them.
type EventPublisher interface {
	PublishCheckout(ctx context.Context, event domain.CheckoutCompleted) error
}

type Result struct {
	CheckoutID string
	URL        string
	Items      []domain.CartLineItem
	Total      int64
}

// Service hands a cart off to WhatsApp: it validates the customer, composes
// the link, empties the cart and announces the checkout.
type Service struct {
	carts     *cart.Service
	composer  *Composer
	publisher EventPublisher
	log       logrus.FieldLogger
	now       func() time.Time
	inflight  sync.WaitGroup
}

// NewService wires the checkout flow. publisher may be nil.
func NewService(carts *cart.Service, composer *Composer, publisher EventPublisher, log logrus.FieldLogger) *Service {
	return &Service{
		carts:     carts,
		composer:  composer,
		publisher: publisher,
		log:       log,
		now:       time.Now,
	}
}

func (s *Service) Checkout(ctx context.Context, cartID, customerName, customerPhone string) (*Result, error) {
	if err := ValidateCustomer(customerName, customerPhone); err != nil {
		return nil, err
	}
	customerName = strings.TrimSpace(customerName)
	customerPhone = strings.TrimSpace(customerPhone)

	items := s.carts.Take(ctx, cartID)
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	result := &Result{
		CheckoutID: uuid.NewString(),
		URL:        s.composer.GenerateCheckoutMessage(items, customerName, customerPhone),
		Items:      items,
		Total:      cart.TotalOf(items),
	}

	logger.FromContext(ctx, s.log).WithFields(logrus.Fields{
		"checkout_id": result.CheckoutID,
		"cart_id":     cartID,
		"items":       len(items),
		"total":       result.Total,
	}).Info("checkout handed off to whatsapp")

	if s.publisher != nil {
		event := s.event(result, cartID, customerName, customerPhone)
		log := logger.FromContext(ctx, s.log)
		s.inflight.Add(1)
		go func() {
			defer s.inflight.Done()
			pubCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()
			if err := s.publisher.PublishCheckout(pubCtx, event); err != nil {
				log.WithError(err).WithField("checkout_id", event.CheckoutID).Error("failed to publish checkout event")
			}
		}()
	}

	return result, nil
}

func (s *Service) event(r *Result, cartID, name, phone string) domain.CheckoutCompleted {
	items := make([]domain.CheckoutItem, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, domain.CheckoutItem{
			ProductID: item.ID,
			Name:      item.Name,
			Quantity:  item.Quantity,
			UnitPrice: item.Price,
			Subtotal:  item.Subtotal(),
		})
	}

	return domain.CheckoutCompleted{
		CheckoutID:    r.CheckoutID,
		CartID:        cartID,
		Items:         items,
		TotalAmount:   r.Total,
		Currency:      currency,
		CustomerName:  name,
		CustomerPhone: phone,
		CompletedAt:   s.now(),
	}
}

// Wait blocks until every checkout event handed to the publisher has been
// sent or has failed.
func (s *Service) Wait() {
	s.inflight.Wait()
}
