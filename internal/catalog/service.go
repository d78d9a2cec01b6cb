package catalog

import (
	"context"
	"fmt"

	"github.com/fjod/phone_store/internal/domain"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Store is what the service needs from the database.
type Store interface {
	ListPhones(ctx context.Context, f Filter) ([]domain.Phone, error)
	Brands(ctx context.Context, availableOnly bool) ([]string, error)
	GetPhone(ctx context.Context, id domain.ProductID) (*domain.Phone, error)
	UpsertPhone(ctx context.Context, p *domain.Phone) error
}

// Service is the read side used by the storefront. Identical list queries
// that arrive while one is already running share its result.
type Service struct {
	store Store
	group singleflight.Group
	log   logrus.FieldLogger
}

func NewService(store Store, log logrus.FieldLogger) *Service {
	return &Service{store: store, log: log}
}

func (s *Service) ListPhones(ctx context.Context, f Filter) ([]domain.Phone, error) {
	key := fmt.Sprintf("phones:%t:%t:%s:%d:%d:%s", f.AvailableOnly, f.DealsOnly, f.Brand, f.MinPrice, f.MaxPrice, f.Sort)

	v, err, shared := s.group.Do(key, func() (any, error) {
		return s.store.ListPhones(ctx, f)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.log.WithField("key", key).Debug("phone list shared with concurrent request")
	}

	phones := v.([]domain.Phone)
	out := make([]domain.Phone, len(phones))
	copy(out, phones)
	return out, nil
}

func (s *Service) Brands(ctx context.Context, availableOnly bool) ([]string, error) {
	key := fmt.Sprintf("brands:%t", availableOnly)

	v, err, _ := s.group.Do(key, func() (any, error) {
		return s.store.Brands(ctx, availableOnly)
	})
	if err != nil {
		return nil, err
	}

	brands := v.([]string)
	return append([]string(nil), brands...), nil
}

func (s *Service) Phone(ctx context.Context, id domain.ProductID) (*domain.Phone, error) {
	return s.store.GetPhone(ctx, id)
}

// Import upserts every phone and stops at the first failure, returning how
// many were written.
func (s *Service) Import(ctx context.Context, phones []domain.Phone) (int, error) {
	for i := range phones {
		if err := s.store.UpsertPhone(ctx, &phones[i]); err != nil {
			return i, fmt.Errorf("phone #%d (%s): %w", i+1, phones[i].Name, err)
		}
	}
	s.log.WithField("count", len(phones)).Info("catalog import finished")
	return len(phones), nil
}
