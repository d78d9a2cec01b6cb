package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/fjod/phone_store/internal/cart"
	"github.com/fjod/phone_store/internal/catalog"
	"github.com/fjod/phone_store/internal/checkout"
	"github.com/fjod/phone_store/internal/config"
	"github.com/fjod/phone_store/internal/publisher"
	"github.com/fjod/phone_store/internal/storage"
	"github.com/fjod/phone_store/pkg/circuitbreaker"
	"github.com/redis/go-redis/v9"
)

// services is everything a command may need. close releases them in
// reverse order of creation.
type services struct {
	carts    *cart.Service
	catalog  *catalog.Service
	checkout *checkout.Service
	closers  []func() error
}

func (s *services) close() error {
	if s.checkout != nil {
		s.checkout.Wait()
	}
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}

func (a *app) openCatalog() (*catalog.Repository, error) {
	repo, err := catalog.NewRepository(a.cfg.CatalogDBPath)
	if err != nil {
		return nil, err
	}
	if err := repo.RunMigrations(); err != nil {
		_ = repo.Close()
		return nil, err
	}
	return repo, nil
}

func (a *app) openKV(ctx context.Context) (storage.KVStore, func() error, error) {
	var (
		kv     storage.KVStore
		closer = func() error { return nil }
	)

	switch a.cfg.Storage {
	case config.StorageSQLite:
		store, err := storage.NewSQLiteStore(a.cfg.CartDBPath)
		if err != nil {
			return nil, nil, err
		}
		kv, closer = store, store.Close
	case config.StorageMemory:
		kv = storage.NewMemoryStore(0)
	case config.StorageRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     a.cfg.RedisAddr,
			Password: a.cfg.RedisPassword,
			DB:       0,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis connection failed: %w", err)
		}
		kv, closer = storage.NewRedisStore(client), client.Close
	case config.StorageMongo:
		db, err := storage.ConnectMongoDB(ctx, a.cfg.MongoURI, a.cfg.MongoDBName)
		if err != nil {
			return nil, nil, err
		}
		store := storage.NewMongoStore(db)
		if err := store.CreateIndexes(ctx); err != nil {
			a.log.WithError(err).Warn("failed to create cart indexes")
		}
		kv = store
		closer = func() error { return db.Client().Disconnect(context.Background()) }
	default:
		return nil, nil, fmt.Errorf("unknown cart storage %q", a.cfg.Storage)
	}

	a.log.WithField("backend", a.cfg.Storage).Info("cart storage ready")

	if a.cfg.StorageBreaker {
		kv = storage.NewBreakerStore(kv, "cart-storage", circuitbreaker.WithLogger(a.log))
	}
	return kv, closer, nil
}

func (a *app) services(ctx context.Context) (*services, error) {
	svc := &services{}

	destination, err := checkout.ResolveDestination(a.cfg.AdminWhatsApp, a.cfg.IsProduction())
	if err != nil {
		return nil, err
	}
	if a.cfg.AdminWhatsApp == "" {
		a.log.WithField("destination", destination).Warn("ADMIN_WHATSAPP not set, using development number")
	}
	composer, err := checkout.NewComposer(destination)
	if err != nil {
		return nil, err
	}

	repo, err := a.openCatalog()
	if err != nil {
		return nil, err
	}
	svc.closers = append(svc.closers, repo.Close)
	svc.catalog = catalog.NewService(repo, a.log)

	kv, closeKV, err := a.openKV(ctx)
	if err != nil {
		_ = svc.close()
		return nil, err
	}
	svc.closers = append(svc.closers, closeKV)
	svc.carts = cart.NewService(cart.NewStore(kv, cart.NewBus(), a.log))

	var pub checkout.EventPublisher
	if len(a.cfg.KafkaBrokers) > 0 {
		kp := publisher.NewKafkaPublisher(a.cfg.KafkaTopic, a.cfg.KafkaBrokers...)
		svc.closers = append(svc.closers, kp.Close)
		pub = kp
	}
	svc.checkout = checkout.NewService(svc.carts, composer, pub, a.log)

	return svc, nil
}
