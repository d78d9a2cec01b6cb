package http

import (
	"net/http"
	"time"

	"github.com/fjod/phone_store/internal/cart"
	"github.com/fjod/phone_store/internal/checkout"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

type RouterConfig struct {
	Carts          *cart.Service
	Catalog        CatalogReader
	Checkout       *checkout.Service
	Log            logrus.FieldLogger
	RequestTimeout time.Duration
	SecureCookies  bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	cartHandler := NewCartHandler(cfg.Carts, cfg.Catalog, cfg.RequestTimeout, cfg.Log)
	catalogHandler := NewCatalogHandler(cfg.Catalog, cfg.RequestTimeout, cfg.Log)
	checkoutHandler := NewCheckoutHandler(cfg.Checkout, cfg.RequestTimeout, cfg.Log)
	eventsHandler := NewEventsHandler(cfg.Carts, cfg.Log)

	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(CartSessionMiddleware(cfg.SecureCookies))

		// long lived, so outside the request timeout
		r.Get("/cart/events", eventsHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(cfg.RequestTimeout))

			r.Route("/phones", func(r chi.Router) {
				r.Get("/", catalogHandler.List)
				r.Get("/brands", catalogHandler.Brands)
				r.Get("/{id}", catalogHandler.Get)
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartHandler.GetCart)
				r.Delete("/", cartHandler.ClearCart)
				r.Post("/items", cartHandler.AddItem)
				r.Put("/items/{id}", cartHandler.UpdateQuantity)
				r.Delete("/items/{id}", cartHandler.RemoveItem)
				r.Get("/status/{id}", cartHandler.Status)
			})

			r.Post("/checkout", checkoutHandler.Checkout)
		})
	})

	return r
}
