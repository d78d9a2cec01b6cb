package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/phone_store/internal/cart"
	"github.com/fjod/phone_store/internal/catalog"
	"github.com/fjod/phone_store/internal/checkout"
	"github.com/fjod/phone_store/internal/domain"
	"github.com/fjod/phone_store/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const maxQuantity = 99

// PhoneFinder looks up the catalog entry a cart line is snapshotted from.
type PhoneFinder interface {
	Phone(ctx context.Context, id domain.ProductID) (*domain.Phone, error)
}

type CartHandler struct {
	carts   *cart.Service
	phones  PhoneFinder
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewCartHandler(carts *cart.Service, phones PhoneFinder, timeout time.Duration, log logrus.FieldLogger) *CartHandler {
	return &CartHandler{
		carts:   carts,
		phones:  phones,
		timeout: timeout,
		log:     log,
	}
}

type AddItemRequestDTO struct {
	PhoneID domain.ProductID `json:"phone_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartResponse struct {
	Items          []domain.CartLineItem `json:"items"`
	Count          int                   `json:"count"`
	Total          int64                 `json:"total"`
	TotalFormatted string                `json:"total_formatted"`
}

type StatusResponse struct {
	InCart bool `json:"in_cart"`
}

func newCartResponse(items []domain.CartLineItem) CartResponse {
	total := cart.TotalOf(items)
	return CartResponse{
		Items:          items,
		Count:          cart.CountOf(items),
		Total:          total,
		TotalFormatted: checkout.FormatPrice(total),
	}
}

// GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items := h.carts.Items(ctx, cartIDFromContext(r.Context()))
	respondJSON(w, http.StatusOK, newCartResponse(items))
}

// POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req AddItemRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.PhoneID == "" {
		respondError(w, http.StatusBadRequest, "invalid_phone_id", "phone_id is required")
		return
	}

	phone, err := h.phones.Phone(ctx, req.PhoneID)
	if errors.Is(err, catalog.ErrPhoneNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "phone not found")
		return
	}
	if err != nil {
		logger.FromContext(ctx, h.log).WithError(err).WithField("phone_id", req.PhoneID).Error("failed to load phone")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
		return
	}
	if !phone.Available {
		respondError(w, http.StatusConflict, "phone_unavailable", "phone is no longer available")
		return
	}

	items := h.carts.AddToCart(ctx, cartIDFromContext(r.Context()), phone)
	respondJSON(w, http.StatusCreated, newCartResponse(items))
}

// PUT /api/v1/cart/items/{id}
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := domain.ProductID(chi.URLParam(r, "id"))

	var req UpdateQuantityRequestDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}
	if *req.Quantity > maxQuantity {
		respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity must be at most 99")
		return
	}

	items := h.carts.UpdateQuantity(ctx, cartIDFromContext(r.Context()), id, *req.Quantity)
	respondJSON(w, http.StatusOK, newCartResponse(items))
}

// DELETE /api/v1/cart/items/{id}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := domain.ProductID(chi.URLParam(r, "id"))
	items := h.carts.RemoveFromCart(ctx, cartIDFromContext(r.Context()), id)
	respondJSON(w, http.StatusOK, newCartResponse(items))
}

// DELETE /api/v1/cart
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items := h.carts.ClearCart(ctx, cartIDFromContext(r.Context()))
	respondJSON(w, http.StatusOK, newCartResponse(items))
}

// GET /api/v1/cart/status/{id}
func (h *CartHandler) Status(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id := domain.ProductID(chi.URLParam(r, "id"))
	respondJSON(w, http.StatusOK, StatusResponse{
		InCart: h.carts.IsInCart(ctx, cartIDFromContext(r.Context()), id),
	})
}
