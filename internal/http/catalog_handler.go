package http

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fjod/phone_store/internal/catalog"
	"github.com/fjod/phone_store/internal/domain"
	"github.com/fjod/phone_store/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type CatalogReader interface {
	PhoneFinder
	ListPhones(ctx context.Context, f catalog.Filter) ([]domain.Phone, error)
	Brands(ctx context.Context, availableOnly bool) ([]string, error)
}

type CatalogHandler struct {
	catalog CatalogReader
	timeout time.Duration
	log     logrus.FieldLogger
}

func NewCatalogHandler(c CatalogReader, timeout time.Duration, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{catalog: c, timeout: timeout, log: log}
}

type PhonesResponse struct {
	Phones []domain.Phone `json:"phones"`
}

// GET /api/v1/phones
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	phones, err := h.catalog.ListPhones(ctx, filter)
	if err != nil {
		logger.FromContext(ctx, h.log).WithError(err).Error("failed to list phones")
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to fetch phones")
		return
	}

	respondJSON(w, http.StatusOK, PhonesResponse{Phones: phones})
}

// GET /api/v1/phones/brands
func (h *CatalogHandler) Brands(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	availableOnly, err := boolParam(r.URL.Query(), "available_only", true)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_filter", err.Error())
		return
	}

	brands, err := h.catalog.Brands(ctx, availableOnly)
	if err != nil {
		logger.FromContext(ctx, h.log).WithError(err).Error("failed to list brands")
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to fetch brands")
		return
	}

	respondJSON(w, http.StatusOK, brands)
}

// GET /api/v1/phones/{id}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	phone, err := h.catalog.Phone(ctx, domain.ProductID(chi.URLParam(r, "id")))
	if errors.Is(err, catalog.ErrPhoneNotFound) {
		respondError(w, http.StatusNotFound, "not_found", "phone not found")
		return
	}
	if err != nil {
		logger.FromContext(ctx, h.log).WithError(err).Error("failed to load phone")
		respondError(w, http.StatusInternalServerError, "internal_error", "failed to fetch phone")
		return
	}

	respondJSON(w, http.StatusOK, phone)
}

func parseFilter(q url.Values) (catalog.Filter, error) {
	var (
		f   catalog.Filter
		err error
	)

	if f.AvailableOnly, err = boolParam(q, "available_only", true); err != nil {
		return f, err
	}
	if f.DealsOnly, err = boolParam(q, "deals_only", false); err != nil {
		return f, err
	}
	if f.MinPrice, err = intParam(q, "min_price"); err != nil {
		return f, err
	}
	if f.MaxPrice, err = intParam(q, "max_price"); err != nil {
		return f, err
	}
	if f.Sort, err = catalog.ParseSortOrder(q.Get("sort")); err != nil {
		return f, err
	}
	f.Brand = q.Get("brand")

	return f, nil
}

func boolParam(q url.Values, name string, def bool) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(name + " must be true or false")
	}
	return b, nil
}

func intParam(q url.Values, name string) (int64, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return n, nil
}
