package http

import (
	"context"
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"time"

	"github.com/fjod/phone_store/internal/checkout"
	"github.com/fjod/phone_store/pkg/logger"
	"github.com/sirupsen/logrus"
)

// maxFormMemory caps the part of a multipart checkout form held in memory.
const maxFormMemory = 1 << 20

type CheckoutHandler struct {
	checkout *checkout.Service
	timeout  time.Duration
	log      logrus.FieldLogger
}

func NewCheckoutHandler(svc *checkout.Service, timeout time.Duration, log logrus.FieldLogger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: svc,
		timeout:  timeout,
		log:      log,
	}
}

type CheckoutRequestDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type CheckoutResponseDTO struct {
	CheckoutID     string `json:"checkout_id"`
	WhatsAppURL    string `json:"whatsapp_url"`
	Total          int64  `json:"total"`
	TotalFormatted string `json:"total_formatted"`
}

// POST /api/v1/checkout
//
// JSON bodies get the WhatsApp link back. HTML form posts are redirected
// straight to it.
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	req, isForm, err := decodeCheckoutRequest(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	res, err := h.checkout.Checkout(ctx, cartIDFromContext(r.Context()), req.Name, req.Phone)
	if err != nil {
		h.handleError(ctx, w, err)
		return
	}

	if isForm {
		http.Redirect(w, r, res.URL, http.StatusSeeOther)
		return
	}

	respondJSON(w, http.StatusOK, CheckoutResponseDTO{
		CheckoutID:     res.CheckoutID,
		WhatsAppURL:    res.URL,
		Total:          res.Total,
		TotalFormatted: checkout.FormatPrice(res.Total),
	})
}

func (h *CheckoutHandler) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:  "invalid customer details",
			Code:   "validation_failed",
			Fields: verr.Fields,
		})
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, http.StatusConflict, "empty_cart", err.Error())
	default:
		logger.FromContext(ctx, h.log).WithError(err).Error("checkout failed")
		respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func decodeCheckoutRequest(r *http.Request) (CheckoutRequestDTO, bool, error) {
	var req CheckoutRequestDTO

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	var formErr error
	switch mediaType {
	case "multipart/form-data":
		formErr = r.ParseMultipartForm(maxFormMemory)
	case "application/x-www-form-urlencoded":
		formErr = r.ParseForm()
	default:
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, false, errors.New("invalid JSON body")
		}
		return req, false, nil
	}
	if formErr != nil {
		return req, true, errors.New("invalid form body")
	}
	req.Name = r.PostForm.Get("name")
	req.Phone = r.PostForm.Get("phone")
	return req, true, nil
}
