package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/phone_store/internal/cart"
	"github.com/fjod/phone_store/pkg/logger"
	"github.com/sirupsen/logrus"
)

const keepAliveInterval = 15 * time.Second

// EventsHandler streams cart change notifications as server-sent events.
type EventsHandler struct {
	carts *cart.Service
	log   logrus.FieldLogger
}

func NewEventsHandler(carts *cart.Service, log logrus.FieldLogger) *EventsHandler {
	return &EventsHandler{carts: carts, log: log}
}

type cartUpdatedEvent struct {
	Count int   `json:"count"`
	Total int64 `json:"total"`
}

// GET /api/v1/cart/events
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming_unsupported", "streaming unsupported")
		return
	}

	ctx := r.Context()
	cartID := cartIDFromContext(ctx)
	log := logger.FromContext(ctx, h.log).WithField("cart_id", cartID)

	// Handlers run under the cart lock, so only signal here and read the
	// cart from this goroutine.
	notify := make(chan struct{}, 1)
	sub := h.carts.Subscribe(cartID, func() {
		select {
		case notify <- struct{}{}:
		default:
		}
	})
	defer sub.Unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	keepAlive := time.NewTicker(keepAliveInterval)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debug("cart event stream closed")
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": ping\n\n")
			flusher.Flush()
		case <-notify:
			items := h.carts.Items(ctx, cartID)
			data, err := json.Marshal(cartUpdatedEvent{
				Count: cart.CountOf(items),
				Total: cart.TotalOf(items),
			})
			if err != nil {
				log.WithError(err).Error("failed to encode cart event")
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", cart.EventCartUpdated, data)
			flusher.Flush()
		}
	}
}
