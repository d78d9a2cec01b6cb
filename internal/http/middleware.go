package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/phone_store/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	CartCookieName = "cart_id"
	cartCookieTTL  = 30 * 24 * time.Hour
)

type cartIDKey struct{}

// RequestIDMiddleware puts the request id on the context used by the logger
// and echoes it back to the client.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = middleware.GetReqID(r.Context())
		}
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := logger.ContextWithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CartSessionMiddleware ties every request to a cart. Visitors without a
// valid cart cookie get a fresh one.
func CartSessionMiddleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var cartID string
			if c, err := r.Cookie(CartCookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					cartID = c.Value
				}
			}

			if cartID == "" {
				cartID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     CartCookieName,
					Value:    cartID,
					Path:     "/",
					MaxAge:   int(cartCookieTTL.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := context.WithValue(r.Context(), cartIDKey{}, cartID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func cartIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(cartIDKey{}).(string); ok {
		return id
	}
	return ""
}
