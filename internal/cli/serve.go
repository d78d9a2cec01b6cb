package cli

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	apphttp "github.com/fjod/phone_store/internal/http"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the storefront HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), a)
		},
	}
}

// runServe blocks until ctx is cancelled, then drains in-flight requests.
func runServe(ctx context.Context, a *app) error {
	svc, err := a.services(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.close(); err != nil {
			a.log.WithError(err).Error("failed to release resources")
		}
	}()

	// accept W3C trace context from upstream proxies so log lines carry their trace ids
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	router := apphttp.NewRouter(apphttp.RouterConfig{
		Carts:          svc.carts,
		Catalog:        svc.catalog,
		Checkout:       svc.checkout,
		Log:            a.log,
		RequestTimeout: a.cfg.RequestTimeout,
		SecureCookies:  a.cfg.IsProduction(),
	})

	// request contexts derive from baseCtx so open event streams end on shutdown
	baseCtx, cancelBase := context.WithCancel(ctx)
	defer cancelBase()

	srv := &http.Server{
		Addr:              ":" + a.cfg.HTTPPort,
		Handler:           otelhttp.NewHandler(router, serviceName),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
		// no WriteTimeout: the cart event stream stays open
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}
	srv.RegisterOnShutdown(cancelBase)

	serveErr := make(chan error, 1)
	go func() {
		a.log.WithField("port", a.cfg.HTTPPort).Info("storefront starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	a.log.Info("server exited")
	return nil
}
