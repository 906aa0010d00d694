package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/xenking/scentcart/internal/engine"
	"github.com/xenking/scentcart/internal/handler"
	"github.com/xenking/scentcart/internal/prescreen"
	"github.com/xenking/scentcart/internal/remote/cartapi"
	"github.com/xenking/scentcart/internal/remote/couponapi"
	"github.com/xenking/scentcart/internal/session"
	"github.com/xenking/scentcart/internal/snapshot/gormstore"
	"github.com/xenking/scentcart/pkg/health"
	"github.com/xenking/scentcart/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the gateway server, and handles
// graceful shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// Snapshot store: local write-through cache of settled cart state.
	snapshots, err := gormstore.Open(cfg.SnapshotDBPath)
	if err != nil {
		return errors.Wrap(err, "open snapshot store")
	}

	// Coupon prescreen filter is optional; without it every coupon code
	// goes straight to the remote validator.
	var codeFilter *prescreen.Filter
	if cfg.PrescreenPath != "" {
		codeFilter, err = prescreen.Load(cfg.PrescreenPath)
		if err != nil {
			return errors.Wrap(err, "load coupon prescreen filter")
		}
		lg.Info("Coupon prescreen filter loaded", zap.String("path", cfg.PrescreenPath))
	}

	// Remote service clients, instrumented with the app's telemetry.
	transport := otelhttp.NewTransport(http.DefaultTransport,
		otelhttp.WithTracerProvider(m.TracerProvider()),
		otelhttp.WithMeterProvider(m.MeterProvider()),
	)
	cartClient, err := cartapi.New(cartapi.Config{
		BaseURL:   cfg.CartServiceURL,
		Timeout:   cfg.Remote.CartTimeout,
		Transport: transport,
	})
	if err != nil {
		return errors.Wrap(err, "create cart client")
	}
	couponClient, err := couponapi.New(couponapi.Config{
		BaseURL:   cfg.CouponServiceURL,
		Timeout:   cfg.Remote.CouponTimeout,
		Transport: transport,
	})
	if err != nil {
		return errors.Wrap(err, "create coupon client")
	}

	// One engine per session, evicted after the idle TTL.
	sessions := session.NewManager(func(sessionID string) (*engine.Engine, error) {
		return engine.New(engine.Config{
			SessionID: sessionID,
			Cart:      cartClient,
			Coupons:   couponClient,
			Snapshots: snapshots,
			Prescreen: enginePrescreen(codeFilter),
		})
	}, cfg.SessionTTL)
	go sessions.Run(ctx)

	// Health check service.
	healthSvc := health.New()
	healthSvc.AddReadinessCheck("snapshot-db", 5*time.Second, snapshots.Ping)
	healthSvc.SetReady(true)

	h := handler.NewHandler(sessions)

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("/readyz", healthSvc.ReadyEndpoint)
	mux.Handle("/", h.Routes())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				Origins:     cfg.CORS.Origins,
				Headers:     []string{"Content-Type", "X-Session-ID"},
				Credentials: cfg.CORS.AllowCredentials,
				MaxAge:      86400,
			}),
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.LogRequests(),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}

// enginePrescreen adapts an optional filter to the engine's interface
// without handing it a typed-nil value.
func enginePrescreen(f *prescreen.Filter) engine.CodePrescreen {
	if f == nil {
		return nil
	}
	return f
}
