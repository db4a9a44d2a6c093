// Package app wires configuration, storage, sessions and the HTTP server.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/foodman/db"
	"github.com/xenking/foodman/internal/chat"
	"github.com/xenking/foodman/internal/domain/catalog"
	"github.com/xenking/foodman/internal/handler"
	"github.com/xenking/foodman/internal/notify"
	"github.com/xenking/foodman/internal/session"
	"github.com/xenking/foodman/internal/storage"
	"github.com/xenking/foodman/internal/storage/postgres"
	"github.com/xenking/foodman/internal/storage/redis"
	"github.com/xenking/foodman/pkg/health"
	"github.com/xenking/foodman/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("catalog", cfg.Catalog.Driver),
	)

	// PostgreSQL pool + migrations, only when a component uses it.
	var pool *pgxpool.Pool
	if cfg.needsPostgres() {
		var err error
		if pool, err = postgres.NewPool(ctx, cfg.Storage.DatabaseURL); err != nil {
			return errors.Wrap(err, "create db pool")
		}
		defer pool.Close()

		if err := postgres.RunMigrations(ctx, pool); err != nil {
			return errors.Wrap(err, "run migrations")
		}
	}

	kv, closeKV, err := openStorage(cfg.Storage, pool)
	if err != nil {
		return errors.Wrap(err, "open storage")
	}
	defer func() {
		if err := closeKV(); err != nil {
			lg.Error("Close storage", zap.Error(err))
		}
	}()
	if err := kv.Ping(ctx); err != nil {
		return errors.Wrap(err, "ping storage")
	}

	products, err := openCatalog(cfg.Catalog, pool)
	if err != nil {
		return errors.Wrap(err, "open catalog")
	}

	clock := clockwork.NewRealClock()

	// Health check service.
	healthSvc := health.New(clock)
	healthSvc.AddReadinessCheck("storage", 5*time.Second, health.PingCheck(kv))
	healthSvc.AddLivenessCheck("goroutines", time.Second, health.GoroutineCountCheck(10000))
	healthSvc.Start(ctx, 10*time.Second)

	// Sessions.
	chatClient := chat.NewClient(chat.ClientConfig{
		WebhookURL:     cfg.Chat.WebhookURL,
		Route:          cfg.Chat.Route,
		Timeout:        cfg.Chat.Timeout,
		TracerProvider: m.TracerProvider(),
	})
	sessions := session.NewManager(kv, chatClient, session.Config{
		CartKey:       cfg.Storage.CartKey,
		IdleTimeout:   cfg.Session.IdleTimeout,
		CheckoutDelay: cfg.Checkout.Delay,
		Notify: notify.Config{
			ShowDelay: cfg.Notify.ShowDelay,
			Display:   cfg.Notify.Display,
			Removal:   cfg.Notify.Removal,
		},
	}, clock, lg.Named("session"))

	// HTTP handlers.
	h, err := handler.New(ctx, handler.Config{
		ChatLimit: httpmiddleware.RateLimitConfig{
			Max:    cfg.RateLimit.Max,
			Window: cfg.RateLimit.Window,
			Clock:  clock,
		},
		Meter: m.MeterProvider(),
	}, products, sessions)
	if err != nil {
		return errors.Wrap(err, "create handler")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /livez", healthSvc.LiveEndpoint)
	mux.HandleFunc("GET /readyz", healthSvc.ReadyEndpoint)
	h.Register(mux)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(mux,
			httpmiddleware.RequestID(),
			httpmiddleware.InjectLogger(zctx.From(ctx)),
			httpmiddleware.Recovery(),
			httpmiddleware.Instrument("foodman", m),
			httpmiddleware.LogRequests(),
		),
	}
	healthSvc.SetReady(true)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sessions.Run(gctx, cfg.Session.SweepInterval)
	})
	g.Go(func() error {
		// Graceful shutdown: flip readiness, drain, then stop.
		<-gctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		sessions.Wait()
		return nil
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	return g.Wait()
}

// openStorage returns the durable KV selected by cfg and its closer.
func openStorage(cfg StorageConfig, pool *pgxpool.Pool) (storage.KV, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Driver {
	case DriverMemory:
		return storage.NewMemory(), noop, nil
	case DriverFile:
		kv, err := storage.NewFile(cfg.Dir)
		if err != nil {
			return nil, nil, err
		}
		return kv, noop, nil
	case DriverRedis:
		kv, err := redis.Dial(cfg.RedisURL, cfg.RedisPrefix)
		if err != nil {
			return nil, nil, err
		}
		return kv, kv.Close, nil
	case DriverPostgres:
		return postgres.NewKV(pool), noop, nil
	default:
		return nil, nil, errors.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// openCatalog returns the menu selected by cfg.
func openCatalog(cfg CatalogConfig, pool *pgxpool.Pool) (catalog.Repository, error) {
	switch cfg.Driver {
	case DriverStatic:
		products, err := catalog.ParseMenu(db.Menu)
		if err != nil {
			return nil, errors.Wrap(err, "parse embedded menu")
		}
		return catalog.NewStatic(products)
	case DriverPostgres:
		return postgres.NewCatalog(pool), nil
	default:
		return nil, errors.Errorf("unknown catalog driver %q", cfg.Driver)
	}
}
