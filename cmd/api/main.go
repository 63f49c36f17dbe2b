package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/pawmart/storefront-backend/api/controllers"
	"github.com/pawmart/storefront-backend/api/routes"
	"github.com/pawmart/storefront-backend/internal/auth"
	"github.com/pawmart/storefront-backend/internal/cart"
	"github.com/pawmart/storefront-backend/internal/cartstore"
	"github.com/pawmart/storefront-backend/internal/catalog"
	"github.com/pawmart/storefront-backend/internal/chat"
	"github.com/pawmart/storefront-backend/internal/upstream"
	"github.com/pawmart/storefront-backend/pkg/config"
	"github.com/pawmart/storefront-backend/pkg/db"
	"github.com/pawmart/storefront-backend/pkg/logger"
	"github.com/pawmart/storefront-backend/pkg/metrics"
	"github.com/pawmart/storefront-backend/pkg/migrate"
	"github.com/pawmart/storefront-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "storefront",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	registry := prometheus.NewRegistry()
	storeMetrics := metrics.NewStorefrontMetrics(registry)

	closers := []func() error{}
	closeAll := func() {
		var errs error
		for _, close := range closers {
			errs = multierr.Append(errs, close())
		}
		if errs != nil {
			logg.Error(context.Background(), "error closing dependencies", errs)
		}
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	closers = append(closers, redisClient.Close)

	var dbClient *db.Client
	if cfg.Cart.Backend == config.CartBackendDatabase || cfg.DB.DSN != "" {
		dbClient, err = db.New(context.Background(), cfg.DB, cfg.FeatureFlags.UseSQLite, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap database", err)
			closeAll()
			os.Exit(1)
		}
		closers = append(closers, dbClient.Close)

		if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
			logg.Error(context.Background(), "failed to run dev migrations", err)
			closeAll()
			os.Exit(1)
		}
	}

	upstreamClient, err := upstream.NewClient(cfg.Upstream, logg, storeMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build upstream client", err)
		closeAll()
		os.Exit(1)
	}

	verifier, err := auth.NewVerifier(cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to build session verifier", err)
		closeAll()
		os.Exit(1)
	}

	store, err := cartstore.New(cfg.Cart, redisClient, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build cart store", err)
		closeAll()
		os.Exit(1)
	}

	cartFactory := func(scope, token string) (controllers.CartSession, error) {
		return cart.NewReconciler(cart.Params{
			Scope:        scope,
			SessionToken: token,
			Store:        store,
			Drafts:       upstreamClient,
			Catalog:      upstreamClient,
			Logger:       logg,
			Metrics:      storeMetrics,
		})
	}

	catalogService := catalog.NewService(upstreamClient, redisClient, cfg.Cart.CatalogCacheTTL, logg)
	chatService := chat.NewService(upstreamClient, logg)

	health := map[string]controllers.Pinger{
		"redis":    redisClient,
		"upstream": upstreamClient,
	}
	if dbClient != nil {
		health["database"] = dbClient
	}

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Verifier:    verifier,
		CartFactory: cartFactory,
		Catalog:     catalogService,
		Chat:        chatService,
		SessionAPI:  upstreamClient,
		Health:      health,
		Registry:    registry,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting storefront server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "storefront server stopped unexpectedly", err)
			closeAll()
			os.Exit(1)
		}
	case sig := <-shutdown:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "error shutting down server", err)
		}
	}

	closeAll()
}
