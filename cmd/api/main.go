package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/angelmondragon/cinecart/api"
	"github.com/angelmondragon/cinecart/api/controllers"
	"github.com/angelmondragon/cinecart/api/middleware"
	"github.com/angelmondragon/cinecart/api/routes"
	"github.com/angelmondragon/cinecart/internal/address"
	"github.com/angelmondragon/cinecart/internal/cart"
	"github.com/angelmondragon/cinecart/internal/catalog"
	"github.com/angelmondragon/cinecart/internal/checkout"
	"github.com/angelmondragon/cinecart/internal/favorites"
	"github.com/angelmondragon/cinecart/pkg/config"
	"github.com/angelmondragon/cinecart/pkg/db"
	"github.com/angelmondragon/cinecart/pkg/logger"
	"github.com/angelmondragon/cinecart/pkg/metrics"
	"github.com/angelmondragon/cinecart/pkg/migrate"
	"github.com/angelmondragon/cinecart/pkg/redis"
	"github.com/angelmondragon/cinecart/pkg/storage"
	"github.com/angelmondragon/cinecart/pkg/tmdb"
	"github.com/angelmondragon/cinecart/pkg/viacep"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []io.Closer
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			err = multierr.Append(err, closers[i].Close())
		}
	}()

	pingers := map[string]controllers.Pinger{}

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisClient, err = redis.New(ctx, cfg.Redis, logg)
		if err != nil {
			return err
		}
		closers = append(closers, redisClient)
		pingers["redis"] = redisClient
	}

	store, err := openStore(ctx, cfg, logg, redisClient, pingers, &closers)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	upstream := metrics.NewUpstreamMetrics(reg)

	tmdbClient, err := tmdb.NewClient(cfg.TMDB.APIKey,
		tmdb.WithBaseURL(cfg.TMDB.BaseURL),
		tmdb.WithLanguage(cfg.TMDB.Language),
		tmdb.WithHTTPClient(&http.Client{Timeout: cfg.TMDB.Timeout}),
		tmdb.WithMetrics(upstream),
	)
	if err != nil {
		return err
	}
	viacepClient := viacep.NewClient(
		viacep.WithBaseURL(cfg.ViaCEP.BaseURL),
		viacep.WithHTTPClient(&http.Client{Timeout: cfg.ViaCEP.Timeout}),
		viacep.WithMetrics(upstream),
	)

	catalogService, err := catalog.NewService(catalog.ServiceParams{
		Source:       tmdbClient,
		Logger:       logg,
		ImageBaseURL: cfg.TMDB.ImageBaseURL,
	})
	if err != nil {
		return err
	}
	cartService, err := cart.NewService(cart.ServiceParams{
		Store:   store,
		Catalog: catalogService,
		Logger:  logg,
	})
	if err != nil {
		return err
	}
	favoritesService, err := favorites.NewService(favorites.ServiceParams{
		Store:   store,
		Logger:  logg,
		Options: favorites.Options{RecoverCorrupt: cfg.Storage.RecoverCorruptFavorites},
	})
	if err != nil {
		return err
	}
	addressService := address.NewService(viacepClient, logg)
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Cart:    cartService,
		Address: addressService,
		Logger:  logg,
	})
	if err != nil {
		return err
	}

	var limiter middleware.RateLimiter
	if redisClient != nil {
		limiter = redisClient
	}

	server := api.NewServer(cfg, routes.NewRouter(cfg, logg, routes.Dependencies{
		Catalog:     catalogService,
		Cart:        cartService,
		Favorites:   favoritesService,
		Address:     addressService,
		Checkout:    checkoutService,
		Pingers:     pingers,
		RateLimiter: limiter,
		Gatherer:    reg,
	}))

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":            cfg.App.Env,
		"addr":           server.Addr,
		"storage_driver": cfg.Storage.Driver,
	})
	logg.Info(logCtx, "starting api server")

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	logg.Info(logCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStore builds the collection store for the configured driver.
func openStore(ctx context.Context, cfg *config.Config, logg *logger.Logger, redisClient *redis.Client, pingers map[string]controllers.Pinger, closers *[]io.Closer) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverRedis:
		if redisClient == nil {
			return nil, errors.New("redis storage driver selected but redis is not configured")
		}
		return storage.NewRedis(redisClient, cfg.Storage.SessionTTL), nil
	case config.StorageDriverPostgres, config.StorageDriverSQLite:
		dbClient, err := db.New(ctx, cfg.DB, cfg.Storage, logg)
		if err != nil {
			return nil, err
		}
		*closers = append(*closers, dbClient)
		pingers["database"] = dbClient
		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			return nil, err
		}
		return storage.NewSQL(dbClient.DB()), nil
	default:
		return storage.NewMemory(), nil
	}
}
