package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/huettenzauber/kiosk/api/controllers"
	"github.com/huettenzauber/kiosk/api/routes"
	"github.com/huettenzauber/kiosk/internal/bills"
	"github.com/huettenzauber/kiosk/internal/cart"
	"github.com/huettenzauber/kiosk/internal/catalog"
	"github.com/huettenzauber/kiosk/internal/checkout"
	"github.com/huettenzauber/kiosk/internal/settings"
	"github.com/huettenzauber/kiosk/pkg/backend"
	"github.com/huettenzauber/kiosk/pkg/broadcast"
	"github.com/huettenzauber/kiosk/pkg/config"
	"github.com/huettenzauber/kiosk/pkg/db"
	"github.com/huettenzauber/kiosk/pkg/instance"
	"github.com/huettenzauber/kiosk/pkg/logger"
	"github.com/huettenzauber/kiosk/pkg/metrics"
	"github.com/huettenzauber/kiosk/pkg/migrate"
	"github.com/huettenzauber/kiosk/pkg/redis"
	"github.com/huettenzauber/kiosk/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "kiosk"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	source := instance.ID(cfg.Device.InstanceID)
	logg = logger.New(logger.Options{
		ServiceName: "kiosk",
		Origin:      cfg.Device.Origin,
		InstanceID:  source,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
		Format:      cfg.App.LogFormat,
	})

	if err := run(cfg, logg, source); err != nil {
		logg.Error(context.Background(), "kiosk exited with error", err)
		os.Exit(1)
	}
}

// run wires the device store, broadcast channel and services, then serves
// HTTP until the process is signalled.
func run(cfg *config.Config, logg *logger.Logger, source string) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithField(ctx, "env", cfg.App.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	readiness := map[string]controllers.Pinger{}
	var closers []func() error
	defer func() {
		var closeErr error
		for i := len(closers) - 1; i >= 0; i-- {
			closeErr = multierr.Append(closeErr, closers[i]())
		}
		if closeErr != nil {
			logg.Error(ctx, "error closing resources", closeErr)
		}
	}()

	var redisClient *redis.Client
	if cfg.Storage.Driver == config.StorageDriverRedis || cfg.Broadcast.Driver == config.BroadcastDriverRedis {
		redisClient, err = redis.New(ctx, cfg.Redis, cfg.Device.Namespace, logg)
		if err != nil {
			return err
		}
		closers = append(closers, redisClient.Close)
		readiness["redis"] = redisClient
	}

	var store storage.Store
	switch cfg.Storage.Driver {
	case config.StorageDriverRedis:
		store, err = storage.NewRedisStore(redisClient, cfg.Device.Origin)
		if err != nil {
			return err
		}
	default:
		dbClient, dbErr := db.New(ctx, cfg.DB, logg)
		if dbErr != nil {
			return dbErr
		}
		closers = append(closers, dbClient.Close)
		readiness["db"] = dbClient

		if err := migrate.MaybeAutoRun(ctx, cfg, logg, dbClient); err != nil {
			return err
		}
		store, err = storage.NewSQLStore(dbClient.DB(), cfg.Device.Origin)
		if err != nil {
			return err
		}
	}

	var channel broadcast.Channel
	switch cfg.Broadcast.Driver {
	case config.BroadcastDriverRedis:
		channel, err = broadcast.NewRedisChannel(redisClient, cfg.Device.Origin, cfg.Broadcast.BufferSize, logg)
		if err != nil {
			return err
		}
	default:
		hub := broadcast.NewHub(cfg.Broadcast.BufferSize)
		closers = append(closers, hub.Close)
		channel = hub
	}

	settingsService, err := settings.NewService(store, logg)
	if err != nil {
		return err
	}

	client, err := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithMetrics(metrics.NewBackendMetrics(reg)),
	)
	if err != nil {
		return err
	}

	c, err := cart.New(ctx, cart.Options{
		Store:         store,
		Channel:       channel,
		Source:        source,
		Logger:        logg,
		Metrics:       metrics.NewCartMetrics(reg),
		DepositPrices: settingsService,
	})
	if err != nil {
		return err
	}
	closers = append(closers, func() error {
		c.Close()
		return nil
	})
	go func() {
		if err := c.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logg.Error(ctx, "cart listener stopped", err)
		}
	}()

	checkoutService, err := checkout.NewService(c, client, logg,
		checkout.WithLocation(cfg.Checkout.Location()),
		checkout.WithMetrics(metrics.NewCheckoutMetrics(reg)),
	)
	if err != nil {
		return err
	}

	catalogService, err := catalog.NewService(client, logg)
	if err != nil {
		return err
	}
	if _, err := catalogService.Reload(ctx); err != nil {
		logg.Warn(logg.WithField(ctx, "error", err.Error()), "initial catalog load failed")
	}

	billsService, err := bills.NewService(client, catalogService, logg)
	if err != nil {
		return err
	}

	router := routes.NewRouter(
		cfg,
		logg,
		readiness,
		promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		c,
		checkoutService,
		catalogService,
		billsService,
		settingsService,
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Event streams end with the process context.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", server.Addr), "starting kiosk server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "shutting down kiosk server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
