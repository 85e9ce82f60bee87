package main

import (
	"context"
	"errors"
	"fmt"
	nethttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/suchimauz/clinic-availability-engine/internal/adapters/in/http"
	"github.com/suchimauz/clinic-availability-engine/internal/adapters/in/rabbitmq"
	"github.com/suchimauz/clinic-availability-engine/internal/adapters/out/aidbox"
	"github.com/suchimauz/clinic-availability-engine/internal/adapters/out/cache"
	"github.com/suchimauz/clinic-availability-engine/internal/adapters/out/postgres"
	"github.com/suchimauz/clinic-availability-engine/internal/config"
	"github.com/suchimauz/clinic-availability-engine/internal/core/ports/out"
	"github.com/suchimauz/clinic-availability-engine/internal/core/services/slot_generator_service"
)

const shutdownTimeout = 10 * time.Second

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the change events listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func runServer() error {
	cfg, mainLogger, err := bootstrap()
	if err != nil {
		return err
	}
	defer mainLogger.Sync()
	logger := mainLogger.WithModule("Main")

	logger.Info("app.starting", out.LogFields{
		"version":         cfg.App.Version,
		"env":             cfg.App.Env,
		"timezone":        cfg.App.Timezone,
		"storeBackend":    cfg.Store.Backend,
		"rabbitmqEnabled": cfg.RabbitMQ.Enabled,
		"cacheEnabled":    cfg.Cache.Enabled,
		"cacheBackend":    cfg.Cache.Backend,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Настройка Gin в зависимости от окружения
	if cfg.IsNotLocal() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Инициализация адаптеров
	storeAdapter, closeStore, err := newStore(ctx, cfg, mainLogger)
	if err != nil {
		logger.Error("app.store.init_failed", out.LogFields{
			"error": err.Error(),
		})
		return err
	}
	defer closeStore()

	var cacheAdapter out.CachePort
	if cfg.Cache.Enabled {
		var closeCache func()
		cacheAdapter, closeCache, err = newCache(ctx, cfg, mainLogger)
		if err != nil {
			logger.Error("app.cache.init_failed", out.LogFields{
				"error": err.Error(),
			})
			return err
		}
		defer closeCache()
	}

	// Инициализация сервиса
	slotGeneratorService := slot_generator_service.NewSlotGeneratorService(
		storeAdapter,
		cacheAdapter,
		cfg,
		mainLogger,
	)

	// Настройка HTTP сервера
	router := gin.New()
	router.Use(gin.Recovery())
	controller := http.NewSlotGeneratorController(
		slotGeneratorService,
		cfg,
		mainLogger,
	)
	controller.RegisterRoutes(router)

	// Настройка RabbitMQ слушателя только если он включен
	if cfg.RabbitMQ.Enabled {
		listener, err := rabbitmq.NewInvalidationListener(
			slotGeneratorService,
			cfg,
			mainLogger,
		)
		if err != nil {
			logger.Error("app.rabbitmq.init_failed", out.LogFields{
				"error": err.Error(),
			})
			return err
		}

		if err := listener.Start(ctx); err != nil {
			logger.Error("app.rabbitmq.start_failed", out.LogFields{
				"error": err.Error(),
			})
			return err
		}

		defer func() {
			if err := listener.Stop(); err != nil {
				logger.Error("app.rabbitmq.stop_failed", out.LogFields{
					"error": err.Error(),
				})
			}
		}()
	}

	server := &nethttp.Server{
		Addr:    cfg.HTTP.Host + ":" + cfg.HTTP.Port,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("app.http.starting", out.LogFields{
			"host": cfg.HTTP.Host,
			"port": cfg.HTTP.Port,
		})

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		logger.Info("app.shutdown.initiated", out.LogFields{
			"reason": context.Cause(ctx).Error(),
		})
	case err := <-serverErr:
		if err != nil {
			logger.Error("app.http.failed", out.LogFields{
				"error": err.Error(),
			})
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("app.http.shutdown_failed", out.LogFields{
			"error": err.Error(),
		})
		return err
	}

	logger.Info("app.shutdown.completed", out.LogFields{})
	return nil
}

func newStore(ctx context.Context, cfg *config.Config, logger out.LoggerPort) (out.StorePort, func(), error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		pool, err := postgres.Open(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, nil, err
		}
		return postgres.NewStoreAdapter(pool, logger), pool.Close, nil
	case config.StoreBackendAidbox:
		return aidbox.NewAidboxAdapter(cfg, logger), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
}

func newCache(ctx context.Context, cfg *config.Config, logger out.LoggerPort) (out.CachePort, func(), error) {
	switch cfg.Cache.Backend {
	case config.CacheBackendRedis:
		adapter, err := cache.NewRedisCacheAdapter(ctx, cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return adapter, func() { adapter.Close() }, nil
	case config.CacheBackendLRU:
		adapter, err := cache.NewLRUCacheAdapter(cfg, logger)
		if err != nil {
			return nil, nil, err
		}
		return adapter, func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache.Backend)
}
