// Package main is the entry point for the Courier messaging server.
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/lkral/courier/internal/cache/memory"
	rediscache "github.com/lkral/courier/internal/cache/redis"
	"github.com/lkral/courier/internal/config"
	"github.com/lkral/courier/internal/handler"
	"github.com/lkral/courier/internal/pkg/logging"
	"github.com/lkral/courier/internal/repository"
	"github.com/lkral/courier/internal/repository/postgres"
	"github.com/lkral/courier/internal/repository/sqlite"
	"github.com/lkral/courier/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := logging.New(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting courier server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	stores, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer stores.close()

	userRepo := stores.users
	if cfg.Cache.Enabled {
		cache, closeCache, err := openCache(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeCache()
		userRepo = repository.NewCachedUserRepository(userRepo, cache, cfg.Cache.TTL, logger)
	}

	userService := service.NewUserService(userRepo, logger)
	messageService := service.NewMessageService(userRepo, stores.messages, logger)

	var metrics *handler.Metrics
	if cfg.Metrics.Enabled {
		metrics = handler.NewMetrics()
	}

	router := handler.NewRouter(handler.RouterConfig{
		AccountHandler: handler.NewAccountHandler(userService, logger),
		MessageHandler: handler.NewMessageHandler(messageService, logger),
		Metrics:        metrics,
		MetricsPath:    cfg.Metrics.Path,
		DB:             stores.health,
		Logger:         logger,
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("forced shutdown")
		return err
	}

	logger.Info().Msg("server stopped")
	return nil
}

// stores bundles the driver-specific repositories behind the shared
// interfaces.
type stores struct {
	users    repository.UserRepository
	messages repository.MessageRepository
	health   repository.DatabaseHealth
	close    func()
}

func openStores(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*stores, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		return &stores{
			users:    postgres.NewUserRepository(db),
			messages: postgres.NewMessageRepository(db),
			health:   db,
			close:    func() { _ = db.Close() },
		}, nil
	default:
		dbCfg := sqlite.DefaultConfig(cfg.Database.Path)
		dbCfg.JournalMode = cfg.Database.JournalMode
		dbCfg.BusyTimeout = cfg.Database.BusyTimeout
		db, err := sqlite.NewDB(ctx, dbCfg, logger)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return &stores{
			users:    sqlite.NewUserRepository(db),
			messages: sqlite.NewMessageRepository(db),
			health:   db,
			close:    func() { _ = db.Close() },
		}, nil
	}
}

func openCache(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (repository.Cache, func(), error) {
	if cfg.Redis.Enabled {
		cache, err := rediscache.NewCache(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, nil, err
		}
		return cache, func() { _ = cache.Close() }, nil
	}
	cache := memory.NewCache()
	return cache, cache.Stop, nil
}
