package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"fundraiser/db/migrations"
	httpadapter "fundraiser/internal/adapter/http"
	"fundraiser/internal/adapter/memory"
	"fundraiser/internal/adapter/postgres"
	redisadapter "fundraiser/internal/adapter/redis"
	"fundraiser/internal/adapter/usecase"
	"fundraiser/internal/config"
	"fundraiser/internal/config/configs"
	"fundraiser/internal/core/domain"
	"fundraiser/internal/core/port"
	"fundraiser/internal/db"
	"fundraiser/internal/relay"
)

// main is the entry point of the fundraiser ledger service. It loads
// configuration, selects the storage backend (optionally running database
// migrations), wires the ledger use case and the notification relay, then
// starts the HTTP server. On receiving a termination signal it gracefully
// shuts down the server and stops the relay.
func main() {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(cfg.Log.NewHandler(os.Stdout)).With(slog.String("env", cfg.Env))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err = run(ctx, cfg, logger); err != nil {
		logger.Error("fatal error", slog.Any("error", err))
		os.Exit(1)
	}
}

// relayConsumer names the relay's cursor in the store.
const relayConsumer = "relay"

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	var store port.Store
	switch cfg.Store.Driver {
	case configs.DriverPostgres:
		if cfg.Psql.RunMigrations {
			from, err := db.Migrate(cfg.Psql.Addr.String())
			if err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			logger.Info("schema migrated", slog.Uint64("from", uint64(from)), slog.Uint64("to", uint64(migrations.Version)))
		}
		pool, err := db.NewPostgresPool(ctx, cfg.Psql)
		if err != nil {
			return fmt.Errorf("database connection: %w", err)
		}
		defer pool.Close()
		store = postgres.NewStore(pool)
	default:
		logger.Warn("using in-memory store, state is lost on restart")
		store = memory.NewStore()
	}

	svc := usecase.NewFundraiserUseCase(store, logger)
	if cfg.Store.SeedDemo {
		if err := db.Seed(ctx, svc); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		logger.Info("demo campaigns seeded")
	}

	denom := domain.Denomination{Decimals: cfg.Ledger.Decimals}
	hub := httpadapter.NewHub(denom, logger)
	publishers := []port.EventPublisher{relay.NewLogPublisher(logger), hub}
	if cfg.Redis.Enabled() {
		client, err := redisadapter.NewClient(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer client.Close()
		publishers = append(publishers, redisadapter.NewStreamPublisher(client, cfg.Redis.Stream, cfg.Redis.MaxLen))
		logger.Info("publishing events to redis", slog.String("stream", cfg.Redis.Stream))
	}
	rl := relay.New(svc, publishers, cfg.Relay.Interval, cfg.Relay.BatchSize, logger)
	if err := rl.Resume(ctx, relay.NewStoreCheckpoint(store, relayConsumer)); err != nil {
		return err
	}
	logger.Info("relay resumed", slog.Int64("cursor", rl.Cursor()))

	handler := httpadapter.NewHandler(svc, hub, denom, logger)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: handler.Router(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return rl.Run(gctx)
	})
	g.Go(func() error {
		logger.Info("server listening", slog.Int("port", int(cfg.HTTP.Port)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", slog.Any("error", err))
			return err
		}
		logger.Info("server gracefully stopped")
		return nil
	})
	return g.Wait()
}
