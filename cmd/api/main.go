// Command api serves the session authentication HTTP API.
//
// @title                       Session Auth API
// @version                     1.0
// @description                 Single-session bearer token authentication.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/sessionguard/auth-api/internal/api"
	"github.com/sessionguard/auth-api/internal/api/handler"
	"github.com/sessionguard/auth-api/internal/core/ports"
	"github.com/sessionguard/auth-api/internal/core/service"
	"github.com/sessionguard/auth-api/internal/infrastructure/config"
	"github.com/sessionguard/auth-api/internal/infrastructure/db/memory"
	mongodb "github.com/sessionguard/auth-api/internal/infrastructure/db/mongo"
	"github.com/sessionguard/auth-api/internal/infrastructure/db/postgres"
	redisdb "github.com/sessionguard/auth-api/internal/infrastructure/db/redis"
	"github.com/sessionguard/auth-api/internal/infrastructure/i18n"
	"github.com/sessionguard/auth-api/internal/infrastructure/password"
	"github.com/sessionguard/auth-api/internal/infrastructure/queue"
	"github.com/sessionguard/auth-api/internal/infrastructure/token"
	"github.com/sessionguard/auth-api/pkg/logger"
)

const (
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "session-auth",
	})

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
	log.Info().Msg("server stopped")
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// An undecodable secret is fatal at startup, never per request.
	codec, err := token.NewCodec(cfg.JWTSecret, token.WithTTL(cfg.TokenTTL))
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	checks := map[string]handler.Check{}
	var cleanups []func()
	defer func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}()

	// --- Credential store and audit trail ---
	var (
		store     ports.CredentialStore
		eventRepo ports.SessionEventRepository
	)
	switch cfg.CredentialDriver {
	case config.DriverMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:      cfg.Mongo.URI,
			Database: cfg.Mongo.Database,
			Timeout:  connectTimeout,
		})
		if err != nil {
			return err
		}
		cleanups = append(cleanups, func() { _ = client.Disconnect(context.Background()) })
		if err := mongodb.EnsureIndexes(ctx, db); err != nil {
			return err
		}
		store = mongodb.NewPrincipalRepository(db)
		eventRepo = mongodb.NewSessionEventRepository(db)
		checks["mongodb"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
	default:
		log.Warn().Msg("using in-memory credential store; principals are lost on restart")
		store = memory.NewCredentialStore()
		eventRepo = memory.NewEventLog()
	}

	// --- Session ledger ---
	var ledger ports.SessionLedger
	switch cfg.LedgerDriver {
	case config.DriverPostgres:
		pool, err := postgres.Connect(ctx, postgres.Config{
			URL:      cfg.Postgres.URL,
			MaxConns: cfg.Postgres.MaxConns,
			Timeout:  connectTimeout,
		})
		if err != nil {
			return err
		}
		cleanups = append(cleanups, pool.Close)
		if err := postgres.EnsureSchema(ctx, pool); err != nil {
			return err
		}
		ledger = postgres.NewLedger(pool)
		checks["postgres"] = pool.Ping
	default:
		log.Warn().Msg("using in-memory session ledger; sessions are lost on restart")
		ledger = memory.NewLedger()
	}

	if cfg.Redis.Addr != "" {
		rdb, err := redisdb.Connect(ctx, redisdb.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Timeout:  connectTimeout,
		})
		if err != nil {
			return err
		}
		cleanups = append(cleanups, func() { _ = rdb.Close() })
		ledger = redisdb.NewLedgerCache(ledger, rdb, cfg.Redis.CacheTTL, log)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	// --- Audit dispatcher ---
	dispatcher := queue.NewDispatcher(cfg.AuditWorkers, eventRepo, log)
	dispatcher.Start(ctx)

	// --- Core ---
	catalog := i18n.NewCatalog(cfg.DefaultLocale)
	authService := service.NewAuthService(
		store,
		ledger,
		codec,
		password.NewBcryptHasher(cfg.BcryptCost),
		catalog,
		log,
		service.WithEventSink(dispatcher),
	)

	e := api.NewRouter(api.Dependencies{
		AuthService:  authService,
		Codec:        codec,
		Store:        store,
		Ledger:       ledger,
		Catalog:      catalog,
		HealthChecks: checks,
		Logger:       log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
