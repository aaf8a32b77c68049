// @title           Identity Service API
// @version         1.0
// @description     User registration, bearer-token authentication and organisation membership.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
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

	"github.com/google/uuid"

	"github.com/orgauth/identity-service/internal/api"
	"github.com/orgauth/identity-service/internal/api/handler"
	"github.com/orgauth/identity-service/internal/core/ports"
	"github.com/orgauth/identity-service/internal/core/service"
	"github.com/orgauth/identity-service/internal/infrastructure/db/redis"
	"github.com/orgauth/identity-service/internal/infrastructure/queue"
	"github.com/orgauth/identity-service/internal/infrastructure/security"
	"github.com/orgauth/identity-service/internal/pkg/config"
	"github.com/orgauth/identity-service/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "identity-service: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "identity-service",
	})

	codec, err := security.NewJWTCodec(security.TokenConfig{
		Secret:     cfg.Auth.JWTSecret,
		Algorithm:  cfg.Auth.JWTAlgorithm,
		DefaultTTL: cfg.Auth.AccessTokenTTL(),
	})
	if err != nil {
		return err
	}

	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	// Unknown-email logins verify against this so they cost as much as real ones.
	dummyHash, err := hasher.Hash(uuid.NewString())
	if err != nil {
		return fmt.Errorf("dummy hash: %w", err)
	}

	// Workers outlive the signal context so in-flight logins can drain.
	hashPool := queue.NewHashPool(cfg.Auth.HashWorkers, hasher, logger.Named("hash_pool"))
	hashPool.Start(context.Background())
	defer hashPool.Close()

	st, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer st.close()
	log.Info().Str("driver", cfg.StoreDriver).Msg("store connected")

	checks := map[string]handler.DependencyCheck{cfg.StoreDriver: st.ping}

	var limiter ports.LoginLimiter
	if cfg.Auth.LoginLimitEnabled() {
		rdb, err := redis.Connect(ctx, redis.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()

		limiter = redis.NewLoginLimiter(rdb, cfg.Auth.LoginMaxAttempts, cfg.Auth.LoginWindow)
		checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, rdb, 0) }
		log.Info().Int("max_attempts", cfg.Auth.LoginMaxAttempts).Dur("window", cfg.Auth.LoginWindow).Msg("login limiter enabled")
	}

	authService := service.NewAuthService(service.AuthServiceDeps{
		Users:         st.users,
		Organisations: st.orgs,
		Transactor:    st.tx,
		Hasher:        hashPool,
		Tokens:        codec,
		Limiter:       limiter,
		DummyHash:     dummyHash,
	}, logger.Named("auth"))

	router := api.NewRouter(api.Dependencies{
		Auth:          authService,
		Resolver:      service.NewIdentityResolver(codec, st.users, logger.Named("identity")),
		Users:         service.NewUserService(st.users),
		Organisations: service.NewOrganisationService(st.orgs, st.users, st.tx, logger.Named("organisations")),
		HealthChecks:  checks,
	}, log)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("http server listening")
		if err := router.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutdown signal received")
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := router.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}
