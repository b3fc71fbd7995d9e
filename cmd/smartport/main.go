// @title           Smart Port Management API
// @version         1.0
// @description     Identity and role-based access control for the Port La Goulette Smart Port Management System.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lagoulette/smartport/internal/api"
	"github.com/lagoulette/smartport/internal/core/ports"
	"github.com/lagoulette/smartport/internal/core/service"
	"github.com/lagoulette/smartport/internal/infrastructure/config"
	"github.com/lagoulette/smartport/internal/infrastructure/db"
	"github.com/lagoulette/smartport/internal/infrastructure/db/redis"
	"github.com/lagoulette/smartport/internal/infrastructure/security"
	"github.com/lagoulette/smartport/pkg/logger"
)

const (
	initTimeout     = 15 * time.Second
	connectTimeout  = 10 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := run(); err != nil {
		// logger may not be initialised yet
		l := zerolog.New(os.Stderr).With().Timestamp().Logger()
		l.Fatal().Err(err).Msg("smartport exited")
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
		Pretty:  !cfg.IsProduction(),
		Service: "smartport",
	})

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	store, err := db.Open(initCtx, cfg.DatabaseURL, db.Options{
		MongoDatabase:  cfg.Mongo.Database,
		ConnectTimeout: connectTimeout,
	}, logger.Component("store"))
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := store.Close(closeCtx); err != nil {
			log.Warn().Err(err).Msg("closing credential store")
		}
	}()

	var (
		rdb      *goredis.Client
		throttle ports.LoginThrottle
	)
	if cfg.Redis.Addr != "" {
		rdb, err = redis.Connect(initCtx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return err
		}
		defer rdb.Close()
		throttle = redis.NewLoginThrottle(rdb, cfg.Auth.LoginMaxFailures, cfg.Auth.LoginFailureWindow)
		log.Info().Str("addr", cfg.Redis.Addr).Int("max_failures", cfg.Auth.LoginMaxFailures).Msg("login throttling enabled")
	} else {
		log.Warn().Msg("REDIS_ADDR not set, login throttling disabled")
	}

	tokens, err := security.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	hasher := security.NewBcryptHasher(cfg.Auth.BcryptCost)
	guard := service.NewAccessGuard(store.Identities, logger.Component("access_guard"))
	identities := service.NewIdentityService(store.Identities, hasher, tokens, guard, throttle, logger.Component("identity"))

	if cfg.Bootstrap.AdminUsername != "" {
		if err := identities.EnsureAdmin(initCtx, cfg.Bootstrap.AdminUsername, cfg.Bootstrap.AdminPassword); err != nil {
			return err
		}
	}

	e := api.NewRouter(api.Deps{
		Identities: identities,
		Guard:      guard,
		Tokens:     tokens,
		Store:      store.Identities,
		StoreName:  string(store.Kind),
		Redis:      rdb,
		Logger:     logger.Component("http"),
	})
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("store", string(store.Kind)).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
		return err
	}
	return nil
}
