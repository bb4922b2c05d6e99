package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"

	"github.com/fanvest/gateway/internal/api"
	"github.com/fanvest/gateway/internal/core/ports"
	"github.com/fanvest/gateway/internal/infrastructure/authclient"
	"github.com/fanvest/gateway/internal/infrastructure/config"
	redisdb "github.com/fanvest/gateway/internal/infrastructure/db/redis"
	"github.com/fanvest/gateway/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// Verification cache is optional; the gateway runs fine without Redis.
	var rdb *redis.Client
	var verifier ports.TokenVerifier = authclient.New(cfg.Services.Auth, cfg.Verify.Timeout, log)
	if cfg.Redis.Addr != "" {
		client, err := redisdb.Connect(context.Background(), cfg.Redis, cfg.Verify.Timeout)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer client.Close()
		verifier = authclient.NewCached(verifier, redisdb.NewIdentityCache(client, cfg.Verify.CacheTTL), log)
		rdb = client
	}

	e, err := api.NewRouter(api.RouterOptions{
		Config:   cfg,
		Verifier: verifier,
		Redis:    rdb,
		Log:      log,
		Metrics:  prometheus.DefaultRegisterer,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build router")
	}

	go func() {
		addr := ":" + cfg.Port
		var err error
		if cfg.Env == "production" && cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "" {
			log.Info().Str("addr", addr).Msg("gateway listening with TLS")
			err = e.StartTLS(addr, cfg.TLS.CertFile, cfg.TLS.KeyFile)
		} else {
			log.Info().Str("addr", addr).Msg("gateway listening")
			err = e.Start(addr)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
