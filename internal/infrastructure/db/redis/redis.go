// Package redis backs the gateway's token verification cache. It is the only
// stateful dependency the gateway has, and an optional one: the gateway runs
// without it, at the cost of a live auth exchange per protected request.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fanvest/gateway/internal/infrastructure/config"
)

// Connect opens a client for the cache configured in cfg and proves
// connectivity with a ping before returning it. timeout bounds both the ping
// and subsequent per-command deadlines; it is the same budget the verifier
// exchange runs under, so a slow cache can never outlast a live verification.
func Connect(ctx context.Context, cfg config.RedisConfig, timeout time.Duration) (*redis.Client, error) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("verification cache unreachable at %s: %w", cfg.Addr, err)
	}
	return client, nil
}
