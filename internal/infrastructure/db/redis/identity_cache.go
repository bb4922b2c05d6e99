package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fanvest/gateway/internal/core/domain"
)

const defaultIdentityTTL = time.Minute

// IdentityCache stores verified identities keyed by a digest of the bearer
// token. Raw tokens never appear in Redis keys.
// Key format: verify:<sha256(token)>
type IdentityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewIdentityCache creates an IdentityCache wrapping the given Redis client.
func NewIdentityCache(client *redis.Client, ttl time.Duration) *IdentityCache {
	if ttl <= 0 {
		ttl = defaultIdentityTTL
	}
	return &IdentityCache{client: client, ttl: ttl}
}

// Get returns the cached identity for the token, or (nil, nil) on a miss.
func (c *IdentityCache) Get(ctx context.Context, token string) (*domain.Identity, error) {
	raw, err := c.client.Get(ctx, c.key(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("identity cache get: %w", err)
	}

	var identity domain.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, fmt.Errorf("identity cache decode: %w", err)
	}
	return &identity, nil
}

// Put records a verified identity (expires after the configured TTL).
func (c *IdentityCache) Put(ctx context.Context, token string, identity *domain.Identity) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("identity cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(token), raw, c.ttl).Err()
}

func (c *IdentityCache) key(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "verify:" + hex.EncodeToString(sum[:])
}
