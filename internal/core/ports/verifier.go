package ports

import (
	"context"

	"github.com/fanvest/gateway/internal/core/domain"
)

// TokenVerifier resolves a bearer token to an authenticated identity by
// consulting the auth service (or a cache in front of it).
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*domain.Identity, error)
}

// IdentityCache stores verified identities keyed by token for a short TTL.
// Get returns (nil, nil) on a cache miss.
type IdentityCache interface {
	Get(ctx context.Context, token string) (*domain.Identity, error)
	Put(ctx context.Context, token string, identity *domain.Identity) error
}
