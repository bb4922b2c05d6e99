package authclient

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/fanvest/gateway/internal/api/metrics"
	"github.com/fanvest/gateway/internal/core/domain"
	"github.com/fanvest/gateway/internal/core/ports"
)

// Cached decorates a TokenVerifier with a short-TTL identity cache. A cache
// hit skips the auth service round-trip entirely; cache failures degrade to
// a plain verification, never to a request failure.
type Cached struct {
	inner ports.TokenVerifier
	cache ports.IdentityCache
	log   zerolog.Logger
}

func NewCached(inner ports.TokenVerifier, cache ports.IdentityCache, log zerolog.Logger) *Cached {
	return &Cached{inner: inner, cache: cache, log: log}
}

func (v *Cached) Verify(ctx context.Context, token string) (*domain.Identity, error) {
	identity, err := v.cache.Get(ctx, token)
	if err != nil {
		v.log.Warn().Err(err).Msg("verification cache read failed")
	} else if identity != nil {
		metrics.AuthCacheTotal.WithLabelValues("hit").Inc()
		return identity, nil
	}
	metrics.AuthCacheTotal.WithLabelValues("miss").Inc()

	identity, err = v.inner.Verify(ctx, token)
	if err != nil {
		return nil, err
	}

	if err := v.cache.Put(ctx, token, identity); err != nil {
		v.log.Warn().Err(err).Msg("verification cache write failed")
	}
	return identity, nil
}
