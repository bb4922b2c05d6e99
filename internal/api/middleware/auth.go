package middleware

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fanvest/gateway/internal/api/metrics"
	"github.com/fanvest/gateway/internal/core/domain"
	"github.com/fanvest/gateway/internal/core/ports"
)

// Context keys set by Auth on success.
const (
	IdentityKey = "identity"
	RoleKey     = "role"
)

// Auth extracts the bearer token and delegates verification to the auth
// service. On success the resolved identity is attached to the request
// context; every failure is terminal at the gateway — never retried, never
// forwarded to a backend.
func Auth(verifier ports.TokenVerifier, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return domain.ErrMissingHeader
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				return domain.ErrMalformedHeader
			}
			token := parts[1]

			identity, err := verifier.Verify(c.Request().Context(), token)
			elapsed := time.Since(start)
			if err != nil {
				metrics.AuthVerifyDuration.WithLabelValues(verifyResult(err)).Observe(elapsed.Seconds())
				logVerifyFailure(log, c, token, elapsed, err)
				return err
			}

			metrics.AuthVerifyDuration.WithLabelValues("ok").Observe(elapsed.Seconds())
			log.Debug().
				Int64("user_id", identity.ID).
				Str("role", identity.Role).
				Dur("verify_elapsed", elapsed).
				Msg("token verified")

			c.Set(IdentityKey, identity)
			c.Set(RoleKey, identity.Role)
			return next(c)
		}
	}
}

func verifyResult(err error) string {
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return "upstream_error"
	}
	return "unauthorized"
}

func logVerifyFailure(log zerolog.Logger, c echo.Context, token string, elapsed time.Duration, err error) {
	ev := log.Warn().
		Err(err).
		Str("path", c.Request().URL.Path).
		Dur("verify_elapsed", elapsed)

	// Diagnostic claims come from an unverified parse; the raw token itself
	// is never logged.
	if claims := unverifiedClaims(token); claims != nil {
		if sub, ok := claims["sub"]; ok {
			ev = ev.Interface("token_subject", sub)
		}
		if exp, ok := claims["exp"]; ok {
			ev = ev.Interface("token_expiry", exp)
		}
	}
	ev.Msg("token verification failed")
}

// unverifiedClaims parses the token without signature verification, for log
// fields only. Verification belongs to the auth service.
func unverifiedClaims(token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	return claims
}
