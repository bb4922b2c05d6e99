package middleware

import (
	"crypto/subtle"

	"github.com/labstack/echo/v4"

	"github.com/fanvest/gateway/internal/core/domain"
)

const apiKeyHeader = "x-api-key"

// APIKey gates service-to-service and trusted-client calls on a shared
// secret header. The comparison is constant time.
func APIKey(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := c.Request().Header.Get(apiKeyHeader)
			if key == "" || secret == "" {
				return domain.ErrUnauthorized
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(secret)) != 1 {
				return domain.ErrUnauthorized
			}
			return next(c)
		}
	}
}
