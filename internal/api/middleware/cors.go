package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/fanvest/gateway/internal/api/metrics"
	"github.com/fanvest/gateway/internal/core/domain"
)

// CORS enforces the origin allow-list ahead of every handler. Requests
// without an Origin header (non-browser clients) pass through. A listed
// origin is echoed back with credentials enabled; anything else is rejected
// before reaching a backend.
func CORS(origins []string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get("Origin")
			if origin == "" {
				return next(c)
			}
			if _, ok := allowed[origin]; !ok {
				metrics.CorsRejectedTotal.Inc()
				return domain.ErrCorsRejected
			}

			h := c.Response().Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")

			if c.Request().Method == http.MethodOptions {
				h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Api-Key")
				return c.NoContent(http.StatusNoContent)
			}
			return next(c)
		}
	}
}
