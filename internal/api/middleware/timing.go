package middleware

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/fanvest/gateway/internal/api/envelope"
)

// Timing stamps the request start time into the request context so that the
// envelope can report execution_time on both the success and error paths.
// Must run before any handler that produces an envelope.
func Timing() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(envelope.WithStart(req.Context(), time.Now())))
			return next(c)
		}
	}
}
