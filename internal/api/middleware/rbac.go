package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/fanvest/gateway/internal/core/domain"
)

// RequireRole enforces role-based access for a route group. role is the
// group-level declaration; overrides map request path prefixes to a
// different required role and take precedence (an empty override disables
// the check for that prefix). Roles match exactly — no hierarchy.
func RequireRole(role string, overrides map[string]string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			required := role
			path := c.Request().URL.Path
			for prefix, r := range overrides {
				if strings.HasPrefix(path, prefix) {
					required = r
					break
				}
			}
			if required == "" {
				return next(c)
			}

			have, _ := c.Get(RoleKey).(string)
			if have == "" {
				return domain.ErrNotAuthenticated
			}
			if have != required {
				return domain.ErrInsufficientPermissions
			}
			return next(c)
		}
	}
}
