package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fanvest/gateway/internal/api/envelope"
	"github.com/fanvest/gateway/internal/api/handler"
	"github.com/fanvest/gateway/internal/core/domain"
)

// NewHTTPErrorHandler returns the single normalization point for every
// error leaving the gateway:
//   - Maps the gateway error taxonomy to deterministic HTTP status codes.
//   - Renders the uniform envelope with data=null on the error path.
//   - Routes static-asset misses to the HTML fallback instead.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger, publicDir string) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		// Rejected origins terminate here, outside the JSON envelope and
		// without CORS echo headers.
		if errors.Is(err, domain.ErrCorsRejected) {
			c.Response().Header().Set("Connection", "close")
			_ = c.String(http.StatusForbidden, "origin not allowed")
			return
		}

		// Echo CORS headers before any body logic so failed requests still
		// pass browser checks.
		if origin := c.Request().Header.Get("Origin"); origin != "" {
			h := c.Response().Header()
			if h.Get("Access-Control-Allow-Origin") == "" {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}

		// Missing static assets take the HTML fallback path.
		if errors.Is(err, domain.ErrNotFound) {
			handler.ServeNotFound(c, publicDir)
			return
		}

		code, msg := resolveError(err, log, c)
		resp := envelope.Failure(msg, nil, envelope.Elapsed(c.Request().Context()))
		_ = c.JSON(code, resp)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// A failed exchange with the auth service carries its own best-known
	// status; the client only ever sees the generic safe message.
	var ue *domain.UpstreamError
	if errors.As(err, &ue) {
		log.Error().
			Err(ue.Err).
			Int("status", ue.Status).
			Str("path", c.Request().URL.Path).
			Msg("auth service unavailable")
		return ue.Status, envelope.GenericErrorMessage
	}

	// Echo's own errors (bind failures, 404 from the router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, domain.ErrMissingHeader),
		errors.Is(err, domain.ErrMalformedHeader),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, domain.ErrInsufficientPermissions):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Msg("unhandled error")

	return http.StatusInternalServerError, envelope.GenericErrorMessage
}
