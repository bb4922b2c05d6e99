package handler

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/fanvest/gateway/internal/api/envelope"
	"github.com/fanvest/gateway/internal/infrastructure/config"
)

// HealthHandler handles GET / — liveness probe.
// Returns 200 immediately; confirms the gateway process is alive.
type HealthHandler struct{}

func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

func (h *HealthHandler) Liveness(c echo.Context) error {
	return envelope.JSON(c, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "gateway",
	}, "Gateway is healthy.")
}

// StatusHandler handles GET /internal/status — readiness probe, API-key
// gated. Checks TCP reachability of every backend target plus Redis when
// the verification cache is enabled.
type StatusHandler struct {
	targets []config.RouteTarget
	redis   *redis.Client
}

func NewStatusHandler(targets []config.RouteTarget, rdb *redis.Client) *StatusHandler {
	return &StatusHandler{targets: targets, redis: rdb}
}

type dependencyStatus struct {
	Service string `json:"service"`
	Status  string `json:"status"`
	Error   string `json:"error,omitempty"`
}

func (h *StatusHandler) Readiness(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	deps := make([]dependencyStatus, 0, len(h.targets)+1)
	healthy := true

	dialer := &net.Dialer{Timeout: time.Second}
	for _, t := range h.targets {
		d := dependencyStatus{Service: t.Prefix, Status: "ok"}
		conn, err := dialer.DialContext(ctx, "tcp", hostPort(t.Target))
		if err != nil {
			d.Status = "unreachable"
			d.Error = err.Error()
			healthy = false
		} else {
			_ = conn.Close()
		}
		deps = append(deps, d)
	}

	if h.redis != nil {
		d := dependencyStatus{Service: "redis", Status: "ok"}
		if _, err := h.redis.Ping(ctx).Result(); err != nil {
			d.Status = "unreachable"
			d.Error = err.Error()
			healthy = false
		}
		deps = append(deps, d)
	}

	if !healthy {
		errs := make([]any, 0, len(deps))
		for _, d := range deps {
			if d.Status != "ok" {
				errs = append(errs, d)
			}
		}
		resp := envelope.Failure("Gateway dependencies degraded.", errs, envelope.Elapsed(c.Request().Context()))
		return c.JSON(http.StatusServiceUnavailable, resp)
	}

	return envelope.JSON(c, http.StatusOK, map[string]any{
		"status":       "ok",
		"dependencies": deps,
	}, "Gateway is ready.")
}

func hostPort(u *url.URL) string {
	if u.Port() != "" {
		return u.Host
	}
	port := "80"
	if u.Scheme == "https" {
		port = "443"
	}
	return net.JoinHostPort(u.Hostname(), port)
}
