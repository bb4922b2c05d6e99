package config

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port     string `env:"PORT,      default=8000"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	// APIKey is the shared secret for trusted service-to-service calls
	// (x-api-key header).
	APIKey string `env:"API_KEY"`

	// AllowedOrigins is the CORS allow-list. Requests without an Origin
	// header are always allowed (non-browser clients).
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=http://localhost:3000"`

	// RoleOverrides refines the per-prefix role table for specific sub-paths,
	// e.g. "/admin/reports:investor" lets investors reach the admin reports
	// routes while the rest of /admin stays admin-only. An empty role value
	// disables the check for that sub-path.
	RoleOverrides map[string]string `env:"ROLE_OVERRIDES"`

	TLS      TLSConfig
	Services ServicesConfig
	Uploads  UploadsConfig
	Verify   VerifyConfig
	Redis    RedisConfig
}

// TLSConfig selects the certificate pair used when Env is "production".
type TLSConfig struct {
	CertFile string `env:"TLS_CERT_FILE"`
	KeyFile  string `env:"TLS_KEY_FILE"`
}

// ServicesConfig holds the internal address of every backend service the
// gateway fronts. Each service is an independently deployed process,
// reachable on loopback by default.
type ServicesConfig struct {
	Auth     string `env:"AUTH_SERVICE_URL,     default=http://127.0.0.1:8001"`
	Athlete  string `env:"ATHLETE_SERVICE_URL,  default=http://127.0.0.1:8002"`
	Investor string `env:"INVESTOR_SERVICE_URL, default=http://127.0.0.1:8003"`
	Admin    string `env:"ADMIN_SERVICE_URL,    default=http://127.0.0.1:8004"`
	Fan      string `env:"FAN_SERVICE_URL,      default=http://127.0.0.1:8005"`
}

type UploadsConfig struct {
	Root      string `env:"UPLOADS_ROOT, default=uploads"`
	PublicDir string `env:"PUBLIC_DIR,   default=public"`

	MaxImageMB    int64 `env:"MAX_IMAGE_SIZE_MB,    default=10"`
	MaxVideoMB    int64 `env:"MAX_VIDEO_SIZE_MB,    default=200"`
	MaxAudioMB    int64 `env:"MAX_AUDIO_SIZE_MB,    default=50"`
	MaxDocumentMB int64 `env:"MAX_DOCUMENT_SIZE_MB, default=25"`
	MaxFileMB     int64 `env:"MAX_FILE_SIZE_MB,     default=25"`
}

// Limits returns the per-bucket upload limits in bytes.
func (u UploadsConfig) Limits() map[string]int64 {
	const mb = 1 << 20
	return map[string]int64{
		"images":    u.MaxImageMB * mb,
		"videos":    u.MaxVideoMB * mb,
		"audios":    u.MaxAudioMB * mb,
		"documents": u.MaxDocumentMB * mb,
		"files":     u.MaxFileMB * mb,
	}
}

type VerifyConfig struct {
	Timeout  time.Duration `env:"AUTH_VERIFY_TIMEOUT, default=5s"`
	CacheTTL time.Duration `env:"AUTH_CACHE_TTL,      default=60s"`
}

type RedisConfig struct {
	// Addr enables the token verification cache when non-empty.
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB, default=0"`
}

// RouteTarget binds an inbound path prefix to a backend service address.
// The table is built once at startup and never mutated, so concurrent
// reads need no synchronisation.
type RouteTarget struct {
	Prefix string
	// RequiredRole guards the prefix; empty means no role check.
	RequiredRole string
	// RoleOverrides maps sub-path prefixes to a different required role,
	// taking precedence over RequiredRole.
	RoleOverrides map[string]string
	Target        *url.URL
}

// RouteTargets returns the proxy rules in registration order. Prefixes are
// non-overlapping, so first-match and exact-prefix dispatch are equivalent.
func (c *Config) RouteTargets() ([]RouteTarget, error) {
	routes := []struct {
		prefix, role, addr string
	}{
		{"/auth", "", c.Services.Auth},
		{"/athlete", "athlete", c.Services.Athlete},
		{"/investor", "investor", c.Services.Investor},
		{"/admin", "admin", c.Services.Admin},
		{"/fan", "fan", c.Services.Fan},
	}

	targets := make([]RouteTarget, 0, len(routes))
	for _, r := range routes {
		u, err := url.Parse(r.addr)
		if err != nil {
			return nil, fmt.Errorf("config: invalid address for %s: %w", r.prefix, err)
		}
		t := RouteTarget{Prefix: r.prefix, RequiredRole: r.role, Target: u}
		for path, role := range c.RoleOverrides {
			if strings.HasPrefix(path, r.prefix) {
				if t.RoleOverrides == nil {
					t.RoleOverrides = make(map[string]string)
				}
				t.RoleOverrides[path] = role
			}
		}
		targets = append(targets, t)
	}
	return targets, nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
