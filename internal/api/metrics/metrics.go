// Package metrics defines and registers all custom Prometheus metrics for
// the gateway. It is the single source of truth for metric names, labels,
// and help strings.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "gateway"

// AuthVerifyDuration measures a credential verification from header parse to
// final resolution, success and failure alike.
// Label:
//   - result: "ok", "unauthorized", "upstream_error"
var AuthVerifyDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auth_verify_duration_seconds",
		Help:      "Duration of token verification against the auth service.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"result"},
)

// AuthCacheTotal counts verification cache lookups.
// Label:
//   - result: "hit" or "miss"
var AuthCacheTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_cache_total",
		Help:      "Total number of verification cache lookups, by result.",
	},
	[]string{"result"},
)

// ProxyErrorsTotal counts forwarding failures per backend prefix.
// Labels:
//   - service: the route prefix without the leading slash (e.g. "athlete")
//   - reason: "timeout" or "unreachable"
var ProxyErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "proxy_errors_total",
		Help:      "Total number of failed forwards to backend services.",
	},
	[]string{"service", "reason"},
)

// FilesServedTotal counts static assets served from the uploads directory.
// Label:
//   - bucket: storage subdirectory (images, videos, audios, documents, files)
var FilesServedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "files_served_total",
		Help:      "Total number of static files served, by storage bucket.",
	},
	[]string{"bucket"},
)

// CorsRejectedTotal counts requests rejected at the CORS gate before any
// backend call.
var CorsRejectedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cors_rejected_total",
		Help:      "Total number of requests rejected by the origin allow-list.",
	},
)
