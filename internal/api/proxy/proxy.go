// Package proxy forwards inbound requests to the backend service that owns
// their path prefix. Request bodies stream through without buffering;
// response bodies are normalized into the gateway envelope when they carry
// JSON.
package proxy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fanvest/gateway/internal/api/envelope"
	"github.com/fanvest/gateway/internal/api/metrics"
)

// Forwarder is one proxy rule: prefix → backend target.
type Forwarder struct {
	service string
	proxy   *httputil.ReverseProxy
}

// New builds a Forwarder for the given prefix and target. The outbound Host
// header is rewritten to the target host; method, remaining headers, and
// body pass through verbatim.
func New(prefix string, target *url.URL, log zerolog.Logger) *Forwarder {
	service := strings.TrimPrefix(prefix, "/")
	plog := log.With().Str("service", service).Logger()

	p := httputil.NewSingleHostReverseProxy(target)
	p.Transport = newTransport()
	// Periodic flushing keeps long-lived responses (exports, SSE) moving.
	p.FlushInterval = 200 * time.Millisecond
	p.BufferPool = newPool(32 << 10)

	base := p.Director
	p.Director = func(req *http.Request) {
		base(req)
		req.Host = target.Host
		if req.Header.Get("X-Forwarded-Proto") == "" {
			scheme := "http"
			if req.TLS != nil {
				scheme = "https"
			}
			req.Header.Set("X-Forwarded-Proto", scheme)
		}
	}

	p.ModifyResponse = func(res *http.Response) error {
		return normalizeResponse(res, plog)
	}

	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		// Client gone: nothing useful to send, the upstream request has
		// already been aborted through the shared context.
		if errors.Is(err, context.Canceled) {
			return
		}
		code, reason := http.StatusBadGateway, "unreachable"
		if errors.Is(err, context.DeadlineExceeded) {
			code, reason = http.StatusGatewayTimeout, "timeout"
		}
		metrics.ProxyErrorsTotal.WithLabelValues(service, reason).Inc()
		plog.Error().Err(err).Str("path", r.URL.Path).Msg("backend forward failed")

		resp := envelope.Failure(envelope.GenericErrorMessage, nil, envelope.Elapsed(r.Context()))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(resp)
	}

	return &Forwarder{service: service, proxy: p}
}

// Handler adapts the proxy for echo route registration.
func (f *Forwarder) Handler() echo.HandlerFunc {
	return echo.WrapHandler(f.proxy)
}

// normalizeResponse rewrites JSON bodies through the envelope. Non-JSON
// bodies (downloads, HTML) stream through untouched, as do bodies already
// carrying the envelope shape.
func normalizeResponse(res *http.Response, log zerolog.Logger) error {
	ct := res.Header.Get("Content-Type")
	if !strings.HasPrefix(ct, "application/json") {
		return nil
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return err
	}
	res.Body.Close()

	out, err := envelope.NormalizeBody(body, res.StatusCode, envelope.Elapsed(res.Request.Context()))
	if err != nil {
		log.Error().Err(err).Msg("response normalization failed, passing body through")
		out = body
	}

	res.Body = io.NopCloser(bytes.NewReader(out))
	res.ContentLength = int64(len(out))
	res.Header.Set("Content-Length", strconv.Itoa(len(out)))
	return nil
}

func newTransport() *http.Transport {
	dial := &net.Dialer{Timeout: 10 * time.Second, KeepAlive: 30 * time.Second}
	return &http.Transport{
		DialContext:           dial.DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
	}
}

type pool struct {
	pool sync.Pool
}

func newPool(size int) *pool {
	return &pool{
		pool: sync.Pool{
			New: func() any {
				b := make([]byte, size)
				return &b
			},
		},
	}
}

func (p *pool) Get() []byte {
	b := p.pool.Get().(*[]byte)
	return *b
}

func (p *pool) Put(b []byte) {
	if cap(b) > 256<<10 { // Avoid holding on to very large buffers
		return
	}
	p.pool.Put(&b)
}
