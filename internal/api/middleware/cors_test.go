package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/fanvest/gateway/internal/core/domain"
)

func runCORS(t *testing.T, method, origin string) (*httptest.ResponseRecorder, error, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/athlete/profile", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	err := CORS([]string{"https://app.fanvest.io"})(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})(c)
	return rec, err, called
}

func TestCORS_NoOriginAllowed(t *testing.T) {
	rec, err, called := runCORS(t, http.MethodGet, "")
	if err != nil || !called {
		t.Fatalf("non-browser request blocked: err=%v called=%v", err, called)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("CORS headers set without an Origin header")
	}
}

func TestCORS_ListedOriginEchoed(t *testing.T) {
	rec, err, called := runCORS(t, http.MethodGet, "https://app.fanvest.io")
	if err != nil || !called {
		t.Fatalf("allowed origin blocked: err=%v called=%v", err, called)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.fanvest.io" {
		t.Fatalf("origin not echoed: %q", got)
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("credentials header missing")
	}
}

func TestCORS_UnlistedOriginRejectedBeforeHandler(t *testing.T) {
	_, err, called := runCORS(t, http.MethodGet, "https://evil.example")
	if !errors.Is(err, domain.ErrCorsRejected) {
		t.Fatalf("expected ErrCorsRejected, got %v", err)
	}
	if called {
		t.Fatalf("handler reached with rejected origin")
	}
}

func TestCORS_PreflightShortCircuits(t *testing.T) {
	rec, err, called := runCORS(t, http.MethodOptions, "https://app.fanvest.io")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Fatalf("preflight should not reach the handler")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Methods") == "" {
		t.Fatalf("preflight missing allowed methods")
	}
}
