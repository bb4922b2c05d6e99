package proxy

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/fanvest/gateway/internal/api/envelope"
)

func forward(t *testing.T, target string, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	u, err := url.Parse(target)
	if err != nil {
		t.Fatalf("parse target: %v", err)
	}
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := New("/athlete", u, zerolog.Nop()).Handler()(c); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestForwarder_WrapsJSONResponse(t *testing.T) {
	var gotHost, gotPath, gotMethod string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHost = r.Host
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"ana","password":"x"}`))
	}))
	defer backend.Close()

	req := httptest.NewRequest(http.MethodGet, "/athlete/profile?full=1", nil)
	rec := forward(t, backend.URL, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	wantHost := strings.TrimPrefix(backend.URL, "http://")
	if gotHost != wantHost {
		t.Fatalf("host not rewritten: got %q, want %q", gotHost, wantHost)
	}
	if gotPath != "/athlete/profile" || gotMethod != http.MethodGet {
		t.Fatalf("request not preserved: %s %s", gotMethod, gotPath)
	}

	var resp envelope.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not an envelope: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success=true")
	}
	if string(resp.Data) != `{"name":"ana"}` {
		t.Fatalf("sensitive field survived: %s", resp.Data)
	}
}

func TestForwarder_DoesNotDoubleWrap(t *testing.T) {
	pre, _ := json.Marshal(envelope.Failure("athlete not found", nil, 0))
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write(pre)
	}))
	defer backend.Close()

	req := httptest.NewRequest(http.MethodGet, "/athlete/99", nil)
	rec := forward(t, backend.URL, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if rec.Body.String() != string(pre) {
		t.Fatalf("already-normalized body rewritten:\n got: %s\nwant: %s", rec.Body.String(), pre)
	}
}

func TestForwarder_BackendErrorTakesFailureShape(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"boom"}`))
	}))
	defer backend.Close()

	req := httptest.NewRequest(http.MethodPost, "/athlete/offers", strings.NewReader(`{}`))
	rec := forward(t, backend.URL, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	var resp envelope.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("response is not an envelope: %v", err)
	}
	if resp.Success || string(resp.Data) != "null" {
		t.Fatalf("error response not normalized: %+v", resp)
	}
	if resp.Message != "boom" {
		t.Fatalf("backend message lost: %q", resp.Message)
	}
}

func TestForwarder_NonJSONPassesThrough(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>page</html>"))
	}))
	defer backend.Close()

	req := httptest.NewRequest(http.MethodGet, "/athlete/page", nil)
	rec := forward(t, backend.URL, req)

	if rec.Body.String() != "<html>page</html>" {
		t.Fatalf("non-JSON body rewritten: %s", rec.Body.String())
	}
}

func TestForwarder_UnreachableBackend(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	backend.Close() // connection refused from here on

	req := httptest.NewRequest(http.MethodGet, "/athlete/profile", nil)
	rec := forward(t, backend.URL, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	var resp envelope.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error response is not an envelope: %v", err)
	}
	if resp.Success || string(resp.Data) != "null" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if resp.Message != envelope.GenericErrorMessage {
		t.Fatalf("internal failure leaked: %q", resp.Message)
	}
}
