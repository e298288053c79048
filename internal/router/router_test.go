package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/grandessa-shop/api/internal/config"
	"github.com/grandessa-shop/api/internal/router"
	"github.com/grandessa-shop/api/internal/store"
)

// newTestRouter builds the router without a live database or hub; these
// tests never reach a handler that touches either.
func newTestRouter() http.Handler {
	cfg := &config.Config{Port: "8080"}
	return router.New(cfg, store.New(nil), nil, nil)
}

func TestHealth(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest("GET", "/health", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if body := rr.Body.String(); body != `{"status":"ok"}` {
		t.Errorf("body: got %s", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	r := newTestRouter()

	for _, path := range []string{"/orders", "/products"} {
		req := httptest.NewRequest("OPTIONS", path, nil)
		req.Header.Set("Origin", "https://grandessa.example")
		req.Header.Set("Access-Control-Request-Method", "POST")

		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		if rr.Code != http.StatusOK {
			t.Fatalf("%s preflight status: got %d, want %d", path, rr.Code, http.StatusOK)
		}
		if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
			t.Errorf("%s Access-Control-Allow-Origin: got %q, want *", path, got)
		}
	}
}

func TestCORSHeaderOnSimpleRequest(t *testing.T) {
	r := newTestRouter()

	req := httptest.NewRequest("GET", "/health", nil)
	req.Header.Set("Origin", "https://grandessa.example")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if got := rr.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin: got %q, want *", got)
	}
}
