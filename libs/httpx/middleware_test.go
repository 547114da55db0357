package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestChainOrder(t *testing.T) {
	var calls []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls = append(calls, name)
				next.ServeHTTP(w, r)
			})
		}
	}
	h := Chain(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), mw("outer"), mw("inner"))

	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "http://example.com", nil))

	if len(calls) != 2 || calls[0] != "outer" || calls[1] != "inner" {
		t.Fatalf("middleware order = %v, want [outer inner]", calls)
	}
}

func TestWithRequestID(t *testing.T) {
	var seen string
	h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, httptest.NewRequest(http.MethodGet, "http://example.com", nil))
	if seen == "" {
		t.Fatal("expected a generated request id in context")
	}
	if rw.Header().Get(RequestIDHeader) != seen {
		t.Fatalf("response header %q != context id %q", rw.Header().Get(RequestIDHeader), seen)
	}

	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "fixed-id" {
		t.Fatalf("expected inbound id to be kept, got %q", seen)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	h := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rw := httptest.NewRecorder()
		h.ServeHTTP(rw, req)
		return rw.Code
	}

	if do("10.0.0.1") != http.StatusOK || do("10.0.0.1") != http.StatusOK {
		t.Fatal("first two requests should pass")
	}
	if do("10.0.0.1") != http.StatusTooManyRequests {
		t.Fatal("third request in the window should be limited")
	}
	if do("10.0.0.2") != http.StatusOK {
		t.Fatal("other clients should be unaffected")
	}
}
