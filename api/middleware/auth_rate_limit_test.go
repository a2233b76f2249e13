package middleware

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	pkgerrors "github.com/avelarde/shopflow-backend/pkg/errors"
)

type fakeRateStore struct {
	counts map[string]int64
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{counts: map[string]int64{}}
}

func (s *fakeRateStore) IncrWithTTL(_ context.Context, key string, _ time.Duration) (int64, error) {
	s.counts[key]++
	return s.counts[key], nil
}

func rateLimitedCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var envelope struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	return envelope.Code
}

func TestAuthRateLimitAllowsUnderLimit(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 5, 5)
	store := newFakeRateStore()

	var seenBody string
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)
		seenBody = string(payload)
		w.WriteHeader(http.StatusOK)
	}))

	body := `{"email":"shopper@example.com","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = "203.0.113.7:51234"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if seenBody != body {
		t.Fatalf("handler body = %q, want %q", seenBody, body)
	}
}

func TestAuthRateLimitBlocksByEmail(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", time.Minute, 100, 2)
	store := newFakeRateStore()
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func(ip string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"Shopper@Example.com"}`))
		req.RemoteAddr = ip
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	// Different IPs so only the email counter can trip.
	send("203.0.113.1:1000")
	send("203.0.113.2:1000")
	blocked := send("203.0.113.3:1000")

	if blocked.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", blocked.Code, http.StatusTooManyRequests)
	}
	if code := rateLimitedCode(t, blocked); code != string(pkgerrors.CodeRateLimit) {
		t.Fatalf("code = %q, want %q", code, pkgerrors.CodeRateLimit)
	}
}

func TestAuthRateLimitBlocksByIP(t *testing.T) {
	policy := NewAuthRateLimitPolicy("register", time.Minute, 2, 0)
	store := newFakeRateStore()
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", strings.NewReader(`{}`))
		req.Header.Set("X-Forwarded-For", "198.51.100.9")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	send()
	send()
	blocked := send()

	if blocked.Code != http.StatusTooManyRequests {
		t.Fatalf("status = %d, want %d", blocked.Code, http.StatusTooManyRequests)
	}
}

func TestAuthRateLimitDisabledPolicyPassesThrough(t *testing.T) {
	policy := NewAuthRateLimitPolicy("login", 0, 5, 5)
	store := newFakeRateStore()
	called := false
	handler := AuthRateLimit(policy, store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if !called {
		t.Fatal("expected disabled policy to pass through")
	}
	if len(store.counts) != 0 {
		t.Fatalf("store should not be touched, got %d keys", len(store.counts))
	}
}
