package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	pkgerrors "github.com/avelarde/shopflow-backend/pkg/errors"
)

type fakeIdempotencyStore struct {
	records map[string]string
	setKeys []string
}

func newFakeIdempotencyStore() *fakeIdempotencyStore {
	return &fakeIdempotencyStore{records: map[string]string{}}
}

func (s *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	value, ok := s.records[key]
	if !ok {
		return "", redis.Nil
	}
	return value, nil
}

func (s *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, exists := s.records[key]; exists {
		return false, nil
	}
	payload, ok := value.(string)
	if !ok {
		return false, fmt.Errorf("unexpected value type %T", value)
	}
	s.records[key] = payload
	s.setKeys = append(s.setKeys, key)
	return true, nil
}

func (s *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(s.records, key)
	}
	return nil
}

func (s *fakeIdempotencyStore) IdempotencyKey(scope, key string) string {
	return "idem:" + scope + ":" + key
}

func TestRouteTTLSelection(t *testing.T) {
	cases := []struct {
		name    string
		method  string
		path    string
		ttl     time.Duration
		matched bool
	}{
		{"register", http.MethodPost, "/api/v1/auth/register", defaultIdempotencyTTL, true},
		{"review", http.MethodPost, "/api/v1/products/4f2d/reviews", defaultIdempotencyTTL, true},
		{"admin product", http.MethodPost, "/api/admin/v1/products", defaultIdempotencyTTL, true},
		{"order status", http.MethodPatch, "/api/admin/v1/orders/4f2d/status", defaultIdempotencyTTL, true},
		{"checkout", http.MethodPost, "/api/v1/orders", criticalIdempotencyTTL, true},
		{"login", http.MethodPost, "/api/v1/auth/login", 0, false},
		{"checkout wrong method", http.MethodGet, "/api/v1/orders", 0, false},
		{"empty", http.MethodPost, "", 0, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ttl, matched := routeTTL(tc.method, tc.path)
			if matched != tc.matched {
				t.Fatalf("matched = %v, want %v", matched, tc.matched)
			}
			if ttl != tc.ttl {
				t.Fatalf("ttl = %v, want %v", ttl, tc.ttl)
			}
		})
	}
}

func TestIdempotencyMiddlewareRequiresHeader(t *testing.T) {
	store := newFakeIdempotencyStore()
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without an idempotency key")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestIdempotencyMiddlewareSkipsUnmatchedRoutes(t *testing.T) {
	store := newFakeIdempotencyStore()
	called := false
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called {
		t.Fatal("expected unmatched route to pass through")
	}
	if len(store.setKeys) != 0 {
		t.Fatalf("store should not be touched, got %d writes", len(store.setKeys))
	}
}

func TestIdempotencyMiddlewareReplaysStoredResponse(t *testing.T) {
	store := newFakeIdempotencyStore()
	calls := 0
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	payload := `{"shipping_address":{"street":"1 Main St"}}`
	makeRequest := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(payload))
		req.Header.Set("Idempotency-Key", "order-key-1")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	first := makeRequest()
	second := makeRequest()

	if calls != 1 {
		t.Fatalf("handler calls = %d, want 1", calls)
	}
	if second.Code != first.Code {
		t.Fatalf("replayed status = %d, want %d", second.Code, first.Code)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("replayed body = %q, want %q", second.Body.String(), first.Body.String())
	}
	if ct := second.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("replayed content type = %q", ct)
	}
}

func TestIdempotencyMiddlewareDetectsBodyChange(t *testing.T) {
	store := newFakeIdempotencyStore()
	handler := Idempotency(store, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))

	send := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		req.Header.Set("Idempotency-Key", "order-key-2")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	send(`{"notes":"first"}`)
	conflict := send(`{"notes":"second"}`)

	if conflict.Code != http.StatusConflict {
		t.Fatalf("status = %d, want %d", conflict.Code, http.StatusConflict)
	}
	var envelope struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(conflict.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if envelope.Code != string(pkgerrors.CodeIdempotency) {
		t.Fatalf("code = %q, want %q", envelope.Code, pkgerrors.CodeIdempotency)
	}
}
