package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	pkgauth "github.com/avelarde/shopflow-backend/pkg/auth"
	"github.com/avelarde/shopflow-backend/pkg/config"
	"github.com/avelarde/shopflow-backend/pkg/enums"
)

type fakeSessionChecker struct {
	active bool
	err    error
	seen   string
}

func (f *fakeSessionChecker) HasSession(_ context.Context, accessID string) (bool, error) {
	f.seen = accessID
	return f.active, f.err
}

func authTestConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "auth-middleware-test-secret",
		Issuer:            "shopflow",
		ExpirationMinutes: 15,
	}
}

func mintTestToken(t *testing.T, cfg config.JWTConfig, jti string) (string, uuid.UUID) {
	t.Helper()
	userID := uuid.New()
	token, err := pkgauth.MintAccessToken(cfg, time.Now(), pkgauth.AccessTokenPayload{
		UserID: userID,
		Email:  "shopper@example.com",
		Role:   enums.UserRoleCustomer,
		JTI:    jti,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token, userID
}

func TestAuthRejectsMissingHeader(t *testing.T) {
	cfg := authTestConfig()
	handler := Auth(cfg, &fakeSessionChecker{active: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthRejectsMalformedToken(t *testing.T) {
	cfg := authTestConfig()
	handler := Auth(cfg, &fakeSessionChecker{active: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run with a bad token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestAuthRejectsRevokedSession(t *testing.T) {
	cfg := authTestConfig()
	checker := &fakeSessionChecker{active: false}
	handler := Auth(cfg, checker, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run when the session is gone")
	}))

	token, _ := mintTestToken(t, cfg, "revoked-session")
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if checker.seen != "revoked-session" {
		t.Fatalf("checker saw access id %q, want %q", checker.seen, "revoked-session")
	}
}

func TestAuthSeedsContext(t *testing.T) {
	cfg := authTestConfig()
	token, userID := mintTestToken(t, cfg, "live-session")

	var gotUser, gotRole, gotAccess string
	handler := Auth(cfg, &fakeSessionChecker{active: true}, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		gotAccess = AccessIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if gotUser != userID.String() {
		t.Fatalf("user id = %q, want %q", gotUser, userID.String())
	}
	if gotRole != enums.UserRoleCustomer.String() {
		t.Fatalf("role = %q, want %q", gotRole, enums.UserRoleCustomer)
	}
	if gotAccess != "live-session" {
		t.Fatalf("access id = %q, want %q", gotAccess, "live-session")
	}
}
