package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "test-secret"

func signToken(t *testing.T, secret, subject, tenantID string, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		TenantID: tenantID,
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func authProbe() (http.Handler, *string, *string) {
	var userID, tenantID string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID = GetUserID(r.Context())
		tenantID = GetTenantID(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	return h, &userID, &tenantID
}

func TestAuth_AcceptsValidToken(t *testing.T) {
	t.Parallel()

	probe, userID, tenantID := authProbe()
	h := Auth(testSecret)(probe)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-1", "tenant-1", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}
	if *userID != "user-1" {
		t.Fatalf("unexpected user ID in context: %q", *userID)
	}
	if *tenantID != "tenant-1" {
		t.Fatalf("unexpected tenant ID in context: %q", *tenantID)
	}
}

func TestAuth_RejectsMissingHeader(t *testing.T) {
	t.Parallel()

	probe, _, _ := authProbe()
	h := Auth(testSecret)(probe)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}
}

func TestAuth_RejectsWrongSecret(t *testing.T) {
	t.Parallel()

	probe, _, _ := authProbe()
	h := Auth(testSecret)(probe)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "other-secret", "user-1", "tenant-1", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}
}

func TestAuth_RejectsExpiredToken(t *testing.T) {
	t.Parallel()

	probe, _, _ := authProbe()
	h := Auth(testSecret)(probe)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-1", "tenant-1", time.Now().Add(-time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}
}

func TestAuth_RejectsTokenWithoutTenant(t *testing.T) {
	t.Parallel()

	probe, _, _ := authProbe()
	h := Auth(testSecret)(probe)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/pages", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, testSecret, "user-1", "", time.Now().Add(time.Hour)))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unexpected status code: %d", rec.Code)
	}
}
