package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/emporiumlabs/emporium/pkg/api/auth"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T) *auth.JWTService {
	t.Helper()
	svc, err := auth.NewJWTService(testSecret, time.Hour)
	if err != nil {
		t.Fatalf("NewJWTService failed: %v", err)
	}
	return svc
}

// claimsEcho records the claims JWTAuth put in the request context.
func claimsEcho(got **auth.Claims) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*got = GetClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestJWTAuth_ValidToken(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.GenerateToken("admin")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	var claims *auth.Claims
	handler := JWTAuth(svc)(claimsEcho(&claims))

	req := httptest.NewRequest("GET", "/api/v1/admin/bootstrap", nil)
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status %d, got %d", http.StatusOK, w.Code)
	}
	if claims == nil {
		t.Fatal("Expected claims in request context")
	}
	if claims.Username != "admin" {
		t.Errorf("Expected username admin, got %q", claims.Username)
	}
}

func TestJWTAuth_MissingHeader(t *testing.T) {
	svc := newTestService(t)

	var claims *auth.Claims
	handler := JWTAuth(svc)(claimsEcho(&claims))

	req := httptest.NewRequest("GET", "/api/v1/admin/bootstrap", nil)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if claims != nil {
		t.Error("Expected handler not to be reached")
	}
}

func TestJWTAuth_MalformedHeader(t *testing.T) {
	svc := newTestService(t)

	var claims *auth.Claims
	handler := JWTAuth(svc)(claimsEcho(&claims))

	for _, header := range []string{"Basic dXNlcjpwYXNz", "Bearer", "token-without-scheme"} {
		req := httptest.NewRequest("GET", "/api/v1/admin/bootstrap", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		if w.Code != http.StatusUnauthorized {
			t.Errorf("Header %q: expected status %d, got %d", header, http.StatusUnauthorized, w.Code)
		}
	}
}

func TestJWTAuth_InvalidToken(t *testing.T) {
	svc := newTestService(t)

	var claims *auth.Claims
	handler := JWTAuth(svc)(claimsEcho(&claims))

	req := httptest.NewRequest("GET", "/api/v1/admin/bootstrap", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
}

func TestJWTAuth_ExpiredToken(t *testing.T) {
	svc := newTestService(t)

	expired := auth.Claims{
		Username: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			Issuer:    "emporium",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, expired).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("Failed to sign test token: %v", err)
	}

	var claims *auth.Claims
	handler := JWTAuth(svc)(claimsEcho(&claims))

	req := httptest.NewRequest("GET", "/api/v1/admin/bootstrap", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()

	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("Expected status %d, got %d", http.StatusUnauthorized, w.Code)
	}
	if claims != nil {
		t.Error("Expected handler not to be reached")
	}
}

func TestGetClaimsFromContext_Empty(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if claims := GetClaimsFromContext(req.Context()); claims != nil {
		t.Errorf("Expected nil claims, got %+v", claims)
	}
}
