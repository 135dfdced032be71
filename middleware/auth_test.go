package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

const testSecret = "test-secret"

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestAuthenticate(t *testing.T) {
	auth := NewAuthenticator(testSecret)

	validToken := signToken(t, jwt.MapClaims{
		"sub":     "user-123",
		"email":   "fan@example.com",
		"name":    "El Fan",
		"picture": "https://example.com/p.png",
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	expiredToken := signToken(t, jwt.MapClaims{
		"sub": "user-123",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	noSubToken := signToken(t, jwt.MapClaims{
		"email": "fan@example.com",
	})

	otherKey := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-123"})
	wrongKeyToken, err := otherKey.SignedString([]byte("wrong-secret"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name       string
		authHeader string
		query      string
		wantStatus int
		wantUserID string
	}{
		{"valid bearer", "Bearer " + validToken, "", http.StatusOK, "user-123"},
		{"valid query token", "", "?token=" + validToken, http.StatusOK, "user-123"},
		{"no token", "", "", http.StatusUnauthorized, ""},
		{"expired", "Bearer " + expiredToken, "", http.StatusUnauthorized, ""},
		{"missing sub", "Bearer " + noSubToken, "", http.StatusUnauthorized, ""},
		{"wrong key", "Bearer " + wrongKeyToken, "", http.StatusUnauthorized, ""},
		{"malformed", "Bearer not.a.token", "", http.StatusUnauthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUserID string
			handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, err := GetUserIDFromContext(r.Context())
				if err != nil {
					t.Errorf("GetUserIDFromContext() error = %v", err)
				}
				gotUserID = id
			}))

			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantUserID != "" && gotUserID != tt.wantUserID {
				t.Errorf("userID = %q, want %q", gotUserID, tt.wantUserID)
			}
		})
	}
}

func TestClaimsFromContextParsesProfile(t *testing.T) {
	auth := NewAuthenticator(testSecret)
	token := signToken(t, jwt.MapClaims{
		"sub":     "user-9",
		"email":   "nine@example.com",
		"name":    "Nueve",
		"picture": "https://example.com/9.png",
	})

	var claims *AuthClaims
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, _ = ClaimsFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if claims == nil {
		t.Fatal("claims not set")
	}
	if claims.Email != "nine@example.com" || claims.DisplayName != "Nueve" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.PhotoURL == nil || *claims.PhotoURL != "https://example.com/9.png" {
		t.Errorf("PhotoURL = %v", claims.PhotoURL)
	}
}
