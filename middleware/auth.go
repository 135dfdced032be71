// Package middleware содержит HTTP middleware: проверку JWT провайдера
// аутентификации и извлечение пользователя из контекста запроса.
package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

type contextKey string

const userContextKey contextKey = "user"

// AuthClaims — провалидированные claims токена. Приложение не выдаёт токены
// само: оно доверяет внешнему identity provider и проверяет только подпись.
type AuthClaims struct {
	UserID      string
	Email       string
	DisplayName string
	PhotoURL    *string
}

// Authenticator проверяет подпись HS256 токена из Authorization: Bearer.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

func (a *Authenticator) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")
		if token == "" || token == header {
			// WebSocket из браузера не умеет ставить заголовки.
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := a.parse(token)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (a *Authenticator) parse(tokenString string) (*AuthClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, errors.New("missing 'sub' claim in token")
	}

	claims := &AuthClaims{UserID: sub}
	claims.Email, _ = mapClaims["email"].(string)
	claims.DisplayName, _ = mapClaims["name"].(string)
	if picture, ok := mapClaims["picture"].(string); ok && picture != "" {
		claims.PhotoURL = &picture
	}
	return claims, nil
}

// ClaimsFromContext возвращает claims, положенные Authenticate.
func ClaimsFromContext(ctx context.Context) (*AuthClaims, error) {
	claims, ok := ctx.Value(userContextKey).(*AuthClaims)
	if !ok || claims == nil {
		return nil, errors.New("user claims not found in context")
	}
	return claims, nil
}

// GetUserIDFromContext — укороченный доступ к идентификатору пользователя.
func GetUserIDFromContext(ctx context.Context) (string, error) {
	claims, err := ClaimsFromContext(ctx)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}
