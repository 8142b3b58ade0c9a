package middleware

import (
	"context"
	"net/http"
	"strings"

	"application-auth/internal/models"
)

type principalKey struct{}

// TokenValidator проверяет access-токен и возвращает субъект запроса.
type TokenValidator interface {
	ValidateAccessToken(ctx context.Context, raw string) (*models.Principal, error)
}

// Authenticate извлекает bearer-токен из Authorization, проверяет его и
// кладёт субъект в контекст запроса. Любой отказ — 401 без деталей:
// причина уже записана в лог на уровне сервиса.
func Authenticate(v TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeError(w, http.StatusUnauthorized, "authentication failed")
				return
			}

			principal, err := v.ValidateAccessToken(r.Context(), raw)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "authentication failed")
				return
			}

			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext достаёт субъект, положенный Authenticate.
func PrincipalFromContext(ctx context.Context) (*models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(*models.Principal)
	return p, ok && p != nil
}

// bearerToken разбирает заголовок Authorization формата "Bearer <token>".
func bearerToken(r *http.Request) (string, bool) {
	const prefix = "Bearer "

	h := r.Header.Get("Authorization")
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}

	raw := strings.TrimSpace(h[len(prefix):])

	return raw, raw != ""
}
