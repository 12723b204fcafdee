package security

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const bearerTokenKey contextKey = "bearer_token"

// BearerTokenMiddleware достает токен из заголовка Authorization и кладет его в контекст.
// Проверка подписи и отзыва выполняется в сервисах.
func BearerTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		token, ok := bearerToken(request)
		if !ok {
			writer.Header().Set("WWW-Authenticate", "Bearer")
			writer.Header().Set("Content-Type", "application/json")
			writer.WriteHeader(http.StatusUnauthorized)
			writer.Write([]byte(`{"detail":"пустой или неверный заголовок Authorization"}`))
			return
		}

		ctx := context.WithValue(request.Context(), bearerTokenKey, token)
		next.ServeHTTP(writer, request.WithContext(ctx))
	})
}

func TokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(bearerTokenKey).(string)
	return token, ok && token != ""
}

func bearerToken(request *http.Request) (string, bool) {
	authorizationHeader := request.Header.Get("Authorization")
	if !strings.HasPrefix(authorizationHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authorizationHeader, "Bearer "))
	return token, token != ""
}
