package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/m04kA/RoomBookingService/internal/api/handlers"
)

// AdminTokenHeader заголовок с токеном администратора
const AdminTokenHeader = "X-Admin-Token"

const msgAdminRequired = "требуется доступ администратора"

type adminKey struct{}

// Admin помечает запрос как административный, если токен совпал.
// Пустой настроенный токен отключает административный доступ
func Admin(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get(AdminTokenHeader)
			if token != "" && provided != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(token)) == 1 {
				r = r.WithContext(context.WithValue(r.Context(), adminKey{}, true))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin отклоняет запросы без административного доступа
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !IsAdmin(r.Context()) {
			handlers.RespondUnauthorized(w, msgAdminRequired)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// IsAdmin запрос прошёл проверку токена администратора
func IsAdmin(ctx context.Context) bool {
	v, _ := ctx.Value(adminKey{}).(bool)
	return v
}
