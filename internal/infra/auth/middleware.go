package auth

import (
	"context"
	"net/http"

	"github.com/olegmz/verigate/internal/domain"
	"go.uber.org/zap"
)

// TokenValidator — интерфейс проверки bearer-токена, реализуется TokenCodec.
type TokenValidator interface {
	VerifyToken(tokenStr string) (*domain.CustomClaims, error)
}

// Тип для ключей в контексте (избегаем коллизий)
type ctxKey string

const (
	actorIDKey ctxKey = "actor_id"
	roleKey    ctxKey = "actor_role"
)

// MobileUserAgent — объявленный источник мобильного клиента.
// Проверка заголовка — грубая политика, а не аутентификация:
// подлинность личности гарантирует только bearer-токен.
const MobileUserAgent = "MobileApp/1.0"

// NewMiddleware проверяет Authorization и кладет identity в контекст.
func NewMiddleware(v TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := v.VerifyToken(authHeader)
			if err != nil {
				logger.Warn("auth failure", zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			// Прокидываем данные в контекст
			ctx := WithIdentity(r.Context(), claims.ActorID, claims.Role)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// MobileGate пропускает только запросы с объявленным мобильным User-Agent.
func MobileGate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != MobileUserAgent {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole отсекает запросы от актеров без нужной роли.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := RoleFromContext(r.Context())
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}
			if _, ok := allowed[role]; !ok {
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WithIdentity кладет личность актера в контекст запроса.
func WithIdentity(ctx context.Context, actorID int64, role string) context.Context {
	ctx = context.WithValue(ctx, actorIDKey, actorID)
	return context.WithValue(ctx, roleKey, role)
}

// ActorIDFromContext безопасно достает id актера, положенный NewMiddleware.
func ActorIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(actorIDKey).(int64)
	return id, ok
}

// RoleFromContext достает роль актера из контекста.
func RoleFromContext(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(roleKey).(string)
	return role, ok
}
