package domain

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims — полезная нагрузка платформенного JWT (HS512, общий секрет).
// ActorID — числовой id сотрудника/клиента, именно его читает Workflow Engine.
type CustomClaims struct {
	ActorID int64  `json:"userId"`
	Role    string `json:"role"`
	jwt.RegisteredClaims
}

// ErrUnauthenticated — любая проблема с bearer-токеном: отсутствует,
// не подписан, подписан не тем алгоритмом, истек. Детали не раскрываем.
var ErrUnauthenticated = errors.New("invalid or missing credentials")

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // Всегда "Bearer"
	ExpiresIn   int64  `json:"expires_in"`
}
