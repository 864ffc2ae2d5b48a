package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/olegmz/verigate/internal/domain"
)

// TokenCodec содержит общую логику выпуска и проверки HS512-токенов.
// Ключ симметричный и общий для всей платформы.
type TokenCodec struct {
	secret   []byte
	tokenTTL time.Duration
}

func NewTokenCodec(secret []byte, tokenTTL time.Duration) *TokenCodec {
	return &TokenCodec{secret: secret, tokenTTL: tokenTTL}
}

// IssueToken подписывает claims для сотрудника/клиента после успешного логина.
func (c *TokenCodec) IssueToken(email string, actorID int64, role string) (string, time.Time, error) {
	expiresAt := time.Now().Add(c.tokenTTL)
	claims := &domain.CustomClaims{
		ActorID: actorID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// VerifyToken реализует интерфейс auth.TokenValidator.
// Принимает как голый токен, так и значение заголовка с префиксом Bearer.
func (c *TokenCodec) VerifyToken(tokenStr string) (*domain.CustomClaims, error) {
	tokenStr = strings.TrimPrefix(tokenStr, "Bearer ")
	tokenStr = strings.TrimSpace(tokenStr)
	if tokenStr == "" {
		return nil, domain.ErrUnauthenticated
	}

	token, err := jwt.ParseWithClaims(tokenStr, &domain.CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return c.secret, nil
	})

	if err != nil || !token.Valid {
		return nil, fmt.Errorf("%w: %v", domain.ErrUnauthenticated, err)
	}

	claims, ok := token.Claims.(*domain.CustomClaims)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	return claims, nil
}

// ActorIDFromHeader — единственное, что нужно Workflow Engine от резолвера:
// числовой id действующего лица из Authorization-заголовка.
func (c *TokenCodec) ActorIDFromHeader(authHeader string) (int64, error) {
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return 0, domain.ErrUnauthenticated
	}
	claims, err := c.VerifyToken(authHeader)
	if err != nil {
		return 0, err
	}
	return claims.ActorID, nil
}
