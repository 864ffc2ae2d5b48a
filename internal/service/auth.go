package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/olegmz/verigate/internal/domain"
)

// EmployeeProvider — то, что нужно логину от хранилища.
type EmployeeProvider interface {
	GetEmployeeByEmail(ctx context.Context, email string) (*domain.Employee, error)
}

// TokenIssuer выпускает подписанный платформенный токен.
type TokenIssuer interface {
	IssueToken(email string, actorID int64, role string) (string, time.Time, error)
}

type AuthService struct {
	employees EmployeeProvider
	issuer    TokenIssuer
	logger    *zap.Logger
}

func NewAuthService(employees EmployeeProvider, issuer TokenIssuer, logger *zap.Logger) *AuthService {
	return &AuthService{
		employees: employees,
		issuer:    issuer,
		logger:    logger.Named("auth-service"),
	}
}

// Login проверяет пару email/пароль и выпускает токен.
// Ошибка всегда одинаковая — не раскрываем, что именно неверно.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.TokenResponse, error) {
	emp, err := s.employees.GetEmployeeByEmail(ctx, email)
	if err != nil || emp == nil {
		return nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(emp.PasswordHash), []byte(password)); err != nil {
		return nil, errors.New("invalid credentials")
	}

	token, expiresAt, err := s.issuer.IssueToken(emp.Email, emp.ID, emp.Role)
	if err != nil {
		s.logger.Error("token signing failed", zap.Error(err))
		return nil, errors.New("failed to issue token")
	}

	return &domain.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Seconds()),
	}, nil
}
