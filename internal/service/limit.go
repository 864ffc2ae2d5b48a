package service

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/olegmz/verigate/internal/domain"
)

// LimitStore описывает требования guardrail к хранилищу лимитов.
type LimitStore interface {
	GetLimit(ctx context.Context, employeeID int64) (*domain.LimitRecord, error)
	CreateLimit(ctx context.Context, rec *domain.LimitRecord) error
	DeleteLimit(ctx context.Context, employeeID int64) error
	UpdateLimitAmount(ctx context.Context, employeeID int64, amount decimal.Decimal) (bool, error)
	UpdateUsedLimit(ctx context.Context, employeeID int64, used decimal.Decimal) (bool, error)
	UpdateNeedsApproval(ctx context.Context, employeeID int64, value bool) (bool, error)
	ResetAllUsedLimits(ctx context.Context) (int64, error)
}

// EmployeeStore — доступ к сотрудникам для проверки роли.
type EmployeeStore interface {
	GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error)
	UpdateEmployeeRole(ctx context.Context, id int64, role string) (bool, error)
}

// LimitService — guardrail лимитов агентов. Каждая операция требует,
// чтобы целевой сотрудник существовал и держал роль AGENT прямо сейчас.
type LimitService struct {
	limits    LimitStore
	employees EmployeeStore
	logger    *zap.Logger
}

func NewLimitService(limits LimitStore, employees EmployeeStore, logger *zap.Logger) *LimitService {
	return &LimitService{
		limits:    limits,
		employees: employees,
		logger:    logger.Named("limit-service"),
	}
}

// ChangeLimit меняет потолок лимита агента.
func (s *LimitService) ChangeLimit(ctx context.Context, employeeID int64, newLimit decimal.Decimal) error {
	if err := s.requireAgent(ctx, employeeID); err != nil {
		return err
	}
	return s.applyLimitUpdate(ctx, employeeID, func() (bool, error) {
		return s.limits.UpdateLimitAmount(ctx, employeeID, newLimit)
	})
}

// ResetUsage обнуляет потребление одного агента.
func (s *LimitService) ResetUsage(ctx context.Context, employeeID int64) error {
	if err := s.requireAgent(ctx, employeeID); err != nil {
		return err
	}
	return s.applyLimitUpdate(ctx, employeeID, func() (bool, error) {
		return s.limits.UpdateUsedLimit(ctx, employeeID, decimal.Zero)
	})
}

// RecordUsage перезаписывает текущее потребление агента.
func (s *LimitService) RecordUsage(ctx context.Context, employeeID int64, newUsed decimal.Decimal) error {
	if err := s.requireAgent(ctx, employeeID); err != nil {
		return err
	}
	return s.applyLimitUpdate(ctx, employeeID, func() (bool, error) {
		return s.limits.UpdateUsedLimit(ctx, employeeID, newUsed)
	})
}

// SetApprovalFlag переключает обязательность второго подтверждения.
func (s *LimitService) SetApprovalFlag(ctx context.Context, employeeID int64, value bool) error {
	if err := s.requireAgent(ctx, employeeID); err != nil {
		return err
	}
	return s.applyLimitUpdate(ctx, employeeID, func() (bool, error) {
		return s.limits.UpdateNeedsApproval(ctx, employeeID, value)
	})
}

// GetLimit возвращает запись лимита агента.
func (s *LimitService) GetLimit(ctx context.Context, employeeID int64) (*domain.LimitRecord, error) {
	if err := s.requireAgent(ctx, employeeID); err != nil {
		return nil, err
	}
	rec, err := s.limits.GetLimit(ctx, employeeID)
	if err != nil {
		return nil, &domain.DatabaseError{Message: fmt.Sprintf("failed to fetch limit record: %v", err)}
	}
	if rec == nil {
		return nil, &domain.LimitNotFoundError{EmployeeID: employeeID}
	}
	return rec, nil
}

// PromoteToAgent назначает роль AGENT и заводит запись лимита с дефолтным потолком.
func (s *LimitService) PromoteToAgent(ctx context.Context, employeeID int64) error {
	emp, err := s.employees.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return &domain.DatabaseError{Message: fmt.Sprintf("failed to fetch employee: %v", err)}
	}
	if emp == nil {
		return &domain.EmployeeNotFoundError{ID: employeeID}
	}

	if _, err := s.employees.UpdateEmployeeRole(ctx, employeeID, domain.RoleAgent); err != nil {
		return &domain.DatabaseError{Message: fmt.Sprintf("failed to update role: %v", err)}
	}

	rec, err := s.limits.GetLimit(ctx, employeeID)
	if err != nil {
		return &domain.DatabaseError{Message: fmt.Sprintf("failed to fetch limit record: %v", err)}
	}
	if rec != nil {
		return nil // Лимит уже есть — повторное повышение безвредно
	}

	err = s.limits.CreateLimit(ctx, &domain.LimitRecord{
		EmployeeID:    employeeID,
		LimitAmount:   domain.DefaultAgentLimit,
		UsedLimit:     decimal.Zero,
		NeedsApproval: false,
	})
	if err != nil {
		return &domain.DatabaseError{Message: fmt.Sprintf("failed to create limit record: %v", err)}
	}

	s.logger.Info("employee promoted to agent", zap.Int64("employee_id", employeeID))
	return nil
}

// DemoteFromAgent снимает роль AGENT и удаляет запись лимита.
func (s *LimitService) DemoteFromAgent(ctx context.Context, employeeID int64, newRole string) error {
	if err := s.requireAgent(ctx, employeeID); err != nil {
		return err
	}

	if _, err := s.employees.UpdateEmployeeRole(ctx, employeeID, newRole); err != nil {
		return &domain.DatabaseError{Message: fmt.Sprintf("failed to update role: %v", err)}
	}
	if err := s.limits.DeleteLimit(ctx, employeeID); err != nil {
		return &domain.DatabaseError{Message: fmt.Sprintf("failed to delete limit record: %v", err)}
	}

	s.logger.Info("agent demoted, limit record removed",
		zap.Int64("employee_id", employeeID),
		zap.String("new_role", newRole))
	return nil
}

// ResetAllUsedLimits — массовый сброс, вызывается ежедневным джобом.
func (s *LimitService) ResetAllUsedLimits(ctx context.Context) (int64, error) {
	return s.limits.ResetAllUsedLimits(ctx)
}

func (s *LimitService) requireAgent(ctx context.Context, employeeID int64) error {
	emp, err := s.employees.GetEmployeeByID(ctx, employeeID)
	if err != nil {
		return &domain.DatabaseError{Message: fmt.Sprintf("failed to fetch employee: %v", err)}
	}
	if emp == nil {
		return &domain.EmployeeNotFoundError{ID: employeeID}
	}
	if emp.Role != domain.RoleAgent {
		return &domain.NotAnAgentError{ID: employeeID}
	}
	return nil
}

func (s *LimitService) applyLimitUpdate(ctx context.Context, employeeID int64, update func() (bool, error)) error {
	ok, err := update()
	if err != nil {
		return &domain.DatabaseError{Message: fmt.Sprintf("failed to update limit record: %v", err)}
	}
	if !ok {
		return &domain.LimitNotFoundError{EmployeeID: employeeID}
	}
	return nil
}
