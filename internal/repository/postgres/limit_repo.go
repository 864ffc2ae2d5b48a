package postgres

/*
Файл limit_repo.go — хранилище лимитов агентов (таблица actuary_limits).
*/

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/olegmz/verigate/internal/domain"
	"github.com/shopspring/decimal"
)

// GetLimit возвращает запись лимита агента или (nil, nil), если записи нет.
func (s *Store) GetLimit(ctx context.Context, employeeID int64) (*domain.LimitRecord, error) {
	query := `SELECT employee_id, limit_amount, used_limit, needs_approval, updated_at
	          FROM actuary_limits WHERE employee_id = $1`

	var rec domain.LimitRecord
	err := s.pool.QueryRow(ctx, query, employeeID).Scan(
		&rec.EmployeeID,
		&rec.LimitAmount,
		&rec.UsedLimit,
		&rec.NeedsApproval,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: failed to fetch limit record: %w", err)
	}
	return &rec, nil
}

// CreateLimit заводит запись лимита при назначении роли AGENT.
func (s *Store) CreateLimit(ctx context.Context, rec *domain.LimitRecord) error {
	query := `INSERT INTO actuary_limits (employee_id, limit_amount, used_limit, needs_approval, updated_at)
	          VALUES ($1, $2, $3, $4, NOW())`

	_, err := s.pool.Exec(ctx, query, rec.EmployeeID, rec.LimitAmount, rec.UsedLimit, rec.NeedsApproval)
	if err != nil {
		return fmt.Errorf("postgres: failed to create limit record: %w", err)
	}
	return nil
}

// DeleteLimit удаляет запись при снятии роли AGENT.
func (s *Store) DeleteLimit(ctx context.Context, employeeID int64) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM actuary_limits WHERE employee_id = $1`, employeeID)
	if err != nil {
		return fmt.Errorf("postgres: failed to delete limit record: %w", err)
	}
	return nil
}

// UpdateLimitAmount меняет потолок лимита.
func (s *Store) UpdateLimitAmount(ctx context.Context, employeeID int64, amount decimal.Decimal) (bool, error) {
	return s.updateLimitField(ctx,
		`UPDATE actuary_limits SET limit_amount = $1, updated_at = NOW() WHERE employee_id = $2`,
		amount, employeeID)
}

// UpdateUsedLimit перезаписывает текущее потребление.
func (s *Store) UpdateUsedLimit(ctx context.Context, employeeID int64, used decimal.Decimal) (bool, error) {
	return s.updateLimitField(ctx,
		`UPDATE actuary_limits SET used_limit = $1, updated_at = NOW() WHERE employee_id = $2`,
		used, employeeID)
}

// UpdateNeedsApproval переключает флаг обязательного подтверждения.
func (s *Store) UpdateNeedsApproval(ctx context.Context, employeeID int64, value bool) (bool, error) {
	return s.updateLimitField(ctx,
		`UPDATE actuary_limits SET needs_approval = $1, updated_at = NOW() WHERE employee_id = $2`,
		value, employeeID)
}

// ResetAllUsedLimits — массовый ночной сброс потребления.
// Идемпотентен: повторный прогон ничего не меняет по существу.
func (s *Store) ResetAllUsedLimits(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `UPDATE actuary_limits SET used_limit = 0, updated_at = NOW()`)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to reset used limits: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) updateLimitField(ctx context.Context, query string, value interface{}, employeeID int64) (bool, error) {
	tag, err := s.pool.Exec(ctx, query, value, employeeID)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to update limit record: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
