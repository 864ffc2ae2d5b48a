package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/olegmz/verigate/internal/domain"
)

const employeeColumns = `id, email, first_name, last_name, password_hash, role, created_at, updated_at`

// GetEmployeeByID возвращает сотрудника или (nil, nil), если его нет.
func (s *Store) GetEmployeeByID(ctx context.Context, id int64) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	return s.scanEmployee(s.pool.QueryRow(ctx, query, id))
}

// GetEmployeeByEmail используется логином.
func (s *Store) GetEmployeeByEmail(ctx context.Context, email string) (*domain.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = $1`
	return s.scanEmployee(s.pool.QueryRow(ctx, query, email))
}

// UpdateEmployeeRole меняет роль (повышение/снятие AGENT управляет записью лимита на уровне сервиса).
func (s *Store) UpdateEmployeeRole(ctx context.Context, id int64, role string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`UPDATE employees SET role = $1, updated_at = NOW() WHERE id = $2`, role, id)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to update employee role: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) scanEmployee(row pgx.Row) (*domain.Employee, error) {
	var e domain.Employee
	err := row.Scan(&e.ID, &e.Email, &e.FirstName, &e.LastName, &e.PasswordHash, &e.Role, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: failed to fetch employee: %w", err)
	}
	return &e, nil
}
