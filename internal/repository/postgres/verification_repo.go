package postgres

/*
Файл verification_repo.go содержит доступ к таблице verification_requests —
заявкам на второе подтверждение чувствительных операций.
*/

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/olegmz/verigate/internal/domain"
)

const verificationColumns = `id, requesting_actor_id, target_id, verification_type, status, expiration_time, created_at, details`

// CreateRequest сохраняет новую заявку и возвращает присвоенный id.
// Дедупликации нет: одинаковые конкурентные заявки дают независимые записи.
func (s *Store) CreateRequest(ctx context.Context, req *domain.VerificationRequest) (int64, error) {
	query := `INSERT INTO verification_requests
	          (requesting_actor_id, target_id, verification_type, status, expiration_time, created_at, details)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	var id int64
	err := s.pool.QueryRow(ctx, query,
		req.RequestingActorID,
		req.TargetID,
		req.VerificationType,
		req.Status,
		req.ExpirationTime,
		req.CreatedAt,
		req.Details,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("postgres: failed to create verification request: %w", err)
	}
	return id, nil
}

// FindActiveRequests — заявки актера, по которым еще можно принять решение.
// Активность считается на чтении: PENDING и не истек срок.
func (s *Store) FindActiveRequests(ctx context.Context, actorID int64) ([]*domain.VerificationRequest, error) {
	query := `SELECT ` + verificationColumns + `
	          FROM verification_requests
	          WHERE requesting_actor_id = $1
	            AND status = 'PENDING'
	            AND expiration_time > NOW()
	          ORDER BY created_at DESC`

	return s.queryRequests(ctx, query, actorID)
}

// FindInactiveRequests — история актера: решенные заявки и просроченные PENDING.
// Просроченная заявка остается PENDING навсегда — в EXPIRED никто не переводит.
func (s *Store) FindInactiveRequests(ctx context.Context, actorID int64) ([]*domain.VerificationRequest, error) {
	query := `SELECT ` + verificationColumns + `
	          FROM verification_requests
	          WHERE requesting_actor_id = $1
	            AND (status != 'PENDING' OR expiration_time <= NOW())
	          ORDER BY created_at DESC`

	return s.queryRequests(ctx, query, actorID)
}

// FindActiveRequest ищет конкретную заявку, принадлежащую актеру и еще активную.
// Возвращает (nil, nil), если такой нет — различение «не найдено» и сбоя БД
// остается за сервисом.
func (s *Store) FindActiveRequest(ctx context.Context, id, actorID int64) (*domain.VerificationRequest, error) {
	query := `SELECT ` + verificationColumns + `
	          FROM verification_requests
	          WHERE id = $1
	            AND requesting_actor_id = $2
	            AND status = 'PENDING'
	            AND expiration_time > NOW()`

	row := s.pool.QueryRow(ctx, query, id, actorID)
	req, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("postgres: failed to fetch verification request: %w", err)
	}
	return req, nil
}

// MarkDecided фиксирует решение условным UPDATE.
// Условие WHERE status = 'PENDING' AND expiration_time > NOW() гарантирует
// не более одного победителя при гонке approve/deny (Double Decision).
func (s *Store) MarkDecided(ctx context.Context, id int64, status domain.VerificationStatus) (bool, error) {
	query := `UPDATE verification_requests
	          SET status = $1
	          WHERE id = $2
	            AND status = 'PENDING'
	            AND expiration_time > NOW()`

	tag, err := s.pool.Exec(ctx, query, status, id)
	if err != nil {
		return false, fmt.Errorf("postgres: failed to update verification status: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*domain.VerificationRequest, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("postgres: failed to query verification requests: %w", err)
	}
	defer rows.Close()

	// Инициализируем пустой слайс, чтобы в JSON был [] вместо null
	results := make([]*domain.VerificationRequest, 0)

	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("postgres: failed to scan verification request: %w", err)
		}
		results = append(results, req)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: rows iteration error: %w", err)
	}

	return results, nil
}

func scanRequest(row pgx.Row) (*domain.VerificationRequest, error) {
	var req domain.VerificationRequest
	err := row.Scan(
		&req.ID,
		&req.RequestingActorID,
		&req.TargetID,
		&req.VerificationType,
		&req.Status,
		&req.ExpirationTime,
		&req.CreatedAt,
		&req.Details,
	)
	if err != nil {
		return nil, err
	}
	return &req, nil
}
