package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/olegmz/verigate/internal/audit"
)

// WriteDecisionEvents пишет пачку событий журнала решений одним batch-запросом.
// Таблица append-only, конфликтов быть не может.
func (s *Store) WriteDecisionEvents(ctx context.Context, events []audit.DecisionEvent) error {
	if len(events) == 0 {
		return nil
	}

	query := `INSERT INTO decision_audit
	          (request_id, actor_id, verification_type, decision, outcome, error, decided_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)`

	batch := &pgx.Batch{}
	for _, e := range events {
		batch.Queue(query,
			e.RequestID,
			e.ActorID,
			e.VerificationType,
			e.Decision,
			e.Outcome,
			e.Error,
			e.Timestamp,
		)
	}

	if err := s.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("postgres: failed to write decision audit batch: %w", err)
	}
	return nil
}
