package audit

import (
	"time"

	"github.com/olegmz/verigate/internal/domain"
)

// DecisionEvent — одна запись журнала решений по заявкам второго подтверждения.
// Журнал append-only и пишется после фиксации решения в основной таблице,
// поэтому потеря события не искажает состояние заявки.
type DecisionEvent struct {
	RequestID        int64                     `json:"request_id"`
	ActorID          int64                     `json:"actor_id"` // Кто принял решение
	VerificationType domain.VerificationType   `json:"verification_type"`
	Decision         domain.VerificationStatus `json:"decision"` // APPROVED или DENIED

	// Исход внешней диспетчеризации: "ok", "bank_failure", "unsupported"
	Outcome string `json:"outcome"`
	Error   string `json:"error,omitempty"`

	Timestamp time.Time `json:"timestamp"`
}
