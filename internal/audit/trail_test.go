package audit

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/olegmz/verigate/internal/domain"
)

type memStorage struct {
	mu      sync.Mutex
	events  []DecisionEvent
	batches int
}

func (m *memStorage) WriteDecisionEvents(_ context.Context, events []DecisionEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, events...)
	m.batches++
	return nil
}

func (m *memStorage) snapshot() ([]DecisionEvent, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]DecisionEvent, len(m.events))
	copy(out, m.events)
	return out, m.batches
}

func sampleEvent(requestID int64) DecisionEvent {
	return DecisionEvent{
		RequestID:        requestID,
		ActorID:          7,
		VerificationType: domain.TypeTransfer,
		Decision:         domain.VerificationApproved,
		Outcome:          "ok",
	}
}

func TestTrailFlushesEverythingOnStop(t *testing.T) {
	storage := &memStorage{}
	trail := NewTrail(storage, zap.NewNop())
	trail.Start()

	for i := int64(1); i <= 250; i++ {
		trail.Record(sampleEvent(i))
	}
	trail.Stop()

	events, _ := storage.snapshot()
	require.Len(t, events, 250)
	assert.Equal(t, int64(1), events[0].RequestID)
	assert.Equal(t, int64(250), events[249].RequestID)
}

func TestTrailBatchesLargeBursts(t *testing.T) {
	storage := &memStorage{}
	trail := NewTrail(storage, zap.NewNop())
	trail.Start()

	for i := int64(1); i <= 250; i++ {
		trail.Record(sampleEvent(i))
	}
	trail.Stop()

	_, batches := storage.snapshot()
	// 250 событий не могут уйти одной пачкой при лимите в 100
	assert.GreaterOrEqual(t, batches, 3)
}

func TestTrailStampsMissingTimestamp(t *testing.T) {
	storage := &memStorage{}
	trail := NewTrail(storage, zap.NewNop())
	trail.Start()

	trail.Record(sampleEvent(1))
	trail.Stop()

	events, _ := storage.snapshot()
	require.Len(t, events, 1)
	assert.WithinDuration(t, time.Now(), events[0].Timestamp, time.Minute)
}

func TestTrailDropsEventsAfterStop(t *testing.T) {
	storage := &memStorage{}
	trail := NewTrail(storage, zap.NewNop())
	trail.Start()
	trail.Stop()

	// Не должно ни паниковать, ни писать в закрытый канал
	trail.Record(sampleEvent(99))

	events, _ := storage.snapshot()
	assert.Empty(t, events)
}
