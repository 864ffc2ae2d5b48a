package audit

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Storage определяет, куда физически сохраняется журнал решений.
type Storage interface {
	// WriteDecisionEvents сохраняет пачку событий за один раз
	WriteDecisionEvents(ctx context.Context, events []DecisionEvent) error
}

// Recorder — то, что видит Workflow Engine: неблокирующая запись события.
type Recorder interface {
	Record(event DecisionEvent)
}

// Trail — асинхронный журнал решений. Record никогда не блокирует
// горячий путь approve/deny: события копятся в канале и пишутся в БД
// пакетами по таймеру или при заполнении буфера. При остановке канал
// закрывается и воркер дописывает остаток (Final Flush).
type Trail struct {
	ch     chan DecisionEvent
	repo   Storage
	logger *zap.Logger
	wg     sync.WaitGroup

	isClosed int32 // Атомарный флаг (0 - открыт, 1 - закрыт)
}

const (
	trailBufferSize  = 4096
	trailBatchSize   = 100
	trailFlushPeriod = 500 * time.Millisecond
)

func NewTrail(repo Storage, logger *zap.Logger) *Trail {
	return &Trail{
		ch:     make(chan DecisionEvent, trailBufferSize),
		repo:   repo,
		logger: logger.With(zap.String("mod", "audit-trail")),
	}
}

func (t *Trail) Start() {
	t.wg.Add(1)
	go t.worker()
}

// Stop «запирает» вход в канал и ждет, пока воркер всё допишет.
func (t *Trail) Stop() {
	atomic.StoreInt32(&t.isClosed, 1)

	// Даем крошечную паузу, чтобы текущие Record успели проскочить
	time.Sleep(10 * time.Millisecond)

	t.logger.Info("stopping audit trail: closing channel and flushing buffer...")
	close(t.ch)
	t.wg.Wait()
	t.logger.Info("audit trail stopped gracefully")
}

func (t *Trail) Record(event DecisionEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Атомарно проверяем, не закрыт ли канал
	if atomic.LoadInt32(&t.isClosed) == 1 {
		t.logger.Warn("decision event dropped: trail is stopping",
			zap.Int64("request_id", event.RequestID))
		return
	}

	// Переполненный буфер сбрасываем в обычный лог, а не блокируемся
	select {
	case t.ch <- event:
	default:
		t.logger.Error("audit_buffer_overflow",
			zap.Int64("request_id", event.RequestID),
			zap.String("decision", string(event.Decision)),
		)
	}
}

func (t *Trail) worker() {
	defer t.wg.Done()

	batch := make([]DecisionEvent, 0, trailBatchSize)
	ticker := time.NewTicker(trailFlushPeriod)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		// Background: основной контекст на shutdown уже может быть отменен
		if err := t.repo.WriteDecisionEvents(context.Background(), batch); err != nil {
			t.logger.Error("audit flush failed", zap.Error(err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case event, ok := <-t.ch:
			if !ok {
				// Канал закрыт в Stop(): остаток уже вычитан, дописываем и выходим
				flush()
				t.logger.Info("audit worker finished")
				return
			}
			batch = append(batch, event)
			if len(batch) >= trailBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
