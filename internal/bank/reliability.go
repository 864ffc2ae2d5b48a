package bank

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go/v5"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/olegmz/verigate/internal/infra"
	"github.com/olegmz/verigate/internal/metrics"
)

// ReliabilityWrapper оборачивает транспорт банка в rate limiter,
// circuit breaker и повторы. Повторы живут внутри ОДНОЙ диспетчеризации:
// сам Workflow Engine внешний вызов никогда не повторяет.
type ReliabilityWrapper struct {
	next    Transport
	cb      *gobreaker.CircuitBreaker
	limiter *rate.Limiter

	attempts    uint
	callTimeout time.Duration
}

func NewReliabilityWrapper(next Transport, cfg infra.BankConfig, m *metrics.Metrics) *ReliabilityWrapper {
	// Настройка предохранителя
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "bank-service",
		MaxRequests: cfg.CBMaxRequests,
		Interval:    cfg.CBInterval,
		Timeout:     cfg.CBTimeout, // Время, через которое CB попробует "закрыться"
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			// Если более 5 ошибок подряд — открываемся (блокируем трафик)
			return counts.ConsecutiveFailures > 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			if m == nil {
				return
			}
			open := 0.0
			if to == gobreaker.StateOpen {
				open = 1.0
			}
			m.CircuitBreakerState.WithLabelValues(name).Set(open)
		},
	})

	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)

	return &ReliabilityWrapper{
		next:        next,
		cb:          cb,
		limiter:     limiter,
		attempts:    cfg.RetryAttempts,
		callTimeout: cfg.CallTimeout,
	}
}

func (w *ReliabilityWrapper) Do(ctx context.Context, method, path string) error {
	// 1. Rate Limiter
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit exceeded: %w", err)
	}

	// 2. Circuit Breaker
	_, err := w.cb.Execute(func() (interface{}, error) {
		r := retry.New(
			retry.Context(ctx),
			retry.Attempts(w.attempts),
			// Умный расчет задержки
			retry.DelayType(func(n uint, err error, config retry.DelayContext) time.Duration {
				// Если банк вернул 429 с Retry-After — уважаем его
				var tErr *ThrottleError
				if errors.As(err, &tErr) {
					return tErr.RetryAfter
				}

				// В остальных случаях (сетевой лаг, 500-ка) — стандартный экспоненциальный бэкофф
				return retry.BackOffDelay(n, err, config)
			}),
		)

		retryErr := r.Do(func() error {
			tCtx, cancel := context.WithTimeout(ctx, w.callTimeout)
			defer cancel()

			return w.next.Do(tCtx, method, path)
		})

		return nil, retryErr
	})

	return err
}
