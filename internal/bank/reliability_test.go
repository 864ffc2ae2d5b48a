package bank

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegmz/verigate/internal/infra"
)

type flakyTransport struct {
	failures int
	calls    int
	err      error
}

func (f *flakyTransport) Do(_ context.Context, _, _ string) error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func testBankConfig(attempts uint) infra.BankConfig {
	return infra.BankConfig{
		CallTimeout:   time.Second,
		CBMaxRequests: 1,
		CBInterval:    time.Minute,
		CBTimeout:     time.Minute,
		RetryAttempts: attempts,
		RateLimit:     1000,
		RateBurst:     100,
	}
}

func TestWrapperRetriesThrottledCalls(t *testing.T) {
	transport := &flakyTransport{
		failures: 2,
		err:      &ThrottleError{RetryAfter: time.Millisecond, Cause: errors.New("429")},
	}
	w := NewReliabilityWrapper(transport, testBankConfig(3), nil)

	err := w.Do(context.Background(), "POST", "/x")

	require.NoError(t, err)
	assert.Equal(t, 3, transport.calls)
}

func TestWrapperGivesUpAfterAttempts(t *testing.T) {
	transport := &flakyTransport{failures: 100, err: errors.New("boom")}
	w := NewReliabilityWrapper(transport, testBankConfig(2), nil)

	err := w.Do(context.Background(), "POST", "/x")

	require.Error(t, err)
	assert.Equal(t, 2, transport.calls)
}

func TestWrapperBreakerOpensOnConsecutiveFailures(t *testing.T) {
	transport := &flakyTransport{failures: 1000, err: errors.New("boom")}
	w := NewReliabilityWrapper(transport, testBankConfig(1), nil)
	ctx := context.Background()

	// Шесть подряд отказов выбивают предохранитель
	for i := 0; i < 6; i++ {
		require.Error(t, w.Do(ctx, "POST", "/x"))
	}

	err := w.Do(ctx, "POST", "/x")
	require.ErrorIs(t, err, gobreaker.ErrOpenState)
	// Седьмой вызов до транспорта не дошел
	assert.Equal(t, 6, transport.calls)
}
