package bank

import (
	"fmt"
	"time"
)

// ThrottleError возвращается транспортом, когда банк ответил 429
// и сообщил Retry-After. Обертка надежности использует его вместо
// стандартного экспоненциального бэкоффа.
type ThrottleError struct {
	RetryAfter time.Duration
	Cause      error
}

func (e *ThrottleError) Error() string {
	return fmt.Sprintf("throttled: retry after %v (cause: %v)", e.RetryAfter, e.Cause)
}
