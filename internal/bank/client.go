package bank

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

// Transport — единая точка исходящего вызова к банку.
// Позволяет прослоить надежность (retry, circuit breaker) между
// Client и HTTP без знания о конкретных эндпоинтах.
type Transport interface {
	Do(ctx context.Context, method, path string) error
}

// HTTPTransport — сырой REST-транспорт банковского сервиса.
// Контракт односторонний: тело ответа не интересует, любой не-2xx — отказ.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
	timeout time.Duration
}

func NewHTTPTransport(baseURL string, timeout time.Duration) *HTTPTransport {
	return &HTTPTransport{
		baseURL: baseURL,
		client:  &http.Client{},
		timeout: timeout,
	}
}

func (t *HTTPTransport) Do(ctx context.Context, method, path string) error {
	// Защитный таймаут на уровне вызова: даже если обертка выше имеет свой,
	// транспорт должен иметь свой предел
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("bank: failed to build request: %w", err)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("bank: call failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := 2 * time.Second
		if v, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && v > 0 {
			retryAfter = time.Duration(v) * time.Second
		}
		return &ThrottleError{
			RetryAfter: retryAfter,
			Cause:      fmt.Errorf("bank: %s %s returned status 429", method, path),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("bank: %s %s returned status %d", method, path, resp.StatusCode)
	}
	return nil
}

// Client — восемь односторонних вызовов банковского коллаборатора.
// Пути зафиксированы контрактом bank-service.
type Client struct {
	transport Transport
}

func NewClient(transport Transport) *Client {
	return &Client{transport: transport}
}

func (c *Client) ConfirmPayment(ctx context.Context, targetID int64) error {
	return c.transport.Do(ctx, http.MethodPost, fmt.Sprintf("/api/payment/confirm-payment/%d", targetID))
}

func (c *Client) RejectPayment(ctx context.Context, targetID int64) error {
	return c.transport.Do(ctx, http.MethodPost, fmt.Sprintf("/api/payment/reject-payment/%d", targetID))
}

func (c *Client) ConfirmTransfer(ctx context.Context, targetID int64) error {
	return c.transport.Do(ctx, http.MethodPost, fmt.Sprintf("/api/payment/confirm-transfer/%d", targetID))
}

func (c *Client) RejectTransfer(ctx context.Context, targetID int64) error {
	return c.transport.Do(ctx, http.MethodPost, fmt.Sprintf("/api/payment/reject-transfer/%d", targetID))
}

func (c *Client) ConfirmAccountLimitChange(ctx context.Context, targetID int64) error {
	return c.transport.Do(ctx, http.MethodPut, fmt.Sprintf("/api/account/%d/change-limit", targetID))
}

func (c *Client) RejectAccountLimitChange(ctx context.Context, targetID int64) error {
	return c.transport.Do(ctx, http.MethodPut, fmt.Sprintf("/api/account/%d/change-limit/reject", targetID))
}

func (c *Client) ApproveCardRequest(ctx context.Context, targetID int64) error {
	return c.transport.Do(ctx, http.MethodPut, fmt.Sprintf("/api/account/1/cards/approve/%d", targetID))
}

func (c *Client) RejectCardRequest(ctx context.Context, targetID int64) error {
	return c.transport.Do(ctx, http.MethodPut, fmt.Sprintf("/api/account/1/cards/reject/%d", targetID))
}
