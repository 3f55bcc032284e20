package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/config"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
)

// RetryClient retries transport-level gateway failures. Provider business
// rejections come back as successful calls with Success=false and are never
// retried.
type RetryClient struct {
	inner      application.GatewayClient
	baseDelay  time.Duration
	maxRetries int
}

func NewRetryClient(inner application.GatewayClient, cfg config.RetryConfig) application.GatewayClient {
	return &RetryClient{
		inner:      inner,
		baseDelay:  time.Duration(cfg.BaseDelay) * time.Second,
		maxRetries: int(cfg.MaxRetries),
	}
}

func (r *RetryClient) WidgetData(order *domain.Order) (*application.WidgetData, error) {
	// Pure local computation, nothing to retry.
	return r.inner.WidgetData(order)
}

func (r *RetryClient) Confirm(ctx context.Context, transactionID string, amountCents int64) (*application.GatewayResult, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.GatewayResult, error) {
		return r.inner.Confirm(ctx, transactionID, amountCents)
	})
}

func (r *RetryClient) Void(ctx context.Context, transactionID string) (*application.GatewayResult, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.GatewayResult, error) {
		return r.inner.Void(ctx, transactionID)
	})
}

func (r *RetryClient) Refund(ctx context.Context, transactionID string, amountCents int64) (*application.GatewayResult, error) {
	return retry(r, ctx, func(ctx context.Context) (*application.GatewayResult, error) {
		return r.inner.Refund(ctx, transactionID, amountCents)
	})
}

// Generic retry helper
func retry[T any](r *RetryClient, ctx context.Context, operation func(ctx context.Context) (*T, error)) (*T, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		resp, err := operation(ctx)
		if err == nil {
			return resp, nil
		}

		lastErr = err

		if !isRetryable(err) {
			return nil, err
		}

		if attempt < r.maxRetries-1 {
			time.Sleep(r.backoff(attempt))
		}
	}

	return nil, fmt.Errorf("maximum retries exceeded: %w", lastErr)
}

// Helper: to check retryable errors
func isRetryable(err error) bool {
	if errors.Is(err, ErrNotConfigured) {
		return false
	}

	if gwErr, ok := IsGatewayError(err); ok {
		return gwErr.IsRetryable()
	}

	if errors.Is(err, context.Canceled) {
		return false
	}

	return true
}

// Backoff calculation with exponential delay and jitter
func (r *RetryClient) backoff(attempt int) time.Duration {
	base := r.baseDelay * time.Duration(1<<attempt)

	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond

	return base + jitter
}
