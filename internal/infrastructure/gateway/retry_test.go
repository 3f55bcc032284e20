package gateway

import (
	"context"
	"sync"
	"testing"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/config"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClient counts calls and returns scripted results.
type stubClient struct {
	mu       sync.Mutex
	calls    int
	results  []*application.GatewayResult
	errs     []error
}

func (s *stubClient) next() (*application.GatewayResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	var result *application.GatewayResult
	var err error
	if i < len(s.results) {
		result = s.results[i]
	}
	if i < len(s.errs) {
		err = s.errs[i]
	}
	return result, err
}

func (s *stubClient) WidgetData(order *domain.Order) (*application.WidgetData, error) {
	return &application.WidgetData{}, nil
}

func (s *stubClient) Confirm(ctx context.Context, transactionID string, amountCents int64) (*application.GatewayResult, error) {
	return s.next()
}

func (s *stubClient) Void(ctx context.Context, transactionID string) (*application.GatewayResult, error) {
	return s.next()
}

func (s *stubClient) Refund(ctx context.Context, transactionID string, amountCents int64) (*application.GatewayResult, error) {
	return s.next()
}

func newRetryClient(inner application.GatewayClient) application.GatewayClient {
	return NewRetryClient(inner, config.RetryConfig{BaseDelay: 0, MaxRetries: 3})
}

func TestRetryClient(t *testing.T) {
	t.Run("retries transport failures until success", func(t *testing.T) {
		stub := &stubClient{
			results: []*application.GatewayResult{nil, {Success: true}},
			errs:    []error{&GatewayError{Op: "confirm", StatusCode: 503}, nil},
		}
		client := newRetryClient(stub)

		result, err := client.Confirm(context.Background(), "123", 0)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 2, stub.calls)
	})

	t.Run("gives up after max retries", func(t *testing.T) {
		stub := &stubClient{
			errs: []error{
				&GatewayError{Op: "void", StatusCode: 502},
				&GatewayError{Op: "void", StatusCode: 502},
				&GatewayError{Op: "void", StatusCode: 502},
			},
		}
		client := newRetryClient(stub)

		_, err := client.Void(context.Background(), "123")

		assert.Error(t, err)
		assert.Equal(t, 3, stub.calls)
	})

	t.Run("does not retry 4xx gateway responses", func(t *testing.T) {
		stub := &stubClient{
			errs: []error{&GatewayError{Op: "refund", StatusCode: 400}},
		}
		client := newRetryClient(stub)

		_, err := client.Refund(context.Background(), "123", 1000)

		assert.Error(t, err)
		assert.Equal(t, 1, stub.calls)
	})

	t.Run("does not retry missing configuration", func(t *testing.T) {
		stub := &stubClient{errs: []error{ErrNotConfigured}}
		client := newRetryClient(stub)

		_, err := client.Confirm(context.Background(), "123", 0)

		assert.ErrorIs(t, err, ErrNotConfigured)
		assert.Equal(t, 1, stub.calls)
	})

	t.Run("provider rejections pass through untouched", func(t *testing.T) {
		stub := &stubClient{
			results: []*application.GatewayResult{{Success: false, Message: "Not enough funds"}},
		}
		client := newRetryClient(stub)

		result, err := client.Confirm(context.Background(), "123", 0)

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, 1, stub.calls)
	})

	t.Run("stops on cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		stub := &stubClient{}
		client := newRetryClient(stub)

		_, err := client.Confirm(ctx, "123", 0)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Zero(t, stub.calls)
	})
}
