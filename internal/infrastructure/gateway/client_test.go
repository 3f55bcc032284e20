package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/config"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*HTTPClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(config.GatewayConfig{
		BaseURL:     server.URL,
		PublicID:    "pk_test",
		APISecret:   "secret",
		ConnTimeout: 30 * time.Second,
	})
	return client, server
}

func TestHTTPClient_Confirm(t *testing.T) {
	t.Run("sends transaction id and amount with basic auth", func(t *testing.T) {
		var gotPath string
		var gotAuth string
		var gotBody map[string]any
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			json.NewEncoder(w).Encode(apiResponse{Success: true})
		})

		result, err := client.Confirm(context.Background(), "12345", 100000)

		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, "/payments/confirm", gotPath)
		assert.Equal(t, "Basic "+basicAuth("pk_test", "secret"), gotAuth)
		assert.EqualValues(t, 12345, gotBody["TransactionId"])
		assert.EqualValues(t, 1000, gotBody["Amount"])
	})

	t.Run("omits amount for a full confirm", func(t *testing.T) {
		var gotBody map[string]any
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			json.NewEncoder(w).Encode(apiResponse{Success: true})
		})

		_, err := client.Confirm(context.Background(), "12345", 0)

		require.NoError(t, err)
		assert.NotContains(t, gotBody, "Amount")
	})

	t.Run("surfaces provider rejection in the result, not an error", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(apiResponse{Success: false, Message: "Transaction not found"})
		})

		result, err := client.Confirm(context.Background(), "12345", 0)

		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "Transaction not found", result.Message)
	})

	t.Run("wraps HTTP failures in GatewayError", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := client.Confirm(context.Background(), "12345", 0)

		gwErr, ok := IsGatewayError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusBadGateway, gwErr.StatusCode)
		assert.True(t, gwErr.IsRetryable())
	})

	t.Run("rejects non-numeric transaction ids locally", func(t *testing.T) {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("request should not reach the gateway")
		})

		_, err := client.Confirm(context.Background(), "not-a-number", 0)

		_, ok := IsGatewayError(err)
		assert.True(t, ok)
	})
}

func TestHTTPClient_Refund(t *testing.T) {
	t.Run("sends decimal amount", func(t *testing.T) {
		var gotPath string
		var gotBody map[string]any
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
			json.NewEncoder(w).Encode(apiResponse{Success: true})
		})

		_, err := client.Refund(context.Background(), "12345", 50050)

		require.NoError(t, err)
		assert.Equal(t, "/payments/refund", gotPath)
		assert.InDelta(t, 500.50, gotBody["Amount"], 0.001)
	})
}

func TestHTTPClient_WidgetData(t *testing.T) {
	t.Run("builds widget payload from the order", func(t *testing.T) {
		client := NewClient(config.GatewayConfig{
			BaseURL:     "https://api.example",
			PublicID:    "pk_test",
			APISecret:   "secret",
			ConnTimeout: 30 * time.Second,
		})
		order, err := domain.NewOrder("MS1700000000", "MS-20231114-0042", "skater@example.com", 150000, "RUB")
		require.NoError(t, err)

		widget, err := client.WidgetData(order)

		require.NoError(t, err)
		assert.Equal(t, "pk_test", widget.PublicID)
		assert.Equal(t, "1500.00", widget.Amount)
		assert.Equal(t, "MS1700000000", widget.InvoiceID)
		assert.Equal(t, "skater@example.com", widget.Email)
	})

	t.Run("fails without credentials", func(t *testing.T) {
		client := NewClient(config.GatewayConfig{BaseURL: "https://api.example", ConnTimeout: 30 * time.Second})
		order, err := domain.NewOrder("MS1700000000", "MS-20231114-0042", "skater@example.com", 150000, "RUB")
		require.NoError(t, err)

		_, err = client.WidgetData(order)

		assert.ErrorIs(t, err, ErrNotConfigured)
	})
}
