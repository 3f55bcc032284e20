// Package gateway talks to the CloudPayments-style payment provider and
// verifies its webhook signatures.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/config"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
)

// VoidWindow is how long an authorization stays voidable. The provider
// rejects later voids anyway; checking locally gives a cleaner error.
const VoidWindow = 7 * 24 * time.Hour

type HTTPClient struct {
	baseURL    string
	publicID   string
	apiSecret  string
	httpClient *http.Client
}

func NewClient(cfg config.GatewayConfig) *HTTPClient {
	return &HTTPClient{
		baseURL:   cfg.BaseURL,
		publicID:  cfg.PublicID,
		apiSecret: cfg.APISecret,
		httpClient: &http.Client{
			Timeout: cfg.ConnTimeout,
		},
	}
}

// WidgetData builds the payload the storefront hands to the payment widget.
func (c *HTTPClient) WidgetData(order *domain.Order) (*application.WidgetData, error) {
	if c.publicID == "" || c.apiSecret == "" {
		return nil, ErrNotConfigured
	}
	return &application.WidgetData{
		PublicID:    c.publicID,
		Amount:      domain.FormatAmount(order.TotalCents),
		Currency:    order.Currency,
		InvoiceID:   order.Number,
		Email:       order.CustomerEmail,
		Description: fmt.Sprintf("Tournament videos, order %s", order.DisplayNumber),
	}, nil
}

// Confirm captures a previously authorized transaction. A zero amountCents
// confirms the full authorized amount.
func (c *HTTPClient) Confirm(ctx context.Context, transactionID string, amountCents int64) (*application.GatewayResult, error) {
	txnID, err := parseTransactionID(transactionID)
	if err != nil {
		return nil, err
	}
	req := confirmRequest{TransactionID: txnID}
	if amountCents > 0 {
		amount := float64(amountCents) / 100
		req.Amount = &amount
	}
	return sendRequest[confirmRequest](c, ctx, "confirm", "/payments/confirm", &req)
}

// Void releases an authorization without capturing it.
func (c *HTTPClient) Void(ctx context.Context, transactionID string) (*application.GatewayResult, error) {
	txnID, err := parseTransactionID(transactionID)
	if err != nil {
		return nil, err
	}
	req := voidRequest{TransactionID: txnID}
	return sendRequest[voidRequest](c, ctx, "void", "/payments/void", &req)
}

// Refund returns money on a captured transaction.
func (c *HTTPClient) Refund(ctx context.Context, transactionID string, amountCents int64) (*application.GatewayResult, error) {
	txnID, err := parseTransactionID(transactionID)
	if err != nil {
		return nil, err
	}
	req := refundRequest{
		TransactionID: txnID,
		Amount:        float64(amountCents) / 100,
	}
	return sendRequest[refundRequest](c, ctx, "refund", "/payments/refund", &req)
}

func parseTransactionID(transactionID string) (int64, error) {
	txnID, err := strconv.ParseInt(transactionID, 10, 64)
	if err != nil {
		return 0, &GatewayError{Op: "parse transaction id", Err: fmt.Errorf("non-numeric transaction id %q", transactionID)}
	}
	return txnID, nil
}

func sendRequest[Req any](c *HTTPClient, ctx context.Context, op, path string, reqBody *Req) (*application.GatewayResult, error) {
	if c.publicID == "" || c.apiSecret == "" {
		return nil, ErrNotConfigured
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("error marshalling json: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Basic "+basicAuth(c.publicID, c.apiSecret))

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &GatewayError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &GatewayError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", string(body)),
		}
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &GatewayError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("error decoding json response: %w", err)}
	}

	// Provider-side rejections travel in the result, not as Go errors.
	return &application.GatewayResult{
		Success: apiResp.Success,
		Message: apiResp.Message,
	}, nil
}

func basicAuth(user, password string) string {
	return base64.StdEncoding.EncodeToString([]byte(user + ":" + password))
}
