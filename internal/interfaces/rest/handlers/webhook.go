package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application/services"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/gateway"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
)

// Provider response codes. The gateway retries anything that is not an HTTP
// 200, so every outcome is reported in the body and the status is always OK.
const (
	codeOK                = 0
	codeOrderNotFound     = 10
	codeAmountMismatch    = 11
	codeInvalidTransition = 12
	codeInternal          = 13
)

type webhookResponse struct {
	Code int `json:"code"`
}

func (h *Handlers) WebhookCheck(c *gin.Context) {
	h.handleWebhook(c, "check", h.webhook.Check)
}

func (h *Handlers) WebhookPay(c *gin.Context) {
	h.handleWebhook(c, "pay", h.webhook.Pay)
}

func (h *Handlers) WebhookFail(c *gin.Context) {
	h.handleWebhook(c, "fail", h.webhook.Fail)
}

func (h *Handlers) WebhookConfirm(c *gin.Context) {
	h.handleWebhook(c, "confirm", h.webhook.Confirm)
}

func (h *Handlers) WebhookRefund(c *gin.Context) {
	h.handleWebhook(c, "refund", h.webhook.Refund)
}

func (h *Handlers) WebhookCancel(c *gin.Context) {
	h.handleWebhook(c, "cancel", h.webhook.Cancel)
}

func (h *Handlers) handleWebhook(
	c *gin.Context,
	kind string,
	apply func(context.Context, services.WebhookNotification) error,
) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Error("failed to read webhook body", "kind", kind, "error", err)
		c.JSON(http.StatusOK, webhookResponse{Code: codeInternal})
		return
	}

	if !h.verifySignature(c, kind, rawBody) {
		c.JSON(http.StatusOK, webhookResponse{Code: codeInternal})
		return
	}

	notification, err := parseNotification(c.ContentType(), rawBody)
	if err != nil {
		h.logger.Warn("malformed webhook payload", "kind", kind, "error", err)
		c.JSON(http.StatusOK, webhookResponse{Code: codeInternal})
		return
	}

	err = apply(c.Request.Context(), notification)
	code := webhookCode(err)
	if err != nil {
		h.logger.Warn("webhook rejected",
			"kind", kind,
			"transaction_id", notification.TransactionID,
			"invoice_id", notification.InvoiceID,
			"code", code,
			"error", err,
		)
	}

	c.JSON(http.StatusOK, webhookResponse{Code: code})
}

// verifySignature checks the HMAC over the raw body. Test mode skips the
// check for local widget development but still logs the gap.
func (h *Handlers) verifySignature(c *gin.Context, kind string, rawBody []byte) bool {
	signature := gateway.SignatureFromHeader(c.Request.Header)
	if gateway.VerifySignature(h.gatewayCfg.APISecret, rawBody, signature) {
		return true
	}

	if h.gatewayCfg.TestMode {
		h.logger.Warn("accepting webhook with invalid signature in test mode", "kind", kind)
		return true
	}

	h.logger.Warn("webhook signature verification failed",
		"kind", kind,
		"remote_addr", c.ClientIP(),
	)
	return false
}

// notificationPayload mirrors the provider's JSON field names. The amount is
// a decimal number on the wire either way.
type notificationPayload struct {
	TransactionID json.Number `json:"TransactionId"`
	InvoiceID     string      `json:"InvoiceId"`
	Amount        json.Number `json:"Amount"`
	Currency      string      `json:"Currency"`
	PaymentMethod string      `json:"PaymentMethod"`
	Reason        string      `json:"Reason"`
	Email         string      `json:"Email"`
}

// parseNotification decodes the provider payload. The provider posts
// form-encoded bodies; JSON is accepted for the newer notification format.
func parseNotification(contentType string, rawBody []byte) (services.WebhookNotification, error) {
	var p notificationPayload
	if strings.Contains(contentType, "json") {
		if err := json.Unmarshal(rawBody, &p); err != nil {
			return services.WebhookNotification{}, err
		}
	} else {
		values, err := url.ParseQuery(string(rawBody))
		if err != nil {
			return services.WebhookNotification{}, err
		}
		p = notificationPayload{
			TransactionID: json.Number(values.Get("TransactionId")),
			InvoiceID:     values.Get("InvoiceId"),
			Amount:        json.Number(values.Get("Amount")),
			Currency:      values.Get("Currency"),
			PaymentMethod: values.Get("PaymentMethod"),
			Reason:        values.Get("Reason"),
			Email:         values.Get("Email"),
		}
	}

	n := services.WebhookNotification{
		TransactionID: p.TransactionID.String(),
		InvoiceID:     p.InvoiceID,
		Currency:      p.Currency,
		Method:        domain.ResolvePaymentMethod(p.PaymentMethod),
		Reason:        p.Reason,
		Email:         p.Email,
	}

	if raw := p.Amount.String(); raw != "" {
		amount, err := domain.ParseAmount(raw)
		if err != nil {
			return services.WebhookNotification{}, err
		}
		n.AmountCents = amount
	}

	return n, nil
}

func webhookCode(err error) int {
	switch {
	case err == nil:
		return codeOK
	case errors.Is(err, persistence.ErrOrderNotFound):
		return codeOrderNotFound
	case domain.IsErrorCode(err, domain.ErrCodeAmountMismatch):
		return codeAmountMismatch
	case domain.IsErrorCode(err, domain.ErrCodeInvalidTransition),
		domain.IsErrorCode(err, domain.ErrCodeAmountExceedsAvailable),
		domain.IsErrorCode(err, domain.ErrCodeRefundRequiresVoid):
		return codeInvalidTransition
	default:
		return codeInternal
	}
}
