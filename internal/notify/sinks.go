package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/application"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/config"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
)

// HTTPClient allows tests to substitute the transport.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TelegramSink posts staff-facing messages to a Telegram chat through the
// bot API.
type TelegramSink struct {
	token  string
	chatID string
	client HTTPClient
}

func NewTelegramSink(cfg config.NotifyConfig) *TelegramSink {
	return &TelegramSink{
		token:  cfg.TelegramToken,
		chatID: cfg.TelegramChatID,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *TelegramSink) Name() string { return "telegram" }

func (s *TelegramSink) Deliver(ctx context.Context, event application.NotificationEvent) error {
	payload := map[string]string{
		"chat_id": s.chatID,
		"text":    formatMessage(event),
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram responded with status %d", resp.StatusCode)
	}
	return nil
}

// EmailWebhookSink forwards customer-facing events to the mail service
// webhook, which owns templates and actual SMTP delivery.
type EmailWebhookSink struct {
	url    string
	client HTTPClient
}

func NewEmailWebhookSink(cfg config.NotifyConfig) *EmailWebhookSink {
	return &EmailWebhookSink{
		url:    cfg.EmailWebhookURL,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *EmailWebhookSink) Name() string { return "email-webhook" }

func (s *EmailWebhookSink) Deliver(ctx context.Context, event application.NotificationEvent) error {
	payload := map[string]any{
		"kind":    string(event.Kind),
		"order":   event.OrderNumber,
		"email":   event.Email,
		"amount":  domain.FormatAmount(event.AmountCents),
		"details": event.Details,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("email webhook responded with status %d", resp.StatusCode)
	}
	return nil
}

func formatMessage(event application.NotificationEvent) string {
	switch event.Kind {
	case application.NotifyPaymentAuthorized:
		return fmt.Sprintf("Order %s paid: %s RUB", event.OrderNumber, domain.FormatAmount(event.AmountCents))
	case application.NotifyLinksSent:
		return fmt.Sprintf("Order %s: video links sent to %s", event.OrderNumber, event.Email)
	case application.NotifyRefundProcessed:
		return fmt.Sprintf("Order %s refunded: %s RUB", event.OrderNumber, domain.FormatAmount(event.AmountCents))
	case application.NotifyOrderCancelled:
		return fmt.Sprintf("Order %s cancelled (%s)", event.OrderNumber, event.Details)
	default:
		return fmt.Sprintf("Order %s: %s", event.OrderNumber, event.Kind)
	}
}
