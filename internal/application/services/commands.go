package services

import "github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"

type CreateOrderCommand struct {
	CustomerEmail string
	TotalCents    int64
	Currency      string
	VideoItems    []string
}

// WebhookNotification is a provider webhook already parsed and
// signature-checked by the transport layer.
type WebhookNotification struct {
	TransactionID string
	InvoiceID     string // order number
	AmountCents   int64
	Currency      string
	Method        domain.PaymentMethod
	Reason        string
	Email         string
}

type CaptureCommand struct {
	OrderNumber string
	// AmountCents of zero captures the full authorized amount.
	AmountCents int64
}

type RefundCommand struct {
	OrderNumber string
	// TransactionID selects the payment to refund; empty means the order's
	// active payment.
	TransactionID string
	AmountCents   int64
	Reason        string
}

type SendLinksCommand struct {
	OrderNumber string
	Links       string
}
