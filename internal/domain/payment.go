// Package domain encodes the order and payment entities and their lifecycles.
package domain

import (
	"slices"
	"strings"
	"time"
)

// PaymentStatus represents the current state of a payment row in the ledger.
// Payment transitions are strictly forward; a confirmed payment never returns
// to authorized.
type PaymentStatus string

const (
	PaymentAuthorized      PaymentStatus = "authorized"
	PaymentConfirmed       PaymentStatus = "confirmed"
	PaymentVoided          PaymentStatus = "voided"
	PaymentRefundedPartial PaymentStatus = "refunded_partial"
	PaymentRefundedFull    PaymentStatus = "refunded_full"
	PaymentFailed          PaymentStatus = "failed"
)

// PaymentMethod is the payment rail used for a transaction.
type PaymentMethod string

const (
	MethodCard PaymentMethod = "card"
	MethodSBP  PaymentMethod = "sbp"
)

// gatewayMethodTable maps provider method strings to internal rails. Anything
// not listed is treated as a card payment.
var gatewayMethodTable = map[string]PaymentMethod{
	"card":  MethodCard,
	"sbp":   MethodSBP,
	"qr":    MethodSBP,
	"sbpqr": MethodSBP,
}

// ResolvePaymentMethod maps a raw gateway method string to a PaymentMethod.
func ResolvePaymentMethod(raw string) PaymentMethod {
	if method, ok := gatewayMethodTable[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return method
	}
	return MethodCard
}

type Payment struct {
	ID            int64
	OrderID       int64
	TransactionID string
	AmountCents   int64
	Currency      string
	Status        PaymentStatus
	Method        PaymentMethod

	// ParentID links a refund row to the confirmed payment it reverses.
	ParentID *int64

	// ReceiptConfirmed records the finance controller's manual attestation
	// that the money actually arrived.
	ReceiptConfirmed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAuthorizedPayment creates the ledger row for a freshly authorized
// gateway transaction.
func NewAuthorizedPayment(orderID int64, transactionID string, amountCents int64, currency string, method PaymentMethod) (*Payment, error) {
	if transactionID == "" {
		return nil, NewMissingRequiredFieldError("transaction ID")
	}
	if amountCents <= 0 {
		return nil, NewInvalidAmountError(amountCents)
	}
	return &Payment{
		OrderID:       orderID,
		TransactionID: transactionID,
		AmountCents:   amountCents,
		Currency:      currency,
		Status:        PaymentAuthorized,
		Method:        method,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}, nil
}

// NewRefundPayment creates the ledger row recording a refund movement against
// a confirmed parent payment. The amount is stored positive; direction is
// carried by the status.
func NewRefundPayment(parent *Payment, transactionID string, amountCents int64, full bool) (*Payment, error) {
	if amountCents <= 0 {
		return nil, NewInvalidAmountError(amountCents)
	}
	status := PaymentRefundedPartial
	if full {
		status = PaymentRefundedFull
	}
	parentID := parent.ID
	return &Payment{
		OrderID:       parent.OrderID,
		TransactionID: transactionID,
		AmountCents:   amountCents,
		Currency:      parent.Currency,
		Status:        status,
		Method:        parent.Method,
		ParentID:      &parentID,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}, nil
}

func (p *Payment) Confirm() error {
	return p.transition(PaymentConfirmed)
}

func (p *Payment) Void() error {
	return p.transition(PaymentVoided)
}

func (p *Payment) Fail() error {
	return p.transition(PaymentFailed)
}

func (p *Payment) MarkRefundedPartial() error {
	return p.transition(PaymentRefundedPartial)
}

func (p *Payment) MarkRefundedFull() error {
	return p.transition(PaymentRefundedFull)
}

func (p *Payment) transition(target PaymentStatus) error {
	if err := p.canTransitionTo(target); err != nil {
		return err
	}
	p.Status = target
	p.UpdatedAt = time.Now()
	return nil
}

// defines the forward-only payment status machine
func (p *Payment) canTransitionTo(target PaymentStatus) error {
	switch p.Status {
	case PaymentAuthorized:
		return p.allow(target, PaymentConfirmed, PaymentVoided, PaymentFailed)
	case PaymentConfirmed:
		return p.allow(target, PaymentRefundedPartial, PaymentRefundedFull)
	case PaymentRefundedPartial:
		return p.allow(target, PaymentRefundedPartial, PaymentRefundedFull)
	}
	return NewInvalidPaymentTransitionError(p.Status, target)
}

// Helper to check allowed state transitions
func (p *Payment) allow(target PaymentStatus, allowed ...PaymentStatus) error {
	if slices.Contains(allowed, target) {
		return nil
	}
	return NewInvalidPaymentTransitionError(p.Status, target)
}

// ConfirmReceipt records the manual attestation on an already confirmed
// payment. It is a no-op transition in status terms.
func (p *Payment) ConfirmReceipt() error {
	if p.Status != PaymentConfirmed {
		return NewInvalidPaymentTransitionError(p.Status, PaymentConfirmed)
	}
	p.ReceiptConfirmed = true
	p.UpdatedAt = time.Now()
	return nil
}

// IsRefund reports whether this row records a refund movement.
func (p *Payment) IsRefund() bool {
	return p.ParentID != nil
}

// helper to identify payment statuses that are terminal
func (p *Payment) IsTerminal() bool {
	switch p.Status {
	case PaymentVoided, PaymentRefundedFull, PaymentFailed:
		return true
	default:
		return false
	}
}

// ReconstitutePayment - special constructor for loading from DB
func ReconstitutePayment(
	id, orderID int64,
	transactionID string,
	amountCents int64, currency string,
	status PaymentStatus, method PaymentMethod,
	parentID *int64, receiptConfirmed bool,
	createdAt, updatedAt time.Time,
) *Payment {
	return &Payment{
		ID:               id,
		OrderID:          orderID,
		TransactionID:    transactionID,
		AmountCents:      amountCents,
		Currency:         currency,
		Status:           status,
		Method:           method,
		ParentID:         parentID,
		ReceiptConfirmed: receiptConfirmed,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}
}
