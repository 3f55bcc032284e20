package domain

import (
	"fmt"
	"time"
)

// CancelReasonTimeout marks orders cancelled by the payment-expiry sweep.
const CancelReasonTimeout = "timeout"

type Order struct {
	ID            int64
	Number        string // internal number, MS<unix-timestamp>
	DisplayNumber string // human-readable number, MS-YYYYMMDD-XXXX
	CustomerEmail string
	Status        OrderStatus

	TotalCents int64
	PaidCents  int64
	Currency   string

	// OperatorID is set exactly once when an operator claims the order.
	OperatorID *int64

	// PaymentIntentID is the gateway transaction id of the active payment.
	PaymentIntentID *string
	PaymentMethod   *PaymentMethod

	VideoLinks   *string
	RefundReason *string
	CancelReason *string
	Comments     *string

	PaymentExpiresAt *time.Time
	ProcessedAt      *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewOrder creates a draft order. Number generation lives with the caller so
// the entity stays deterministic.
func NewOrder(number, displayNumber, customerEmail string, totalCents int64, currency string) (*Order, error) {
	if number == "" {
		return nil, NewMissingRequiredFieldError("order number")
	}
	if customerEmail == "" {
		return nil, NewMissingRequiredFieldError("customer email")
	}
	if totalCents <= 0 {
		return nil, NewInvalidAmountError(totalCents)
	}
	now := time.Now()
	return &Order{
		Number:        number,
		DisplayNumber: displayNumber,
		CustomerEmail: customerEmail,
		Status:        StatusDraft,
		TotalCents:    totalCents,
		Currency:      currency,
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

func (o *Order) transition(target OrderStatus) error {
	if !CanTransition(o.Status, target) {
		return NewInvalidTransitionError(o.Status, target)
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// BeginCheckout moves the order into awaiting_payment and arms the payment
// deadline.
func (o *Order) BeginCheckout(expiresAt time.Time) error {
	if o.Status == StatusDraft {
		if err := o.transition(StatusCheckoutInitiated); err != nil {
			return err
		}
	}
	if err := o.transition(StatusAwaitingPayment); err != nil {
		return err
	}
	o.PaymentExpiresAt = &expiresAt
	return nil
}

// MarkPaid records a successful authorization from the gateway.
func (o *Order) MarkPaid(amountCents int64, transactionID string, method PaymentMethod) error {
	if err := o.transition(StatusPaid); err != nil {
		return err
	}
	o.PaidCents = amountCents
	o.PaymentIntentID = &transactionID
	o.PaymentMethod = &method
	o.PaymentExpiresAt = nil
	return nil
}

// Claim assigns the order to an operator. The operator slot is written
// exactly once; a second claim is a conflict, not a transition error.
func (o *Order) Claim(operatorID int64) error {
	if o.OperatorID != nil {
		return NewAlreadyClaimedError(o.Number)
	}
	if err := o.transition(StatusProcessing); err != nil {
		return err
	}
	o.OperatorID = &operatorID
	return nil
}

// RequestInfo parks the order while the operator waits on the customer.
func (o *Order) RequestInfo() error {
	return o.transition(StatusAwaitingInfo)
}

// ResumeProcessing returns a parked order to the operator queue.
func (o *Order) ResumeProcessing() error {
	return o.transition(StatusProcessing)
}

// MarkReady records that the videos are prepared but not yet sent.
func (o *Order) MarkReady() error {
	return o.transition(StatusReady)
}

// SendLinks records delivery of the video links. An unassigned order is
// claimed implicitly by the sender.
func (o *Order) SendLinks(operatorID int64, links string, at time.Time) error {
	if o.RefundReason != nil {
		return NewInvalidTransitionError(o.Status, StatusLinksSent)
	}
	if err := o.transition(StatusLinksSent); err != nil {
		return err
	}
	o.VideoLinks = &links
	o.ProcessedAt = &at
	if o.OperatorID == nil {
		o.OperatorID = &operatorID
	}
	return nil
}

// FlagRefund marks the order as needing a partial refund before completion.
func (o *Order) FlagRefund(reason string) error {
	if err := o.transition(StatusRefundRequired); err != nil {
		return err
	}
	o.RefundReason = &reason
	return nil
}

// UnflagRefund clears the refund flag and derives the status to return to
// from the order's own state.
func (o *Order) UnflagRefund() error {
	target := StatusPaid
	switch {
	case o.VideoLinks != nil:
		target = StatusLinksSent
	case o.OperatorID != nil:
		target = StatusProcessing
	}
	if err := o.transition(target); err != nil {
		return err
	}
	o.RefundReason = nil
	return nil
}

// CompleteFull closes the order after a full capture.
func (o *Order) CompleteFull() error {
	return o.transition(StatusCompleted)
}

// CompletePartial closes the order after a partial capture, recording the
// amount that was actually kept.
func (o *Order) CompletePartial(capturedCents int64) error {
	if capturedCents <= 0 {
		return NewInvalidAmountError(capturedCents)
	}
	if err := o.transition(StatusCompletedPartialRefund); err != nil {
		return err
	}
	o.PaidCents = capturedCents
	o.RefundReason = nil
	return nil
}

// ApplyRefund adjusts the order after a processed refund. A full refund
// zeroes the paid amount; a partial refund decrements it.
func (o *Order) ApplyRefund(refundedCents int64, full bool) error {
	if refundedCents <= 0 {
		return NewInvalidAmountError(refundedCents)
	}
	if full {
		if err := o.transition(StatusRefundedFull); err != nil {
			return err
		}
		o.PaidCents = 0
		return nil
	}
	if err := o.transition(StatusCompletedPartialRefund); err != nil {
		return err
	}
	o.PaidCents -= refundedCents
	if o.PaidCents < 0 {
		o.PaidCents = 0
	}
	o.RefundReason = nil
	return nil
}

// CancelManual cancels any non-terminal order on admin request.
func (o *Order) CancelManual(reason string) error {
	if IsTerminalStatus(o.Status) {
		return NewInvalidTransitionError(o.Status, StatusCancelledManual)
	}
	if err := o.transition(StatusCancelledManual); err != nil {
		return err
	}
	o.CancelReason = &reason
	return nil
}

// CancelExpired cancels an order whose payment window elapsed.
func (o *Order) CancelExpired() error {
	if err := o.transition(StatusCancelledUnpaid); err != nil {
		return err
	}
	reason := CancelReasonTimeout
	o.CancelReason = &reason
	return nil
}

// PaymentExpired reports whether the payment deadline has elapsed. Legacy
// rows without a deadline fall back to created-at plus the given timeout.
func (o *Order) PaymentExpired(now time.Time, legacyTimeout time.Duration) bool {
	if o.Status != StatusAwaitingPayment {
		return false
	}
	if o.PaymentExpiresAt != nil {
		return now.After(*o.PaymentExpiresAt)
	}
	return now.After(o.CreatedAt.Add(legacyTimeout))
}

// StatusLabel returns the human-readable label of the current status.
func (o *Order) StatusLabel() string {
	return StatusLabel(o.Status)
}

func (o *Order) String() string {
	return fmt.Sprintf("order %s (%s)", o.Number, o.Status)
}

// ReconstituteOrder - special constructor for loading from DB
func ReconstituteOrder(
	id int64,
	number, displayNumber, customerEmail string,
	status OrderStatus,
	totalCents, paidCents int64, currency string,
	operatorID *int64,
	paymentIntentID *string, paymentMethod *PaymentMethod,
	videoLinks, refundReason, cancelReason, comments *string,
	paymentExpiresAt, processedAt *time.Time,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		ID:               id,
		Number:           number,
		DisplayNumber:    displayNumber,
		CustomerEmail:    customerEmail,
		Status:           status,
		TotalCents:       totalCents,
		PaidCents:        paidCents,
		Currency:         currency,
		OperatorID:       operatorID,
		PaymentIntentID:  paymentIntentID,
		PaymentMethod:    paymentMethod,
		VideoLinks:       videoLinks,
		RefundReason:     refundReason,
		CancelReason:     cancelReason,
		Comments:         comments,
		PaymentExpiresAt: paymentExpiresAt,
		ProcessedAt:      processedAt,
		CreatedAt:        createdAt,
		UpdatedAt:        updatedAt,
	}
}
