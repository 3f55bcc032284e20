package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks across layers.
var (
	ErrInvalidTransition      = errors.New("invalid status transition")
	ErrInvalidAmount          = errors.New("invalid amount")
	ErrAmountMismatch         = errors.New("amount does not match order total")
	ErrAmountExceedsAvailable = errors.New("amount exceeds available balance")
	ErrOrderAlreadyClaimed    = errors.New("order already claimed by another operator")
	ErrDuplicateTransaction   = errors.New("transaction already processed")
	ErrRefundRequiresVoid     = errors.New("authorized payment must be voided, not refunded")
	ErrVoidWindowExpired      = errors.New("void window has expired")
	ErrForbidden              = errors.New("operation not permitted for this actor")
	ErrInvalidSignature       = errors.New("webhook signature verification failed")
)

// DomainError represents a business logic error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	ErrCodeInvalidTransition      = "INVALID_TRANSITION"
	ErrCodeInvalidAmount          = "INVALID_AMOUNT"
	ErrCodeAmountMismatch         = "AMOUNT_MISMATCH"
	ErrCodeAmountExceedsAvailable = "AMOUNT_EXCEEDS_AVAILABLE"
	ErrCodeOrderAlreadyClaimed    = "ORDER_ALREADY_CLAIMED"
	ErrCodeDuplicateTransaction   = "DUPLICATE_TRANSACTION"
	ErrCodeRefundRequiresVoid     = "REFUND_REQUIRES_VOID"
	ErrCodeVoidWindowExpired      = "VOID_WINDOW_EXPIRED"
	ErrCodeForbidden              = "FORBIDDEN"
	ErrCodeInvalidSignature       = "INVALID_SIGNATURE"
	ErrCodeMissingRequiredField   = "MISSING_REQUIRED_FIELD"
)

func NewInvalidTransitionError(from, to OrderStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition order from %s to %s", from, to),
		Err:     ErrInvalidTransition,
	}
}

func NewInvalidPaymentTransitionError(from, to PaymentStatus) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("cannot transition payment from %s to %s", from, to),
		Err:     ErrInvalidTransition,
	}
}

func NewInvalidAmountError(amount int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeInvalidAmount,
		Message: fmt.Sprintf("invalid amount %d", amount),
		Err:     ErrInvalidAmount,
	}
}

func NewAmountMismatchError(expected, actual int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeAmountMismatch,
		Message: fmt.Sprintf("amount mismatch: expected %d, got %d", expected, actual),
		Err:     ErrAmountMismatch,
	}
}

func NewAmountExceedsAvailableError(requested, available int64) *DomainError {
	return &DomainError{
		Code:    ErrCodeAmountExceedsAvailable,
		Message: fmt.Sprintf("requested %d exceeds available %d", requested, available),
		Err:     ErrAmountExceedsAvailable,
	}
}

func NewAlreadyClaimedError(orderNumber string) *DomainError {
	return &DomainError{
		Code:    ErrCodeOrderAlreadyClaimed,
		Message: fmt.Sprintf("order %s is already taken by another operator", orderNumber),
		Err:     ErrOrderAlreadyClaimed,
	}
}

func NewDuplicateTransactionError(transactionID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeDuplicateTransaction,
		Message: fmt.Sprintf("transaction %s was already processed", transactionID),
		Err:     ErrDuplicateTransaction,
	}
}

func NewRefundRequiresVoidError(transactionID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeRefundRequiresVoid,
		Message: fmt.Sprintf("payment %s is only authorized; void it instead of refunding", transactionID),
		Err:     ErrRefundRequiresVoid,
	}
}

func NewVoidWindowExpiredError(transactionID string) *DomainError {
	return &DomainError{
		Code:    ErrCodeVoidWindowExpired,
		Message: fmt.Sprintf("void window for payment %s has expired", transactionID),
		Err:     ErrVoidWindowExpired,
	}
}

func NewForbiddenError(role Role, action string) *DomainError {
	return &DomainError{
		Code:    ErrCodeForbidden,
		Message: fmt.Sprintf("role %s may not %s", role, action),
		Err:     ErrForbidden,
	}
}

func NewMissingRequiredFieldError(field string) *DomainError {
	return &DomainError{
		Code:    ErrCodeMissingRequiredField,
		Message: fmt.Sprintf("%s is required", field),
	}
}

// IsErrorCode checks if an error is a DomainError with a specific code
func IsErrorCode(err error, code string) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}
