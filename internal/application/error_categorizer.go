package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/domain"
	"github.com/AndryshaDenisov1488/mainstream-shop-sub000/internal/infrastructure/persistence"
)

// retryableError is satisfied by gateway transport errors without importing
// the gateway package, which itself depends on this one.
type retryableError interface {
	error
	IsRetryable() bool
}

// ErrorCategory represents the nature of an error for retry and logging
type ErrorCategory string

const (
	CategoryTransient      ErrorCategory = "TRANSIENT"
	CategoryBusinessRule   ErrorCategory = "BUSINESS_RULE"
	CategoryClientError    ErrorCategory = "CLIENT_ERROR"
	CategoryInfrastructure ErrorCategory = "INFRASTRUCTURE"
)

// CategorizeError determines error category for retry and logging purposes
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return CategoryTransient
	}
	if persistence.IsLockContention(err) {
		return CategoryTransient
	}

	if errors.Is(err, domain.ErrInvalidTransition) ||
		errors.Is(err, domain.ErrOrderAlreadyClaimed) ||
		errors.Is(err, domain.ErrRefundRequiresVoid) ||
		errors.Is(err, domain.ErrVoidWindowExpired) ||
		errors.Is(err, domain.ErrDuplicateTransaction) {
		return CategoryBusinessRule
	}

	if errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrAmountMismatch) ||
		errors.Is(err, domain.ErrAmountExceedsAvailable) ||
		errors.Is(err, domain.ErrForbidden) ||
		errors.Is(err, domain.ErrInvalidSignature) ||
		domain.IsErrorCode(err, domain.ErrCodeMissingRequiredField) {
		return CategoryClientError
	}

	if errors.Is(err, persistence.ErrOrderNotFound) ||
		errors.Is(err, persistence.ErrPaymentNotFound) {
		return CategoryClientError
	}

	var transportErr retryableError
	if errors.As(err, &transportErr) {
		if transportErr.IsRetryable() {
			return CategoryTransient
		}
		return CategoryInfrastructure
	}

	if svcErr, ok := IsServiceError(err); ok {
		switch svcErr.Code {
		case ErrCodeInvalidInput, ErrCodeForbidden, ErrCodeNotFound:
			return CategoryClientError
		case ErrCodeConflict, ErrCodeGatewayRejected:
			return CategoryBusinessRule
		case ErrCodeTimeout:
			return CategoryTransient
		case ErrCodeGateway, ErrCodeInternal:
			return CategoryInfrastructure
		}
	}

	return CategoryInfrastructure
}

// IsRetryable returns true if the error category suggests retry
func IsRetryable(err error) bool {
	return CategorizeError(err) == CategoryTransient
}

// ToHTTPStatus maps error to appropriate HTTP status code
func ToHTTPStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.HTTPStatus
	}

	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountMismatch),
		errors.Is(err, domain.ErrAmountExceedsAvailable),
		domain.IsErrorCode(err, domain.ErrCodeMissingRequiredField):
		return http.StatusBadRequest

	case errors.Is(err, domain.ErrForbidden),
		errors.Is(err, domain.ErrInvalidSignature):
		return http.StatusForbidden

	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOrderAlreadyClaimed),
		errors.Is(err, domain.ErrRefundRequiresVoid),
		errors.Is(err, domain.ErrVoidWindowExpired),
		errors.Is(err, domain.ErrDuplicateTransaction):
		return http.StatusConflict

	case errors.Is(err, persistence.ErrOrderNotFound),
		errors.Is(err, persistence.ErrPaymentNotFound):
		return http.StatusNotFound

	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	}

	var transportErr retryableError
	if errors.As(err, &transportErr) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}

// ToErrorCode returns a stable machine-readable code for API responses
func ToErrorCode(err error) string {
	if svcErr, ok := IsServiceError(err); ok {
		return svcErr.Code
	}

	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}

	if errors.Is(err, persistence.ErrOrderNotFound) {
		return "ORDER_NOT_FOUND"
	}
	if errors.Is(err, persistence.ErrPaymentNotFound) {
		return "PAYMENT_NOT_FOUND"
	}
	var transportErr retryableError
	if errors.As(err, &transportErr) {
		return "GATEWAY_ERROR"
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "TIMEOUT"
	}

	return "INTERNAL_ERROR"
}
