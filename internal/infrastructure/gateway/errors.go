package gateway

import (
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when gateway credentials are missing.
var ErrNotConfigured = errors.New("payment gateway credentials are not configured")

// GatewayError is a transport-level failure talking to the gateway. Provider
// business rejections are not GatewayErrors; they come back in the result
// message.
type GatewayError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *GatewayError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("gateway %s failed (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("gateway %s failed (status %d)", e.Op, e.StatusCode)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

func (e *GatewayError) IsRetryable() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

func IsGatewayError(err error) (*GatewayError, bool) {
	var gwErr *GatewayError
	ok := errors.As(err, &gwErr)
	return gwErr, ok
}
