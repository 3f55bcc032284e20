package persistence

import "errors"

// Not-found sentinels live here rather than in the postgres package so the
// application layer can test for them without depending on the driver
// specifics.
var (
	ErrOrderNotFound   = errors.New("order not found")
	ErrPaymentNotFound = errors.New("payment not found")
	ErrSettingNotFound = errors.New("setting not found")
)
