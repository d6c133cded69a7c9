package paystack

import (
	"errors"
	"fmt"
)

// ErrAccountNotResolved is returned by ResolveAccount when the gateway rejects the account details.
var ErrAccountNotResolved = errors.New("paystack: could not resolve account")

// TransportError covers every failed exchange with the gateway: network errors, timeouts,
// non-2xx answers, status=false payloads and malformed bodies. Callers treat it as retryable.
type TransportError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.Err != nil && e.StatusCode != 0:
		return fmt.Sprintf("paystack %s: status %d: %v", e.Op, e.StatusCode, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("paystack %s: %v", e.Op, e.Err)
	case e.StatusCode != 0:
		return fmt.Sprintf("paystack %s: status %d: %s", e.Op, e.StatusCode, e.Message)
	default:
		return fmt.Sprintf("paystack %s: %s", e.Op, e.Message)
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport reports whether err is (or wraps) a *TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
