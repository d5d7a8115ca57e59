package application

import "errors"

var (
	// ErrInvalidRequest signals a malformed notification request. Retrying will not help.
	ErrInvalidRequest = errors.New("invalid notification request")
	// ErrOrderNotFound signals the order vanished before it could be announced.
	ErrOrderNotFound = errors.New("order not found for notification")
)

// Permanent reports whether an error from Deliver should not be retried.
func Permanent(err error) bool {
	return errors.Is(err, ErrInvalidRequest) || errors.Is(err, ErrOrderNotFound)
}
