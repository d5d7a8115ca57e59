package domain

import "time"

// ChangeSource identifies which workflow produced a status change.
type ChangeSource string

const (
	SourceCheckout    ChangeSource = "checkout"
	SourcePayment     ChangeSource = "payment"
	SourceFulfillment ChangeSource = "fulfillment"
)

// StatusChange is one entry of an order's status history.
type StatusChange struct {
	OrderID   string
	From      Status
	To        Status
	ChangedBy string
	Source    ChangeSource
	At        time.Time
}
