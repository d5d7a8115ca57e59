package domain

import (
	"errors"
	"strings"
	"time"
)

// Kind identifies which order event a notification reports.
type Kind string

const (
	KindOrderConfirmed Kind = "order_confirmed"
	KindStatusChanged  Kind = "status_changed"
)

// Channel is one route a notification travels over.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelEvent Channel = "event"
)

// Channels lists every delivery route.
var Channels = []Channel{ChannelEmail, ChannelSMS, ChannelEvent}

// Validate rejects unknown channels.
func (c Channel) Validate() error {
	switch c {
	case ChannelEmail, ChannelSMS, ChannelEvent:
		return nil
	default:
		return ErrInvalidChannel
	}
}

var (
	ErrInvalidChannel = errors.New("unknown notification channel")
	ErrInvalidKind    = errors.New("notification kind must be order_confirmed or status_changed")
	ErrMissingOrderID = errors.New("notification order id is required")
	ErrMissingStatus  = errors.New("status change notifications require a status")
)

// Request asks for the customer to be told about an order event.
type Request struct {
	Kind    Kind
	OrderID string
	Status  string
}

// Validate checks the request shape.
func (r Request) Validate() error {
	if strings.TrimSpace(r.OrderID) == "" {
		return ErrMissingOrderID
	}
	switch r.Kind {
	case KindOrderConfirmed:
		return nil
	case KindStatusChanged:
		if strings.TrimSpace(r.Status) == "" {
			return ErrMissingStatus
		}
		return nil
	default:
		return ErrInvalidKind
	}
}

// EmailMessage is a rendered email with text and HTML bodies.
type EmailMessage struct {
	To      string
	Subject string
	Text    string
	HTML    string
}

// SMSMessage is a rendered text message.
type SMSMessage struct {
	To   string
	Body string
}

// OrderEvent is the broker representation of an order event.
type OrderEvent struct {
	Kind         Kind
	OrderID      string
	RestaurantID string
	UserID       string
	Status       string
	TotalAmount  *int64
	OccurredAt   time.Time
}
