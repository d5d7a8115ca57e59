// Package errors provides RFC 7807 Problem Details for HTTP APIs.
package errors

import (
	"fmt"
	"net/http"
)

// ProblemDetail represents an RFC 7807 Problem Details response.
// See: https://www.rfc-editor.org/rfc/rfc7807
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	// Extensions holds additional problem-specific properties.
	Extensions map[string]any `json:"extensions,omitempty"`
}

// Error implements the error interface.
func (p ProblemDetail) Error() string {
	if p.Detail != "" {
		return fmt.Sprintf("%s: %s", p.Title, p.Detail)
	}
	return p.Title
}

// WithDetail returns a copy with the given detail message.
func (p ProblemDetail) WithDetail(detail string) ProblemDetail {
	p.Detail = detail
	return p
}

// WithExtension returns a copy with an additional extension property.
func (p ProblemDetail) WithExtension(key string, value any) ProblemDetail {
	ext := make(map[string]any, len(p.Extensions)+1)
	for k, v := range p.Extensions {
		ext[k] = v
	}
	ext[key] = value
	p.Extensions = ext
	return p
}

// Problem type URI references.
const (
	TypeValidation       = "/problems/validation-error"
	TypeNotFound         = "/problems/not-found"
	TypeConflict         = "/problems/conflict"
	TypeInternal         = "/problems/internal-error"
	TypeUnauthorized     = "/problems/unauthorized"
	TypeForbidden        = "/problems/forbidden"
	TypeBadRequest       = "/problems/bad-request"
	TypeWebhookSignature = "/problems/webhook-signature"
	TypePaymentProvider  = "/problems/payment-provider"
)

func problem(typ, title string, status int) ProblemDetail {
	return ProblemDetail{Type: typ, Title: title, Status: status}
}

var (
	ErrNotFound     = problem(TypeNotFound, "Resource Not Found", http.StatusNotFound)
	ErrValidation   = problem(TypeValidation, "Validation Error", http.StatusBadRequest)
	ErrBadRequest   = problem(TypeBadRequest, "Bad Request", http.StatusBadRequest)
	ErrConflict     = problem(TypeConflict, "Conflict", http.StatusConflict)
	ErrInternal     = problem(TypeInternal, "Internal Server Error", http.StatusInternalServerError)
	ErrUnauthorized = problem(TypeUnauthorized, "Unauthorized", http.StatusUnauthorized)
	ErrForbidden    = problem(TypeForbidden, "Forbidden", http.StatusForbidden)

	// ErrWebhookSignature rejects payment callbacks that fail verification.
	ErrWebhookSignature = problem(TypeWebhookSignature, "Invalid Webhook Signature", http.StatusBadRequest)
	// ErrPaymentProvider reports that the hosted checkout could not be created.
	ErrPaymentProvider = problem(TypePaymentProvider, "Payment Provider Error", http.StatusInternalServerError)
)

// NewNotFoundProblem names the resource type only; identifiers are echoed through Instance.
func NewNotFoundProblem(resourceType string) ProblemDetail {
	return ErrNotFound.
		WithDetail(fmt.Sprintf("%s not found", resourceType)).
		WithExtension("resourceType", resourceType)
}
