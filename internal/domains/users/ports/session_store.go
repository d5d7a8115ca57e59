package ports

import "context"

// SessionStore maps bearer tokens to users.
type SessionStore interface {
	Save(ctx context.Context, userID, token string) error
	// Resolve returns the user id behind a live token or ErrInvalidSession.
	Resolve(ctx context.Context, token string) (string, error)
	Delete(ctx context.Context, userID string) error
}
