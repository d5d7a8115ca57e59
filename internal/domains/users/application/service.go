package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/users/ports"
)

// Service exposes identity use cases.
type Service struct {
	repo     ports.Repository
	sessions ports.SessionStore
	now      func() time.Time
	newID    func() string
	newToken func() string
}

// Option customises the service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithTokenGenerator overrides bearer token generation.
func WithTokenGenerator(newToken func() string) Option {
	return func(s *Service) {
		if newToken != nil {
			s.newToken = newToken
		}
	}
}

func NewService(repo ports.Repository, sessions ports.SessionStore, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		sessions: sessions,
		now:      time.Now,
		newID:    uuid.NewString,
		newToken: func() string { return strings.ReplaceAll(uuid.NewString(), "-", "") },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the caller on first sight and issues their first session token.
// An existing subject only gets a session back when the request carries a
// live token that already belongs to that user.
// Admin accounts are provisioned out of band and cannot be self-registered.
func (s *Service) Register(ctx context.Context, input ports.RegisterInput) (*ports.RegisterResult, error) {
	if input.Role == domain.RoleAdmin {
		return nil, mapError(domain.ErrInvalidRole)
	}
	user, err := s.repo.GetByAuthSubject(ctx, strings.TrimSpace(input.AuthSubject))
	switch {
	case errors.Is(err, ports.ErrNotFound):
		user, created, err := s.create(ctx, input)
		if err != nil {
			return nil, err
		}
		if !created {
			return s.resume(ctx, user, input.SessionToken)
		}
		token, err := s.IssueSession(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		return &ports.RegisterResult{User: user, Token: token, Created: true}, nil
	case err != nil:
		return nil, mapError(err)
	}
	return s.resume(ctx, user, input.SessionToken)
}

// resume returns an existing user only to the holder of one of their sessions.
func (s *Service) resume(ctx context.Context, user *domain.User, token string) (*ports.RegisterResult, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, mapError(ports.ErrInvalidSession)
	}
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}
	if userID != user.ID {
		return nil, mapError(ports.ErrInvalidSession)
	}
	return &ports.RegisterResult{User: user, Token: token}, nil
}

func (s *Service) create(ctx context.Context, input ports.RegisterInput) (*domain.User, bool, error) {
	user, err := domain.NewUser(s.newID(), input.AuthSubject, input.Email, input.Role, s.now().UTC())
	if err != nil {
		return nil, false, mapError(err)
	}
	saved, err := s.repo.Create(ctx, user)
	if errors.Is(err, ports.ErrAlreadyExists) {
		// Lost a race with a concurrent first sign-in.
		existing, err := s.repo.GetByAuthSubject(ctx, user.AuthSubject)
		if err != nil {
			return nil, false, mapError(err)
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, mapError(err)
	}
	return saved, true, nil
}

// IssueSession stores a new bearer token for the user.
func (s *Service) IssueSession(ctx context.Context, userID string) (string, error) {
	token := s.newToken()
	if err := s.sessions.Save(ctx, userID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves a bearer token to its user.
func (s *Service) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, mapError(ports.ErrInvalidSession)
	}
	userID, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, mapError(err)
	}
	user, err := s.repo.GetByID(ctx, userID)
	if errors.Is(err, ports.ErrNotFound) {
		return nil, mapError(ports.ErrInvalidSession)
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) GetCurrent(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	return user, nil
}

func (s *Service) UpdateCurrent(ctx context.Context, userID string, input ports.UpdateInput) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	now := s.now().UTC()
	if err := user.UpdateProfile(input.Profile, now); err != nil {
		return nil, mapError(err)
	}
	if input.Preferences != nil {
		user.SetPreferences(*input.Preferences, now)
	}
	saved, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// ListManagers returns restaurant manager accounts, newest first.
func (s *Service) ListManagers(ctx context.Context) ([]*domain.User, error) {
	return s.repo.ListByRole(ctx, domain.RoleRestaurantManager)
}

func (s *Service) SetApplicationStatus(ctx context.Context, userID string, status domain.ApplicationStatus) (*domain.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := user.SetApplicationStatus(status, s.now().UTC()); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Update(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) Logout(ctx context.Context, userID string) error {
	if strings.TrimSpace(userID) == "" {
		return nil
	}
	return s.sessions.Delete(ctx, userID)
}

var _ ports.Service = (*Service)(nil)
