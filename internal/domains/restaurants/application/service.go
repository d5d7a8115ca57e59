package application

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/ports"
)

// Service orchestrates catalog use cases.
type Service struct {
	repo  ports.Repository
	now   func() time.Time
	newID func() string
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

// WithIDGenerator overrides restaurant and menu item id generation.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewService(repo ports.Repository, opts ...Option) *Service {
	s := &Service{repo: repo, now: time.Now, newID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	restaurant, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return restaurant, nil
}

func (s *Service) GetMine(ctx context.Context, managerID string) (*domain.Restaurant, error) {
	restaurant, err := s.repo.GetByManager(ctx, managerID)
	if err != nil {
		return nil, mapError(err)
	}
	return restaurant, nil
}

// CreateMine registers the manager's single restaurant.
func (s *Service) CreateMine(ctx context.Context, managerID string, details domain.Details) (*domain.Restaurant, error) {
	if _, err := s.repo.GetByManager(ctx, managerID); err == nil {
		return nil, mapError(ports.ErrAlreadyExists)
	} else if !errors.Is(err, ports.ErrNotFound) {
		return nil, mapError(err)
	}
	restaurant, err := domain.NewRestaurant(s.newID(), managerID, s.withMenuIDs(details), s.now().UTC())
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, restaurant)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// UpdateMine replaces the manager's listing details. Menu item ids that are resubmitted stay stable.
func (s *Service) UpdateMine(ctx context.Context, managerID string, details domain.Details) (*domain.Restaurant, error) {
	existing, err := s.repo.GetByManager(ctx, managerID)
	if err != nil {
		return nil, mapError(err)
	}
	if err := existing.Apply(s.withMenuIDs(details), s.now().UTC()); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

// SetApproval records an admin approval decision.
func (s *Service) SetApproval(ctx context.Context, id string, status domain.ApprovalStatus) (*domain.Restaurant, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	if err := existing.SetApproval(status, s.now().UTC()); err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Update(ctx, existing)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) withMenuIDs(details domain.Details) domain.Details {
	items := make([]domain.MenuItem, len(details.MenuItems))
	copy(items, details.MenuItems)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = s.newID()
		}
	}
	details.MenuItems = items
	return details
}

var _ ports.Service = (*Service)(nil)
