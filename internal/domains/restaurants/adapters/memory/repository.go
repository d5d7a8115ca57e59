package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog adapter.
type Repository struct {
	mu          sync.RWMutex
	restaurants map[string]*domain.Restaurant
	byManager   map[string]string
}

func NewRepository() *Repository {
	return &Repository{
		restaurants: map[string]*domain.Restaurant{},
		byManager:   map[string]string{},
	}
}

func (r *Repository) Create(_ context.Context, restaurant *domain.Restaurant) (*domain.Restaurant, error) {
	if restaurant == nil {
		return nil, errors.New("restaurant is nil")
	}
	clone := restaurant.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byManager[clone.ManagerID]; exists {
		return nil, ports.ErrAlreadyExists
	}
	r.restaurants[clone.ID] = clone
	r.byManager[clone.ManagerID] = clone.ID
	return clone.Clone(), nil
}

func (r *Repository) Update(_ context.Context, restaurant *domain.Restaurant) (*domain.Restaurant, error) {
	if restaurant == nil {
		return nil, errors.New("restaurant is nil")
	}
	clone := restaurant.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.restaurants[clone.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone.ManagerID = existing.ManagerID
	r.restaurants[clone.ID] = clone
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	restaurant, ok := r.restaurants[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return restaurant.Clone(), nil
}

func (r *Repository) GetByManager(_ context.Context, managerID string) (*domain.Restaurant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byManager[managerID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.restaurants[id].Clone(), nil
}
