package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user store.
type Repository struct {
	mu        sync.RWMutex
	users     map[string]*domain.User
	bySubject map[string]string
}

func NewRepository() *Repository {
	return &Repository{users: map[string]*domain.User{}, bySubject: map[string]string{}}
}

func (r *Repository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := *user
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.bySubject[clone.AuthSubject]; exists {
		return nil, ports.ErrAlreadyExists
	}
	r.users[clone.ID] = &clone
	r.bySubject[clone.AuthSubject] = clone.ID
	out := clone
	return &out, nil
}

func (r *Repository) Update(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := *user
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[clone.ID]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone.AuthSubject = existing.AuthSubject
	clone.CreatedAt = existing.CreatedAt
	r.users[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (r *Repository) GetByAuthSubject(_ context.Context, subject string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySubject[subject]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *r.users[id]
	return &clone, nil
}

func (r *Repository) ListByRole(_ context.Context, role domain.Role) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.User, 0)
	for _, user := range r.users {
		if user.Role != role {
			continue
		}
		clone := *user
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.After(list[j].CreatedAt) })
	return list, nil
}
