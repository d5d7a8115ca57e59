package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory order ledger. All transitions run under one lock so
// the placed -> paid check and write are atomic.
type Repository struct {
	mu      sync.RWMutex
	orders  map[string]*domain.Order
	history map[string][]domain.StatusChange
	now     func() time.Time
}

func NewRepository() *Repository {
	return &Repository{
		orders:  map[string]*domain.Order{},
		history: map[string][]domain.StatusChange{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (r *Repository) WithClock(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

func (r *Repository) Create(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil {
		return nil, errors.New("order is nil")
	}
	clone := order.Clone()
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[clone.ID]; exists {
		return nil, errors.New("order already exists")
	}
	r.orders[clone.ID] = clone
	r.history[clone.ID] = append(r.history[clone.ID], domain.StatusChange{
		OrderID:   clone.ID,
		To:        clone.Status,
		ChangedBy: clone.UserID,
		Source:    domain.SourceCheckout,
		At:        clone.CreatedAt,
	})
	return clone.Clone(), nil
}

func (r *Repository) GetByID(_ context.Context, id string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return order.Clone(), nil
}

func (r *Repository) MarkPaid(_ context.Context, id string, amount int64) (*domain.Order, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, false, ports.ErrNotFound
	}
	if order.Status != domain.StatusPlaced {
		return order.Clone(), false, nil
	}
	at := r.now().UTC()
	updated := order.Clone()
	if err := updated.MarkPaid(amount, at); err != nil {
		return nil, false, err
	}
	r.orders[id] = updated
	r.history[id] = append(r.history[id], domain.StatusChange{
		OrderID: id,
		From:    domain.StatusPlaced,
		To:      domain.StatusPaid,
		Source:  domain.SourcePayment,
		At:      at,
	})
	return updated.Clone(), true, nil
}

func (r *Repository) UpdateStatus(_ context.Context, id string, status domain.Status, changedBy string) (*domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	order, ok := r.orders[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	at := r.now().UTC()
	updated := order.Clone()
	from := updated.Status
	if err := updated.SetStatus(status, at); err != nil {
		return nil, err
	}
	r.orders[id] = updated
	r.history[id] = append(r.history[id], domain.StatusChange{
		OrderID:   id,
		From:      from,
		To:        status,
		ChangedBy: changedBy,
		Source:    domain.SourceFulfillment,
		At:        at,
	})
	return updated.Clone(), nil
}

func (r *Repository) ListByUser(_ context.Context, userID string) ([]*domain.Order, error) {
	return r.filter(func(o *domain.Order) bool { return o.UserID == userID }), nil
}

func (r *Repository) ListByRestaurant(_ context.Context, restaurantID string) ([]*domain.Order, error) {
	return r.filter(func(o *domain.Order) bool { return o.RestaurantID == restaurantID }), nil
}

func (r *Repository) History(_ context.Context, id string) ([]domain.StatusChange, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.orders[id]; !ok {
		return nil, ports.ErrNotFound
	}
	return append([]domain.StatusChange(nil), r.history[id]...), nil
}

func (r *Repository) filter(match func(*domain.Order) bool) []*domain.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Order, 0)
	for _, order := range r.orders {
		if match(order) {
			list = append(list, order.Clone())
		}
	}
	return list
}
