package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists the order ledger in PostgreSQL using GORM. Schema is owned by platform/migrations.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

type cartItemRecord struct {
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
}

// orderRecord maps the order aggregate to a relational table.
type orderRecord struct {
	ID                   string           `gorm:"primaryKey;column:id;type:varchar(64)"`
	UserID               string           `gorm:"column:user_id;type:varchar(64);index"`
	RestaurantID         string           `gorm:"column:restaurant_id;type:varchar(64);index"`
	CartItems            []cartItemRecord `gorm:"column:cart_items;serializer:json;type:jsonb"`
	DeliveryEmail        string           `gorm:"column:delivery_email"`
	DeliveryName         string           `gorm:"column:delivery_name"`
	DeliveryAddressLine1 string           `gorm:"column:delivery_address_line1"`
	DeliveryCity         string           `gorm:"column:delivery_city"`
	DeliveryPhoneNumber  string           `gorm:"column:delivery_phone_number"`
	TotalAmount          *int64           `gorm:"column:total_amount"`
	Status               string           `gorm:"column:status;type:varchar(32);index"`
	CreatedAt            time.Time        `gorm:"column:created_at;index"`
	UpdatedAt            time.Time        `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

type statusChangeRecord struct {
	ID         int64     `gorm:"primaryKey;autoIncrement;column:id"`
	OrderID    string    `gorm:"column:order_id;type:varchar(64);index"`
	FromStatus string    `gorm:"column:from_status;type:varchar(32)"`
	ToStatus   string    `gorm:"column:to_status;type:varchar(32)"`
	ChangedBy  string    `gorm:"column:changed_by;type:varchar(64)"`
	Source     string    `gorm:"column:source;type:varchar(16)"`
	ChangedAt  time.Time `gorm:"column:changed_at;index"`
}

func (statusChangeRecord) TableName() string { return "order_status_history" }

// Create inserts a placed order and its first history row in one transaction.
func (r *Repository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&record).Error; err != nil {
			return err
		}
		return tx.Create(&statusChangeRecord{
			OrderID:   record.ID,
			ToStatus:  record.Status,
			ChangedBy: record.UserID,
			Source:    string(domain.SourceCheckout),
			ChangedAt: record.CreatedAt,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches an order by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", strings.TrimSpace(id)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

// MarkPaid is a conditional write: only a row still in placed is moved to paid, so concurrent
// deliveries of the same confirmation cannot both observe a transition.
func (r *Repository) MarkPaid(ctx context.Context, id string, amount int64) (*domain.Order, bool, error) {
	if err := r.ensureDB(); err != nil {
		return nil, false, err
	}
	if amount < 0 {
		return nil, false, domain.ErrInvalidAmount
	}
	id = strings.TrimSpace(id)
	now := r.now().UTC()
	transitioned := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&orderRecord{}).
			Where("id = ? AND status = ?", id, string(domain.StatusPlaced)).
			Updates(map[string]any{
				"status":       string(domain.StatusPaid),
				"total_amount": amount,
				"updated_at":   now,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return nil
		}
		transitioned = true
		return tx.Create(&statusChangeRecord{
			OrderID:    id,
			FromStatus: string(domain.StatusPlaced),
			ToStatus:   string(domain.StatusPaid),
			Source:     string(domain.SourcePayment),
			ChangedAt:  now,
		}).Error
	})
	if err != nil {
		return nil, false, err
	}
	order, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return order, transitioned, nil
}

// UpdateStatus locks the row, applies the status and appends history.
func (r *Repository) UpdateStatus(ctx context.Context, id string, status domain.Status, changedBy string) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	id = strings.TrimSpace(id)
	now := r.now().UTC()
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current orderRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		order := current.toDomain()
		if err := order.SetStatus(status, now); err != nil {
			return err
		}
		if err := tx.Model(&orderRecord{}).
			Where("id = ?", id).
			Updates(map[string]any{"status": string(status), "updated_at": now}).Error; err != nil {
			return err
		}
		return tx.Create(&statusChangeRecord{
			OrderID:    id,
			FromStatus: current.Status,
			ToStatus:   string(status),
			ChangedBy:  changedBy,
			Source:     string(domain.SourceFulfillment),
			ChangedAt:  now,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// ListByUser returns a customer's orders, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID string) ([]*domain.Order, error) {
	return r.list(ctx, "user_id = ?", userID)
}

// ListByRestaurant returns a restaurant's orders, newest first.
func (r *Repository) ListByRestaurant(ctx context.Context, restaurantID string) ([]*domain.Order, error) {
	return r.list(ctx, "restaurant_id = ?", restaurantID)
}

// History returns the status trail of an order in the order it was recorded.
func (r *Repository) History(ctx context.Context, id string) ([]domain.StatusChange, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	var records []statusChangeRecord
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", strings.TrimSpace(id)).
		Order("changed_at ASC, id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	changes := make([]domain.StatusChange, 0, len(records))
	for _, rec := range records {
		changes = append(changes, domain.StatusChange{
			OrderID:   rec.OrderID,
			From:      domain.Status(rec.FromStatus),
			To:        domain.Status(rec.ToStatus),
			ChangedBy: rec.ChangedBy,
			Source:    domain.ChangeSource(rec.Source),
			At:        rec.ChangedAt,
		})
	}
	return changes, nil
}

func (r *Repository) list(ctx context.Context, query string, arg string) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := r.db.WithContext(ctx).Where(query, strings.TrimSpace(arg)).Order("created_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(records))
	for i := range records {
		orders = append(orders, records[i].toDomain())
	}
	return orders, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}

func toRecord(order *domain.Order) orderRecord {
	items := make([]cartItemRecord, 0, len(order.CartItems))
	for _, item := range order.CartItems {
		items = append(items, cartItemRecord{MenuItemID: item.MenuItemID, Name: item.Name, Quantity: item.Quantity})
	}
	return orderRecord{
		ID:                   order.ID,
		UserID:               order.UserID,
		RestaurantID:         order.RestaurantID,
		CartItems:            items,
		DeliveryEmail:        order.DeliveryDetails.Email,
		DeliveryName:         order.DeliveryDetails.Name,
		DeliveryAddressLine1: order.DeliveryDetails.AddressLine1,
		DeliveryCity:         order.DeliveryDetails.City,
		DeliveryPhoneNumber:  order.DeliveryDetails.PhoneNumber,
		TotalAmount:          order.TotalAmount,
		Status:               string(order.Status),
		CreatedAt:            order.CreatedAt,
		UpdatedAt:            order.UpdatedAt,
	}
}

func (r orderRecord) toDomain() *domain.Order {
	items := make([]domain.CartItem, 0, len(r.CartItems))
	for _, item := range r.CartItems {
		items = append(items, domain.CartItem{MenuItemID: item.MenuItemID, Name: item.Name, Quantity: item.Quantity})
	}
	var total *int64
	if r.TotalAmount != nil {
		amount := *r.TotalAmount
		total = &amount
	}
	return &domain.Order{
		ID:           r.ID,
		UserID:       r.UserID,
		RestaurantID: r.RestaurantID,
		CartItems:    items,
		DeliveryDetails: domain.DeliveryDetails{
			Email:        r.DeliveryEmail,
			Name:         r.DeliveryName,
			AddressLine1: r.DeliveryAddressLine1,
			City:         r.DeliveryCity,
			PhoneNumber:  r.DeliveryPhoneNumber,
		},
		TotalAmount: total,
		Status:      domain.Status(r.Status),
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
