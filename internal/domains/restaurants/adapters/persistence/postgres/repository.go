package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/ports"
	platformpostgres "github.com/Apurer/food-marketplace-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists restaurants in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Schema is owned by platform/migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type menuItemRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	ImageURL string `json:"imageUrl,omitempty"`
}

type restaurantRecord struct {
	ID                    string           `gorm:"primaryKey;column:id;type:varchar(64)"`
	ManagerID             string           `gorm:"column:manager_id;type:varchar(64);uniqueIndex"`
	Name                  string           `gorm:"column:name"`
	City                  string           `gorm:"column:city;index:idx_restaurants_city_approval"`
	Country               string           `gorm:"column:country"`
	DeliveryPrice         int64            `gorm:"column:delivery_price"`
	EstimatedDeliveryTime int              `gorm:"column:estimated_delivery_time"`
	Cuisines              pq.StringArray   `gorm:"column:cuisines;type:text[]"`
	MenuItems             []menuItemRecord `gorm:"column:menu_items;serializer:json;type:jsonb"`
	ImageURL              string           `gorm:"column:image_url"`
	ApprovalStatus        string           `gorm:"column:approval_status;type:varchar(16);index:idx_restaurants_city_approval"`
	LastUpdated           time.Time        `gorm:"column:last_updated;index"`
}

func (restaurantRecord) TableName() string { return "restaurants" }

// Create inserts a restaurant; a second listing for the same manager is rejected by the unique index.
func (r *Repository) Create(ctx context.Context, restaurant *domain.Restaurant) (*domain.Restaurant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if restaurant == nil {
		return nil, errors.New("restaurant is nil")
	}
	if err := restaurant.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(restaurant)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if platformpostgres.IsUniqueViolation(err) {
			return nil, ports.ErrAlreadyExists
		}
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// Update overwrites the editable columns of an existing restaurant.
func (r *Repository) Update(ctx context.Context, restaurant *domain.Restaurant) (*domain.Restaurant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if restaurant == nil {
		return nil, errors.New("restaurant is nil")
	}
	if err := restaurant.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(restaurant)
	result := r.db.WithContext(ctx).
		Model(&restaurantRecord{ID: record.ID}).
		Select("name", "city", "country", "delivery_price", "estimated_delivery_time",
			"cuisines", "menu_items", "image_url", "approval_status", "last_updated").
		Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a restaurant by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.Restaurant, error) {
	return r.first(ctx, "id = ?", strings.TrimSpace(id))
}

// GetByManager fetches the restaurant owned by a manager.
func (r *Repository) GetByManager(ctx context.Context, managerID string) (*domain.Restaurant, error) {
	return r.first(ctx, "manager_id = ?", strings.TrimSpace(managerID))
}

func (r *Repository) first(ctx context.Context, query string, arg string) (*domain.Restaurant, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record restaurantRecord
	if err := r.db.WithContext(ctx).First(&record, query, arg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres restaurant repository not configured")
	}
	return nil
}

func toRecord(restaurant *domain.Restaurant) restaurantRecord {
	items := make([]menuItemRecord, 0, len(restaurant.MenuItems))
	for _, item := range restaurant.MenuItems {
		items = append(items, menuItemRecord{ID: item.ID, Name: item.Name, Price: item.Price, ImageURL: item.ImageURL})
	}
	return restaurantRecord{
		ID:                    restaurant.ID,
		ManagerID:             restaurant.ManagerID,
		Name:                  restaurant.Name,
		City:                  restaurant.City,
		Country:               restaurant.Country,
		DeliveryPrice:         restaurant.DeliveryPrice,
		EstimatedDeliveryTime: restaurant.EstimatedDeliveryTime,
		Cuisines:              pq.StringArray(restaurant.Cuisines),
		MenuItems:             items,
		ImageURL:              restaurant.ImageURL,
		ApprovalStatus:        string(restaurant.ApprovalStatus),
		LastUpdated:           restaurant.LastUpdated,
	}
}

func (r restaurantRecord) toDomain() *domain.Restaurant {
	items := make([]domain.MenuItem, 0, len(r.MenuItems))
	for _, item := range r.MenuItems {
		items = append(items, domain.MenuItem{ID: item.ID, Name: item.Name, Price: item.Price, ImageURL: item.ImageURL})
	}
	return &domain.Restaurant{
		ID:                    r.ID,
		ManagerID:             r.ManagerID,
		Name:                  r.Name,
		City:                  r.City,
		Country:               r.Country,
		DeliveryPrice:         r.DeliveryPrice,
		EstimatedDeliveryTime: r.EstimatedDeliveryTime,
		Cuisines:              append([]string(nil), r.Cuisines...),
		MenuItems:             items,
		ImageURL:              r.ImageURL,
		ApprovalStatus:        domain.ApprovalStatus(r.ApprovalStatus),
		LastUpdated:           r.LastUpdated,
	}
}
