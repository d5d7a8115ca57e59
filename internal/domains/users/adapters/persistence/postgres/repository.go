package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/users/ports"
	platformpostgres "github.com/Apurer/food-marketplace-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists users in PostgreSQL using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. Caller manages DB lifecycle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type userRecord struct {
	ID                string    `gorm:"primaryKey;column:id;type:varchar(64)"`
	AuthSubject       string    `gorm:"column:auth_subject;uniqueIndex"`
	Email             string    `gorm:"column:email"`
	Name              string    `gorm:"column:name"`
	AddressLine1      string    `gorm:"column:address_line1"`
	City              string    `gorm:"column:city"`
	Country           string    `gorm:"column:country"`
	PhoneNumber       string    `gorm:"column:phone_number"`
	Role              string    `gorm:"column:role;type:varchar(32);index"`
	ApplicationStatus string    `gorm:"column:application_status;type:varchar(16)"`
	NotifyEmail       bool      `gorm:"column:notify_email"`
	NotifySMS         bool      `gorm:"column:notify_sms"`
	CreatedAt         time.Time `gorm:"column:created_at;index"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Create inserts a user; the auth subject is unique.
func (r *Repository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(user)
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		if platformpostgres.IsUniqueViolation(err) {
			return nil, ports.ErrAlreadyExists
		}
		return nil, err
	}
	return r.GetByID(ctx, record.ID)
}

// Update overwrites the mutable columns of a user.
func (r *Repository) Update(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user is nil")
	}
	if err := user.Validate(); err != nil {
		return nil, err
	}
	record := toRecord(user)
	result := r.db.WithContext(ctx).
		Model(&userRecord{ID: record.ID}).
		Select("email", "name", "address_line1", "city", "country", "phone_number",
			"role", "application_status", "notify_email", "notify_sms", "updated_at").
		Updates(&record)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, record.ID)
}

// GetByID fetches a user by identifier.
func (r *Repository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.first(ctx, "id = ?", strings.TrimSpace(id))
}

// GetByAuthSubject fetches a user by identity provider subject.
func (r *Repository) GetByAuthSubject(ctx context.Context, subject string) (*domain.User, error) {
	return r.first(ctx, "auth_subject = ?", strings.TrimSpace(subject))
}

// ListByRole returns all users with the role, newest first.
func (r *Repository) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []userRecord
	if err := r.db.WithContext(ctx).
		Where("role = ?", string(role)).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	users := make([]*domain.User, 0, len(records))
	for i := range records {
		users = append(users, records[i].toDomain())
	}
	return users, nil
}

func (r *Repository) first(ctx context.Context, query, arg string) (*domain.User, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record userRecord
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
		return errors.New("postgres user repository not configured")
	}
	return nil
}

func toRecord(user *domain.User) userRecord {
	return userRecord{
		ID:                user.ID,
		AuthSubject:       user.AuthSubject,
		Email:             user.Email,
		Name:              user.Name,
		AddressLine1:      user.AddressLine1,
		City:              user.City,
		Country:           user.Country,
		PhoneNumber:       user.PhoneNumber,
		Role:              string(user.Role),
		ApplicationStatus: string(user.ApplicationStatus),
		NotifyEmail:       user.NotificationPreferences.Email,
		NotifySMS:         user.NotificationPreferences.SMS,
		CreatedAt:         user.CreatedAt,
		UpdatedAt:         user.UpdatedAt,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:                r.ID,
		AuthSubject:       r.AuthSubject,
		Email:             r.Email,
		Name:              r.Name,
		AddressLine1:      r.AddressLine1,
		City:              r.City,
		Country:           r.Country,
		PhoneNumber:       r.PhoneNumber,
		Role:              domain.Role(r.Role),
		ApplicationStatus: domain.ApplicationStatus(r.ApplicationStatus),
		NotificationPreferences: domain.NotificationPreferences{
			Email: r.NotifyEmail,
			SMS:   r.NotifySMS,
		},
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
