package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/food-marketplace-api/internal/platform/postgres"
)

var _ ports.PaymentEventStore = (*PaymentEventStore)(nil)

// PaymentEventStore keeps an audit row per processed provider event, unique on event id.
type PaymentEventStore struct {
	db *gorm.DB
}

func NewPaymentEventStore(db *gorm.DB) *PaymentEventStore {
	return &PaymentEventStore{db: db}
}

type paymentEventRecord struct {
	EventID    string    `gorm:"primaryKey;column:event_id;type:varchar(255)"`
	EventType  string    `gorm:"column:event_type;type:varchar(64)"`
	OrderID    string    `gorm:"column:order_id;type:varchar(64);index"`
	Outcome    string    `gorm:"column:outcome;type:varchar(32)"`
	ReceivedAt time.Time `gorm:"column:received_at;index"`
}

func (paymentEventRecord) TableName() string { return "payment_events" }

func (s *PaymentEventStore) Seen(ctx context.Context, eventID string) (bool, error) {
	if err := s.ensureDB(); err != nil {
		return false, err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&paymentEventRecord{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Record inserts the audit row. A concurrent insert of the same event id is not an error.
func (s *PaymentEventStore) Record(ctx context.Context, record ports.PaymentEventRecord) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	rec := paymentEventRecord{
		EventID:    record.EventID,
		EventType:  record.EventType,
		OrderID:    record.OrderID,
		Outcome:    record.Outcome,
		ReceivedAt: record.ReceivedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		if platformpostgres.IsUniqueViolation(err) {
			return nil
		}
		return err
	}
	return nil
}

func (s *PaymentEventStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres payment event store not configured")
	}
	return nil
}
