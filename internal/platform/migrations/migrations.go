package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapters never automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&restaurantRecord{},
		&userRecord{},
		&sessionRecord{},
		&orderRecord{},
		&statusChangeRecord{},
		&paymentEventRecord{},
	)
}

type menuItemRecord struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Restaurant schema mirrors the restaurants Postgres adapter.
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

// User schema mirrors the users Postgres adapter.
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

// Session schema mirrors the session store.
type sessionRecord struct {
	Token     string     `gorm:"primaryKey;column:token;size:512"`
	UserID    string     `gorm:"column:user_id;type:varchar(64);index"`
	ExpiresAt *time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time  `gorm:"column:created_at;index"`
	UpdatedAt time.Time  `gorm:"column:updated_at;index"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

type cartItemRecord struct {
	MenuItemID string `json:"menuItemId"`
	Name       string `json:"name"`
	Quantity   int64  `json:"quantity"`
}

// Order schema mirrors the orders Postgres adapter.
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

type paymentEventRecord struct {
	EventID    string    `gorm:"primaryKey;column:event_id;type:varchar(255)"`
	EventType  string    `gorm:"column:event_type;type:varchar(64)"`
	OrderID    string    `gorm:"column:order_id;type:varchar(64);index"`
	Outcome    string    `gorm:"column:outcome;type:varchar(32)"`
	ReceivedAt time.Time `gorm:"column:received_at;index"`
}

func (paymentEventRecord) TableName() string { return "payment_events" }
