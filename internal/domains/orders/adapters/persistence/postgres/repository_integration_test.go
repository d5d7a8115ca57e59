//go:build integration

package postgres

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
	"github.com/Apurer/food-marketplace-api/internal/platform/migrations"
)

func setupOrdersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("marketplace_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func placedOrder(t *testing.T, id string) *domain.Order {
	t.Helper()
	order, err := domain.NewOrder(id, "customer-1", "restaurant-1",
		[]domain.CartItem{{MenuItemID: "m1", Name: "Margherita", Quantity: 2}},
		domain.DeliveryDetails{Email: "alice@example.com", Name: "Alice", AddressLine1: "1 Main St", City: "London"},
		time.Now().UTC(),
	)
	require.NoError(t, err)
	return order
}

func TestRepository_CreateGetAndList(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Create(ctx, placedOrder(t, "order-1"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPlaced, saved.Status)
	assert.Nil(t, saved.TotalAmount)
	require.Len(t, saved.CartItems, 1)
	assert.Equal(t, int64(2), saved.CartItems[0].Quantity)

	byUser, err := repo.ListByUser(ctx, "customer-1")
	require.NoError(t, err)
	assert.Len(t, byUser, 1)

	byRestaurant, err := repo.ListByRestaurant(ctx, "restaurant-2")
	require.NoError(t, err)
	assert.Empty(t, byRestaurant)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_MarkPaidTransitionsOnce(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, placedOrder(t, "order-1"))
	require.NoError(t, err)

	var transitions int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, transitioned, err := repo.MarkPaid(ctx, "order-1", 1300)
			if err == nil && transitioned {
				atomic.AddInt32(&transitions, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&transitions))

	order, err := repo.GetByID(ctx, "order-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, order.Status)
	require.NotNil(t, order.TotalAmount)
	assert.Equal(t, int64(1300), *order.TotalAmount)

	history, err := repo.History(ctx, "order-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusPaid, history[1].To)
	assert.Equal(t, domain.SourcePayment, history[1].Source)

	_, _, err = repo.MarkPaid(ctx, "missing", 100)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UpdateStatusAppendsHistory(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, placedOrder(t, "order-1"))
	require.NoError(t, err)

	updated, err := repo.UpdateStatus(ctx, "order-1", domain.StatusInProgress, "manager-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)

	_, err = repo.UpdateStatus(ctx, "order-1", domain.StatusPaid, "manager-1")
	assert.ErrorIs(t, err, domain.ErrPaidReserved)

	_, err = repo.UpdateStatus(ctx, "missing", domain.StatusDelivered, "manager-1")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	history, err := repo.History(ctx, "order-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusPlaced, history[1].From)
	assert.Equal(t, "manager-1", history[1].ChangedBy)
}

func TestPaymentEventStore_RecordIsIdempotent(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupOrdersPostgresContainer(t)
	defer cleanup()

	store := NewPaymentEventStore(db)
	ctx := context.Background()

	seen, err := store.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, seen)

	record := ports.PaymentEventRecord{EventID: "evt_1", EventType: ports.EventCheckoutSessionCompleted, OrderID: "order-1", Outcome: ports.OutcomeConfirmed, ReceivedAt: time.Now().UTC()}
	require.NoError(t, store.Record(ctx, record))
	require.NoError(t, store.Record(ctx, record))

	seen, err = store.Seen(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, seen)
}
