//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/restaurants/ports"
	"github.com/Apurer/food-marketplace-api/internal/platform/migrations"
)

func setupRestaurantsPostgresContainer(t *testing.T) (*gorm.DB, func()) {
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

func TestRepository_RoundTripsMenuAndCuisines(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupRestaurantsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	restaurant, err := domain.NewRestaurant("restaurant-1", "manager-1", domain.Details{
		Name:                  "Luigi's",
		City:                  "London",
		Country:               "United Kingdom",
		DeliveryPrice:         300,
		EstimatedDeliveryTime: 30,
		Cuisines:              []string{"Italian", "Pizza"},
		MenuItems:             []domain.MenuItem{{ID: "m1", Name: "Margherita", Price: 500}},
	}, time.Now().UTC())
	require.NoError(t, err)

	saved, err := repo.Create(ctx, restaurant)
	require.NoError(t, err)
	assert.Equal(t, []string{"Italian", "Pizza"}, saved.Cuisines)

	item, ok := saved.MenuItem("m1")
	require.True(t, ok)
	assert.Equal(t, int64(500), item.Price)

	byManager, err := repo.GetByManager(ctx, "manager-1")
	require.NoError(t, err)
	assert.Equal(t, "restaurant-1", byManager.ID)

	dup, err := domain.NewRestaurant("restaurant-2", "manager-1", domain.Details{
		Name: "Other", City: "Leeds", Country: "United Kingdom", Cuisines: []string{"Thai"},
	}, time.Now().UTC())
	require.NoError(t, err)
	_, err = repo.Create(ctx, dup)
	assert.ErrorIs(t, err, ports.ErrAlreadyExists)
}

func TestRepository_UpdateApproval(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupRestaurantsPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	restaurant, err := domain.NewRestaurant("restaurant-1", "manager-1", domain.Details{
		Name: "Luigi's", City: "London", Country: "United Kingdom", Cuisines: []string{"Italian"},
	}, time.Now().UTC())
	require.NoError(t, err)
	_, err = repo.Create(ctx, restaurant)
	require.NoError(t, err)

	require.NoError(t, restaurant.SetApproval(domain.ApprovalRejected, time.Now().UTC()))
	updated, err := repo.Update(ctx, restaurant)
	require.NoError(t, err)
	assert.Equal(t, domain.ApprovalRejected, updated.ApprovalStatus)

	restaurant.ID = "missing"
	_, err = repo.Update(ctx, restaurant)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}
