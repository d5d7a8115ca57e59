//go:build pact
// +build pact

package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	pacttest "github.com/Apurer/food-marketplace-api/test/pact"

	marketplaceserver "github.com/Apurer/food-marketplace-api/go"
	ordermemory "github.com/Apurer/food-marketplace-api/internal/domains/orders/adapters/memory"
	orderobs "github.com/Apurer/food-marketplace-api/internal/domains/orders/adapters/observability"
	orderapp "github.com/Apurer/food-marketplace-api/internal/domains/orders/application"
	orderdomain "github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	orderports "github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
	restaurantmemory "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/adapters/memory"
	restaurantobs "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/adapters/observability"
	restaurantapp "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/application"
	restaurantdomain "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
	usermemory "github.com/Apurer/food-marketplace-api/internal/domains/users/adapters/memory"
	userobs "github.com/Apurer/food-marketplace-api/internal/domains/users/adapters/observability"
	userapp "github.com/Apurer/food-marketplace-api/internal/domains/users/application"
	userdomain "github.com/Apurer/food-marketplace-api/internal/domains/users/domain"

	"github.com/gin-gonic/gin"
	"github.com/pact-foundation/pact-go/v2/models"
	pactprovider "github.com/pact-foundation/pact-go/v2/provider"
	"github.com/stretchr/testify/require"
)

func TestMarketplaceProviderPact(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app := newContractProviderApp(t)
	pactFile := filepath.ToSlash(pacttest.PactFile(t))
	if _, err := os.Stat(pactFile); errors.Is(err, os.ErrNotExist) {
		t.Fatalf("pact file not found at %s - run the pact consumer tests first", pactFile)
	} else {
		require.NoError(t, err)
	}

	verifier := pactprovider.NewVerifier()
	stateHandlers := models.StateHandlers{
		pacttest.StateRestaurantExists: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedRestaurant(t)
			}
			return nil, nil
		},
		pacttest.StateRestaurantMissing: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			return nil, nil
		},
		pacttest.StateCustomerHasOrder: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedRestaurant(t)
				app.seedPaidOrder(t)
			}
			return nil, nil
		},
		pacttest.StateManagerHasOrder: func(setup bool, _ models.ProviderState) (models.ProviderStateResponse, error) {
			app.reset(t)
			if setup {
				app.seedRestaurant(t)
				app.seedPaidOrder(t)
			}
			return nil, nil
		},
	}

	err := verifier.VerifyProvider(t, pactprovider.VerifyRequest{
		ProviderBaseURL: app.server.URL,
		Provider:        pacttest.ProviderName,
		PactFiles:       []string{pactFile},
		StateHandlers:   stateHandlers,
		BeforeEach: func() error {
			app.reset(t)
			return nil
		},
	})
	require.NoError(t, err)
}

type contractState struct {
	users       *usermemory.Repository
	sessions    *usermemory.SessionStore
	restaurants *restaurantmemory.Repository
	orders      *ordermemory.Repository
	router      http.Handler
}

// contractProviderApp swaps in fresh in-memory state per provider state behind one server.
type contractProviderApp struct {
	mu     sync.RWMutex
	state  *contractState
	server *httptest.Server
}

func newContractProviderApp(t testing.TB) *contractProviderApp {
	t.Helper()
	app := &contractProviderApp{}
	app.reset(t)
	app.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.mu.RLock()
		router := app.state.router
		app.mu.RUnlock()
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(app.server.Close)
	return app
}

func (a *contractProviderApp) reset(t testing.TB) {
	t.Helper()
	state := &contractState{
		users:       usermemory.NewRepository(),
		sessions:    usermemory.NewSessionStore(),
		restaurants: restaurantmemory.NewRepository(),
		orders:      ordermemory.NewRepository(),
	}
	userService := userobs.New(userapp.NewService(state.users, state.sessions))
	restaurantService := restaurantobs.New(restaurantapp.NewService(state.restaurants))
	orderService := orderobs.New(orderapp.NewService(
		state.orders,
		state.restaurants,
		state.users,
		unusedGateway{},
		orderapp.WithPaymentEventStore(ordermemory.NewPaymentEventStore()),
	))

	router := gin.New()
	router.Use(gin.Recovery())
	state.router = marketplaceserver.NewRouterWithGinEngine(router, marketplaceserver.ApiHandleFunctions{
		Authenticator: userService,
		OrderAPI:      marketplaceserver.NewOrderAPI(orderService),
		RestaurantAPI: marketplaceserver.NewRestaurantAPI(restaurantService),
		UserAPI:       marketplaceserver.NewUserAPI(userService),
		AdminAPI:      marketplaceserver.NewAdminAPI(userService, restaurantService),
		HealthAPI:     marketplaceserver.NewHealthAPI(nil),
	})

	a.mu.Lock()
	a.state = state
	a.mu.Unlock()
}

func (a *contractProviderApp) seedRestaurant(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	manager, err := userdomain.NewUser(pacttest.ManagerID, "auth0|"+pacttest.ManagerID, "manager@example.pact", userdomain.RoleRestaurantManager, now)
	require.NoError(t, err)
	_, err = a.state.users.Create(ctx, manager)
	require.NoError(t, err)
	require.NoError(t, a.state.sessions.Save(ctx, pacttest.ManagerID, pacttest.ManagerToken))

	restaurant, err := restaurantdomain.NewRestaurant(pacttest.ExistingRestaurantID, pacttest.ManagerID, restaurantdomain.Details{
		Name:                  pacttest.RestaurantName,
		City:                  "London",
		Country:               "UK",
		DeliveryPrice:         pacttest.DeliveryPrice,
		EstimatedDeliveryTime: 25,
		Cuisines:              []string{"Italian"},
		MenuItems: []restaurantdomain.MenuItem{
			{ID: pacttest.MenuItemID, Name: pacttest.MenuItemName, Price: pacttest.MenuItemPrice},
		},
	}, now)
	require.NoError(t, err)
	_, err = a.state.restaurants.Create(ctx, restaurant)
	require.NoError(t, err)
}

func (a *contractProviderApp) seedPaidOrder(t testing.TB) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	customer, err := userdomain.NewUser(pacttest.CustomerID, "auth0|"+pacttest.CustomerID, "customer@example.pact", userdomain.RoleCustomer, now)
	require.NoError(t, err)
	_, err = a.state.users.Create(ctx, customer)
	require.NoError(t, err)
	require.NoError(t, a.state.sessions.Save(ctx, pacttest.CustomerID, pacttest.CustomerToken))

	order, err := orderdomain.NewOrder(pacttest.ExistingOrderID, pacttest.CustomerID, pacttest.ExistingRestaurantID,
		[]orderdomain.CartItem{{MenuItemID: pacttest.MenuItemID, Name: pacttest.MenuItemName, Quantity: 2}},
		orderdomain.DeliveryDetails{Email: "customer@example.pact", Name: "Pact Customer", AddressLine1: "1 Contract Street", City: "London"},
		now,
	)
	require.NoError(t, err)
	_, err = a.state.orders.Create(ctx, order)
	require.NoError(t, err)
	_, _, err = a.state.orders.MarkPaid(ctx, pacttest.ExistingOrderID, pacttest.MenuItemPrice*2+pacttest.DeliveryPrice)
	require.NoError(t, err)
}

// unusedGateway backs the order service; no contract interaction reaches the payment provider.
type unusedGateway struct{}

func (unusedGateway) CreateCheckoutSession(context.Context, orderports.CheckoutSessionRequest) (*orderports.CheckoutSession, error) {
	return nil, errors.New("payment gateway not available in contract tests")
}

func (unusedGateway) ParseEvent([]byte, string) (*orderports.PaymentEvent, error) {
	return nil, errors.New("payment gateway not available in contract tests")
}
