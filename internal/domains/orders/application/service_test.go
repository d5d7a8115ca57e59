package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ordermemory "github.com/Apurer/food-marketplace-api/internal/domains/orders/adapters/memory"
	"github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	"github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
	restaurantmemory "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/adapters/memory"
	restaurantdomain "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
	usermemory "github.com/Apurer/food-marketplace-api/internal/domains/users/adapters/memory"
	userdomain "github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
)

const validSignature = "t=1,v1=valid"

type fakeGateway struct {
	mu       sync.Mutex
	requests []ports.CheckoutSessionRequest
	err      error
	block    bool
	parsed   int32
}

func (g *fakeGateway) CreateCheckoutSession(ctx context.Context, req ports.CheckoutSessionRequest) (*ports.CheckoutSession, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	g.mu.Unlock()
	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if g.err != nil {
		return nil, g.err
	}
	return &ports.CheckoutSession{ID: "cs_test_1", URL: "https://checkout.example/cs_test_1"}, nil
}

func (g *fakeGateway) ParseEvent(payload []byte, signature string) (*ports.PaymentEvent, error) {
	atomic.AddInt32(&g.parsed, 1)
	if signature != validSignature {
		return nil, ports.ErrInvalidSignature
	}
	var event ports.PaymentEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, ports.ErrInvalidSignature
	}
	return &event, nil
}

func (g *fakeGateway) lastRequest(t *testing.T) ports.CheckoutSessionRequest {
	t.Helper()
	g.mu.Lock()
	defer g.mu.Unlock()
	require.NotEmpty(t, g.requests)
	return g.requests[len(g.requests)-1]
}

type fakeNotifier struct {
	confirmed atomic.Int32
	changed   atomic.Int32
	err       error
}

func (n *fakeNotifier) OrderConfirmed(context.Context, string) error {
	n.confirmed.Add(1)
	return n.err
}

func (n *fakeNotifier) OrderStatusChanged(context.Context, string, domain.Status) error {
	n.changed.Add(1)
	return n.err
}

type fixture struct {
	svc         *Service
	orders      *ordermemory.Repository
	restaurants *restaurantmemory.Repository
	users       *usermemory.Repository
	gateway     *fakeGateway
	notifier    *fakeNotifier
	events      *ordermemory.PaymentEventStore
	restaurant  *restaurantdomain.Restaurant
	customer    *userdomain.User
	manager     *userdomain.User
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	f := &fixture{
		orders:      ordermemory.NewRepository(),
		restaurants: restaurantmemory.NewRepository(),
		users:       usermemory.NewRepository(),
		gateway:     &fakeGateway{},
		notifier:    &fakeNotifier{},
		events:      ordermemory.NewPaymentEventStore(),
	}

	customer, err := userdomain.NewUser("customer-1", "auth0|customer", "customer@example.com", userdomain.RoleCustomer, now)
	require.NoError(t, err)
	require.NoError(t, customer.UpdateProfile(userdomain.Profile{Name: "Casey", AddressLine1: "1 Main St", City: "London", Country: "UK"}, now))
	f.customer, err = f.users.Create(ctx, customer)
	require.NoError(t, err)

	manager, err := userdomain.NewUser("manager-1", "auth0|manager", "manager@example.com", userdomain.RoleRestaurantManager, now)
	require.NoError(t, err)
	f.manager, err = f.users.Create(ctx, manager)
	require.NoError(t, err)

	restaurant, err := restaurantdomain.NewRestaurant("restaurant-1", f.manager.ID, restaurantdomain.Details{
		Name:                  "Pasta Place",
		City:                  "London",
		Country:               "UK",
		DeliveryPrice:         300,
		EstimatedDeliveryTime: 30,
		Cuisines:              []string{"Italian"},
		MenuItems: []restaurantdomain.MenuItem{
			{ID: "m1", Name: "Margherita", Price: 500},
			{ID: "m2", Name: "Carbonara", Price: 750},
		},
		ImageURL: "https://img.example/pasta.png",
	}, now)
	require.NoError(t, err)
	f.restaurant, err = f.restaurants.Create(ctx, restaurant)
	require.NoError(t, err)

	clock := now
	var seq atomic.Int32
	base := []Option{
		WithNotifier(f.notifier),
		WithPaymentEventStore(f.events),
		WithFrontendURL("https://shop.example/"),
		WithClock(func() time.Time {
			clock = clock.Add(time.Minute)
			return clock
		}),
		WithIDGenerator(func() string { return fmt.Sprintf("order-%d", seq.Add(1)) }),
	}
	f.svc = NewService(f.orders, f.restaurants, f.users, f.gateway, append(base, opts...)...)
	return f
}

func (f *fixture) checkoutInput(lines ...ports.CartLineInput) ports.CheckoutInput {
	return ports.CheckoutInput{
		UserID:       f.customer.ID,
		RestaurantID: f.restaurant.ID,
		DeliveryDetails: domain.DeliveryDetails{
			Email:        "customer@example.com",
			Name:         "Casey",
			AddressLine1: "1 Main St",
			City:         "London",
		},
		CartItems: lines,
	}
}

func completedEvent(t *testing.T, eventID, orderID string, amount int64) []byte {
	t.Helper()
	payload, err := json.Marshal(ports.PaymentEvent{
		ID:          eventID,
		Type:        ports.EventCheckoutSessionCompleted,
		SessionID:   "cs_test_1",
		AmountTotal: amount,
		Metadata:    map[string]string{ports.MetadataOrderID: orderID},
	})
	require.NoError(t, err)
	return payload
}

func TestCreateCheckoutSession_PricesFromMenu(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.svc.CreateCheckoutSession(ctx, f.checkoutInput(
		ports.CartLineInput{MenuItemID: "m1", Name: "Free pizza", Quantity: "2"},
		ports.CartLineInput{MenuItemID: "m2", Quantity: "1"},
	))
	require.NoError(t, err)
	require.Equal(t, "order-1", result.OrderID)
	require.Equal(t, "https://checkout.example/cs_test_1", result.URL)

	req := f.gateway.lastRequest(t)
	require.Equal(t, []ports.LineItem{
		{Name: "Margherita", UnitAmount: 500, Quantity: 2},
		{Name: "Carbonara", UnitAmount: 750, Quantity: 1},
	}, req.LineItems)
	require.Equal(t, int64(300), req.ShippingAmount)
	total, err := quoteTotal(req.LineItems, req.ShippingAmount)
	require.NoError(t, err)
	require.Equal(t, int64(2050), total)
	require.Equal(t, "order-1", req.Metadata[ports.MetadataOrderID])
	require.Equal(t, f.restaurant.ID, req.Metadata[ports.MetadataRestaurantID])
	require.Equal(t, "https://shop.example/order-status?success=true", req.SuccessURL)
	require.Equal(t, "https://shop.example/detail/restaurant-1?cancelled=true", req.CancelURL)

	order, err := f.orders.GetByID(ctx, result.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPlaced, order.Status)
	require.Nil(t, order.TotalAmount)
	require.Equal(t, "Margherita", order.CartItems[0].Name)

	history, err := f.orders.History(ctx, result.OrderID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, domain.StatusPlaced, history[0].To)
	require.Equal(t, domain.SourceCheckout, history[0].Source)
}

func TestCreateCheckoutSession_RejectsInvalidCartWithoutPersisting(t *testing.T) {
	cases := map[string]ports.CartLineInput{
		"unknown menu item":  {MenuItemID: "nope", Quantity: "1"},
		"negative quantity":  {MenuItemID: "m1", Quantity: "-1"},
		"zero quantity":      {MenuItemID: "m1", Quantity: "0"},
		"non numeric amount": {MenuItemID: "m1", Quantity: "two"},
		"fractional amount":  {MenuItemID: "m1", Quantity: "1.5"},
		"total overflows":    {MenuItemID: "m1", Quantity: "9223372036854775807"},
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.svc.CreateCheckoutSession(context.Background(), f.checkoutInput(line))
			require.ErrorIs(t, err, ErrInvalidCart)

			orders, err := f.orders.ListByUser(context.Background(), f.customer.ID)
			require.NoError(t, err)
			require.Empty(t, orders)
			require.Empty(t, f.gateway.requests)
		})
	}
}

func TestQuoteTotal(t *testing.T) {
	total, err := quoteTotal([]ports.LineItem{{Name: "Margherita", UnitAmount: 500, Quantity: 2}, {Name: "Water", UnitAmount: 0, Quantity: 3}}, 300)
	require.NoError(t, err)
	require.Equal(t, int64(1300), total)

	_, err = quoteTotal([]ports.LineItem{{Name: "Margherita", UnitAmount: 2, Quantity: math.MaxInt64/2 + 1}}, 0)
	require.ErrorIs(t, err, ErrInvalidCart)

	_, err = quoteTotal([]ports.LineItem{{Name: "Margherita", UnitAmount: 1, Quantity: math.MaxInt64}}, 1)
	require.ErrorIs(t, err, ErrInvalidCart)
}

func TestCreateCheckoutSession_EmptyCart(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.CreateCheckoutSession(context.Background(), f.checkoutInput())
	require.ErrorIs(t, err, ErrInvalidCart)
}

func TestCreateCheckoutSession_UnknownRestaurant(t *testing.T) {
	f := newFixture(t)
	input := f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"})
	input.RestaurantID = "missing"

	_, err := f.svc.CreateCheckoutSession(context.Background(), input)
	require.ErrorIs(t, err, ErrRestaurantNotFound)
	require.Empty(t, f.gateway.requests)
}

func TestCreateCheckoutSession_InvalidDeliveryDetails(t *testing.T) {
	f := newFixture(t)
	input := f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"})
	input.DeliveryDetails.Email = ""

	_, err := f.svc.CreateCheckoutSession(context.Background(), input)
	require.ErrorIs(t, err, ErrInvalidInput)
	require.ErrorIs(t, err, domain.ErrInvalidDelivery)
}

func TestCreateCheckoutSession_GatewayFailureLeavesPlacedOrder(t *testing.T) {
	f := newFixture(t)
	f.gateway.err = errors.New("provider unavailable")

	_, err := f.svc.CreateCheckoutSession(context.Background(), f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"}))
	require.ErrorIs(t, err, ErrGateway)

	orders, err := f.orders.ListByUser(context.Background(), f.customer.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, domain.StatusPlaced, orders[0].Status)
}

func TestCreateCheckoutSession_GatewayTimeout(t *testing.T) {
	f := newFixture(t, WithGatewayTimeout(20*time.Millisecond))
	f.gateway.block = true

	_, err := f.svc.CreateCheckoutSession(context.Background(), f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"}))
	require.ErrorIs(t, err, ErrGateway)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestHandlePaymentWebhook_InvalidSignatureRejectedBeforeLookup(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	checkout, err := f.svc.CreateCheckoutSession(ctx, f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"}))
	require.NoError(t, err)

	_, err = f.svc.HandlePaymentWebhook(ctx, completedEvent(t, "evt_1", checkout.OrderID, 800), "t=1,v1=forged")
	require.ErrorIs(t, err, ErrAuthentication)

	order, err := f.orders.GetByID(ctx, checkout.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPlaced, order.Status)
	require.Nil(t, order.TotalAmount)
	require.Zero(t, f.notifier.confirmed.Load())
	_, recorded := f.events.Get("evt_1")
	require.False(t, recorded)
}

func TestHandlePaymentWebhook_IgnoresOtherEventTypes(t *testing.T) {
	f := newFixture(t)
	payload, err := json.Marshal(ports.PaymentEvent{ID: "evt_2", Type: "payment_intent.created"})
	require.NoError(t, err)

	result, err := f.svc.HandlePaymentWebhook(context.Background(), payload, validSignature)
	require.NoError(t, err)
	require.Equal(t, ports.OutcomeIgnored, result.Outcome)
}

func TestHandlePaymentWebhook_UnknownOrderAcknowledged(t *testing.T) {
	f := newFixture(t)

	result, err := f.svc.HandlePaymentWebhook(context.Background(), completedEvent(t, "evt_3", "missing", 100), validSignature)
	require.NoError(t, err)
	require.Equal(t, ports.OutcomeOrderNotFound, result.Outcome)
	require.Zero(t, f.notifier.confirmed.Load())
}

func TestHandlePaymentWebhook_RedeliveryConfirmsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	checkout, err := f.svc.CreateCheckoutSession(ctx, f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"}))
	require.NoError(t, err)

	first, err := f.svc.HandlePaymentWebhook(ctx, completedEvent(t, "evt_4", checkout.OrderID, 800), validSignature)
	require.NoError(t, err)
	require.Equal(t, ports.OutcomeConfirmed, first.Outcome)

	replay, err := f.svc.HandlePaymentWebhook(ctx, completedEvent(t, "evt_4", checkout.OrderID, 800), validSignature)
	require.NoError(t, err)
	require.Equal(t, ports.OutcomeDuplicateEvent, replay.Outcome)

	resent, err := f.svc.HandlePaymentWebhook(ctx, completedEvent(t, "evt_5", checkout.OrderID, 800), validSignature)
	require.NoError(t, err)
	require.Equal(t, ports.OutcomeAlreadyProcessed, resent.Outcome)

	require.Equal(t, int32(1), f.notifier.confirmed.Load())
	history, err := f.orders.History(ctx, checkout.OrderID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, domain.StatusPaid, history[1].To)
	require.Equal(t, domain.SourcePayment, history[1].Source)
}

func TestHandlePaymentWebhook_ConcurrentDeliveriesTransitionOnce(t *testing.T) {
	f := newFixture(t)
	f.svc.events = nil
	ctx := context.Background()
	checkout, err := f.svc.CreateCheckoutSession(ctx, f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"}))
	require.NoError(t, err)

	payload := completedEvent(t, "evt_race", checkout.OrderID, 800)
	var wg sync.WaitGroup
	var confirmed atomic.Int32
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := f.svc.HandlePaymentWebhook(ctx, payload, validSignature)
			if err == nil && result.Outcome == ports.OutcomeConfirmed {
				confirmed.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), confirmed.Load())
	require.Equal(t, int32(1), f.notifier.confirmed.Load())
}

func TestHandlePaymentWebhook_NotificationFailureStillAcknowledged(t *testing.T) {
	f := newFixture(t)
	f.notifier.err = errors.New("smtp down")
	ctx := context.Background()
	checkout, err := f.svc.CreateCheckoutSession(ctx, f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"}))
	require.NoError(t, err)

	result, err := f.svc.HandlePaymentWebhook(ctx, completedEvent(t, "evt_6", checkout.OrderID, 800), validSignature)
	require.NoError(t, err)
	require.Equal(t, ports.OutcomeConfirmed, result.Outcome)
}

func TestUpdateStatus_RequiresRestaurantManager(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	checkout, err := f.svc.CreateCheckoutSession(ctx, f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"}))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, ports.UpdateStatusInput{ManagerID: f.customer.ID, OrderID: checkout.OrderID, Status: "inProgress"})
	require.ErrorIs(t, err, ErrUnauthorized)

	order, err := f.orders.GetByID(ctx, checkout.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPlaced, order.Status)
	require.Zero(t, f.notifier.changed.Load())
}

func TestUpdateStatus_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	checkout, err := f.svc.CreateCheckoutSession(ctx, f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"}))
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, ports.UpdateStatusInput{ManagerID: f.manager.ID, OrderID: "missing", Status: "inProgress"})
	require.ErrorIs(t, err, ErrOrderNotFound)

	_, err = f.svc.UpdateStatus(ctx, ports.UpdateStatusInput{ManagerID: f.manager.ID, OrderID: checkout.OrderID, Status: "cooking"})
	require.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(ctx, ports.UpdateStatusInput{ManagerID: f.manager.ID, OrderID: checkout.OrderID, Status: "paid"})
	require.ErrorIs(t, err, ErrInvalidStatus)

	order, err := f.orders.GetByID(ctx, checkout.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPlaced, order.Status)
}

func TestUpdateStatus_RecordsHistoryAndNotifies(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	checkout, err := f.svc.CreateCheckoutSession(ctx, f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"}))
	require.NoError(t, err)
	_, err = f.svc.HandlePaymentWebhook(ctx, completedEvent(t, "evt_7", checkout.OrderID, 800), validSignature)
	require.NoError(t, err)

	for _, status := range []string{"inProgress", "outForDelivery", "delivered"} {
		updated, err := f.svc.UpdateStatus(ctx, ports.UpdateStatusInput{ManagerID: f.manager.ID, OrderID: checkout.OrderID, Status: status})
		require.NoError(t, err)
		require.Equal(t, domain.Status(status), updated.Status)
	}

	history, err := f.svc.History(ctx, ports.HistoryInput{CallerID: f.customer.ID, OrderID: checkout.OrderID})
	require.NoError(t, err)
	require.Len(t, history, 5)
	last := history[len(history)-1]
	require.Equal(t, domain.StatusOutForDelivery, last.From)
	require.Equal(t, domain.StatusDelivered, last.To)
	require.Equal(t, f.manager.ID, last.ChangedBy)
	require.Equal(t, domain.SourceFulfillment, last.Source)
	require.Equal(t, int32(3), f.notifier.changed.Load())

	for _, change := range history {
		if change.To == domain.StatusPaid {
			require.Equal(t, domain.SourcePayment, change.Source)
		}
	}
}

func TestHistory_RejectsStrangers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	checkout, err := f.svc.CreateCheckoutSession(ctx, f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"}))
	require.NoError(t, err)

	_, err = f.svc.History(ctx, ports.HistoryInput{CallerID: "someone-else", OrderID: checkout.OrderID})
	require.ErrorIs(t, err, ErrUnauthorized)

	history, err := f.svc.History(ctx, ports.HistoryInput{CallerID: f.manager.ID, OrderID: checkout.OrderID})
	require.NoError(t, err)
	require.Len(t, history, 1)
}

func TestCheckoutToPaymentEndToEnd(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	checkout, err := f.svc.CreateCheckoutSession(ctx, f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "2"}))
	require.NoError(t, err)
	req := f.gateway.lastRequest(t)
	total, err := quoteTotal(req.LineItems, req.ShippingAmount)
	require.NoError(t, err)
	require.Equal(t, int64(1300), total)

	placed, err := f.orders.GetByID(ctx, checkout.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPlaced, placed.Status)
	require.Nil(t, placed.TotalAmount)

	_, err = f.svc.HandlePaymentWebhook(ctx, completedEvent(t, "evt_e2e", checkout.OrderID, 1300), validSignature)
	require.NoError(t, err)

	paid, err := f.orders.GetByID(ctx, checkout.OrderID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusPaid, paid.Status)
	require.NotNil(t, paid.TotalAmount)
	require.Equal(t, int64(1300), *paid.TotalAmount)
}

func TestListForCustomer_NewestFirstWithSummaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first, err := f.svc.CreateCheckoutSession(ctx, f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"}))
	require.NoError(t, err)
	second, err := f.svc.CreateCheckoutSession(ctx, f.checkoutInput(ports.CartLineInput{MenuItemID: "m2", Quantity: "1"}))
	require.NoError(t, err)

	views, err := f.svc.ListForCustomer(ctx, f.customer.ID)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, second.OrderID, views[0].Order.ID)
	require.Equal(t, first.OrderID, views[1].Order.ID)
	require.Equal(t, "Pasta Place", views[0].Restaurant.Name)
	require.Equal(t, int64(300), views[0].Restaurant.DeliveryPrice)
	require.Equal(t, "Casey", views[0].Customer.Name)
	require.Equal(t, "customer@example.com", views[0].Customer.Email)
}

func TestListForRestaurant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.CreateCheckoutSession(ctx, f.checkoutInput(ports.CartLineInput{MenuItemID: "m1", Quantity: "1"}))
	require.NoError(t, err)

	views, err := f.svc.ListForRestaurant(ctx, f.manager.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, f.customer.ID, views[0].Customer.ID)

	_, err = f.svc.ListForRestaurant(ctx, f.customer.ID)
	require.ErrorIs(t, err, ErrRestaurantNotFound)
}
