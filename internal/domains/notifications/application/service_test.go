package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/food-marketplace-api/internal/domains/notifications/domain"
	ordermemory "github.com/Apurer/food-marketplace-api/internal/domains/orders/adapters/memory"
	orderdomain "github.com/Apurer/food-marketplace-api/internal/domains/orders/domain"
	restaurantmemory "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/adapters/memory"
	restaurantdomain "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
	usermemory "github.com/Apurer/food-marketplace-api/internal/domains/users/adapters/memory"
	userdomain "github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
)

type recordingChannels struct {
	mu       sync.Mutex
	emails   []domain.EmailMessage
	sms      []domain.SMSMessage
	events   []domain.OrderEvent
	emailErr error
}

func (r *recordingChannels) SendEmail(_ context.Context, msg domain.EmailMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailErr != nil {
		return r.emailErr
	}
	r.emails = append(r.emails, msg)
	return nil
}

func (r *recordingChannels) SendSMS(_ context.Context, msg domain.SMSMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sms = append(r.sms, msg)
	return nil
}

func (r *recordingChannels) Publish(_ context.Context, event domain.OrderEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingChannels) Close() error { return nil }

type fixture struct {
	svc      *Service
	channels *recordingChannels
	orders   *ordermemory.Repository
	users    *usermemory.Repository
	order    *orderdomain.Order
}

func newFixture(t *testing.T, phone string, prefs userdomain.NotificationPreferences) *fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	restaurants := restaurantmemory.NewRepository()
	restaurant, err := restaurantdomain.NewRestaurant("restaurant-1", "manager-1", restaurantdomain.Details{
		Name: "Luigi's", City: "London", Country: "United Kingdom", DeliveryPrice: 300, Cuisines: []string{"Italian"},
	}, now)
	require.NoError(t, err)
	_, err = restaurants.Create(ctx, restaurant)
	require.NoError(t, err)

	users := usermemory.NewRepository()
	user, err := userdomain.NewUser("customer-1", "auth0|alice", "alice@example.com", userdomain.RoleCustomer, now)
	require.NoError(t, err)
	require.NoError(t, user.UpdateProfile(userdomain.Profile{
		Name: "Alice", AddressLine1: "1 Main St", City: "London", Country: "United Kingdom", PhoneNumber: "+447700900001",
	}, now))
	user.SetPreferences(prefs, now)
	_, err = users.Create(ctx, user)
	require.NoError(t, err)

	orders := ordermemory.NewRepository()
	order, err := orderdomain.NewOrder("0f8e7d6c-aaaa-bbbb-cccc-1234567890ab", "customer-1", "restaurant-1",
		[]orderdomain.CartItem{{MenuItemID: "m1", Name: "Margherita", Quantity: 2}},
		orderdomain.DeliveryDetails{Email: "alice@example.com", Name: "Alice", AddressLine1: "1 Main St", City: "London", PhoneNumber: phone},
		now,
	)
	require.NoError(t, err)
	_, err = orders.Create(ctx, order)
	require.NoError(t, err)
	_, _, err = orders.MarkPaid(ctx, order.ID, 1300)
	require.NoError(t, err)

	channels := &recordingChannels{}
	svc := NewService(orders, restaurants, users,
		WithEmailSender(channels),
		WithSMSSender(channels),
		WithEventPublisher(channels),
		WithClock(func() time.Time { return now }),
	)
	return &fixture{svc: svc, channels: channels, orders: orders, users: users, order: order}
}

func TestDeliver_ConfirmationOverAllChannels(t *testing.T) {
	f := newFixture(t, "+447700900123", userdomain.DefaultPreferences())

	err := f.svc.Deliver(context.Background(), domain.Request{Kind: domain.KindOrderConfirmed, OrderID: f.order.ID})
	require.NoError(t, err)

	require.Len(t, f.channels.emails, 1)
	email := f.channels.emails[0]
	assert.Equal(t, "alice@example.com", email.To)
	assert.Equal(t, "Order Confirmation - Luigi's", email.Subject)
	assert.Contains(t, email.Text, "Total Amount: $13.00")
	assert.Contains(t, email.Text, "Margherita x2")
	assert.Contains(t, email.HTML, "Luigi&#39;s")

	require.Len(t, f.channels.sms, 1)
	sms := f.channels.sms[0]
	assert.Equal(t, "+447700900123", sms.To)
	assert.Contains(t, sms.Body, "Order ID: 567890ab")
	assert.Contains(t, sms.Body, "Total: $13.00")

	require.Len(t, f.channels.events, 1)
	assert.Equal(t, domain.KindOrderConfirmed, f.channels.events[0].Kind)
	assert.Equal(t, "paid", f.channels.events[0].Status)
}

func TestDeliver_StatusChangeHonoursPreferences(t *testing.T) {
	f := newFixture(t, "", userdomain.NotificationPreferences{Email: false, SMS: true})

	err := f.svc.Deliver(context.Background(), domain.Request{Kind: domain.KindStatusChanged, OrderID: f.order.ID, Status: "outForDelivery"})
	require.NoError(t, err)

	assert.Empty(t, f.channels.emails)
	require.Len(t, f.channels.sms, 1)
	assert.Equal(t, "+447700900001", f.channels.sms[0].To, "falls back to the profile phone number")
	assert.Contains(t, f.channels.sms[0].Body, "Your order is out for delivery!")
	assert.Equal(t, "outForDelivery", f.channels.events[0].Status)
}

func TestDeliver_StatusEmailBody(t *testing.T) {
	f := newFixture(t, "", userdomain.NotificationPreferences{Email: true, SMS: false})

	err := f.svc.Deliver(context.Background(), domain.Request{Kind: domain.KindStatusChanged, OrderID: f.order.ID, Status: "delivered"})
	require.NoError(t, err)

	require.Len(t, f.channels.emails, 1)
	text := f.channels.emails[0].Text
	assert.True(t, strings.HasPrefix(text, "Order Update - Luigi's"))
	assert.Contains(t, text, "Status: DELIVERED")
	assert.Contains(t, text, "We hope you enjoy your meal!")
	assert.Empty(t, f.channels.sms)
}

func TestDeliver_ChannelFailureDoesNotStopOthers(t *testing.T) {
	f := newFixture(t, "+447700900123", userdomain.DefaultPreferences())
	f.channels.emailErr = errors.New("smtp down")

	err := f.svc.Deliver(context.Background(), domain.Request{Kind: domain.KindOrderConfirmed, OrderID: f.order.ID})
	require.Error(t, err)
	assert.False(t, Permanent(err))
	assert.Len(t, f.channels.sms, 1)
	assert.Len(t, f.channels.events, 1)
}

func TestDeliver_PermanentFailures(t *testing.T) {
	f := newFixture(t, "", userdomain.DefaultPreferences())

	err := f.svc.Deliver(context.Background(), domain.Request{Kind: domain.KindOrderConfirmed, OrderID: "missing"})
	require.ErrorIs(t, err, ErrOrderNotFound)
	assert.True(t, Permanent(err))

	err = f.svc.Deliver(context.Background(), domain.Request{Kind: domain.KindStatusChanged, OrderID: f.order.ID})
	require.ErrorIs(t, err, ErrInvalidRequest)

	err = f.svc.Deliver(context.Background(), domain.Request{Kind: "fax", OrderID: f.order.ID})
	require.ErrorIs(t, err, ErrInvalidRequest)
}

func TestDeliverChannel_SendsOnlyThatChannel(t *testing.T) {
	f := newFixture(t, "+447700900123", userdomain.DefaultPreferences())
	req := domain.Request{Kind: domain.KindOrderConfirmed, OrderID: f.order.ID}

	require.NoError(t, f.svc.DeliverChannel(context.Background(), req, domain.ChannelSMS))
	assert.Empty(t, f.channels.emails)
	assert.Len(t, f.channels.sms, 1)
	assert.Empty(t, f.channels.events)

	require.NoError(t, f.svc.DeliverChannel(context.Background(), req, domain.ChannelEmail))
	assert.Len(t, f.channels.emails, 1)
	assert.Len(t, f.channels.sms, 1)

	err := f.svc.DeliverChannel(context.Background(), req, "pigeon")
	require.ErrorIs(t, err, ErrInvalidRequest)
	assert.True(t, Permanent(err))

	err = f.svc.DeliverChannel(context.Background(), domain.Request{Kind: domain.KindOrderConfirmed, OrderID: "missing"}, domain.ChannelEmail)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestDeliver_UsesConfiguredCurrency(t *testing.T) {
	f := newFixture(t, "+447700900123", userdomain.DefaultPreferences())
	WithCurrency("gbp")(f.svc)

	require.NoError(t, f.svc.Deliver(context.Background(), domain.Request{Kind: domain.KindOrderConfirmed, OrderID: f.order.ID}))
	require.Len(t, f.channels.emails, 1)
	assert.Contains(t, f.channels.emails[0].Text, "Total Amount: £13.00")
	require.Len(t, f.channels.sms, 1)
	assert.Contains(t, f.channels.sms[0].Body, "Total: £13.00")
}

func TestFormatMoney(t *testing.T) {
	amount := int64(1305)
	zero := int64(0)
	tests := []struct {
		name     string
		amount   *int64
		currency string
		want     string
	}{
		{name: "usd", amount: &amount, currency: "usd", want: "$13.05"},
		{name: "upper case code", amount: &amount, currency: "USD", want: "$13.05"},
		{name: "empty defaults to usd", amount: &zero, currency: "", want: "$0.00"},
		{name: "gbp", amount: &amount, currency: "gbp", want: "£13.05"},
		{name: "eur", amount: &amount, currency: "eur", want: "€13.05"},
		{name: "unknown code", amount: &amount, currency: "chf", want: "CHF 13.05"},
		{name: "unpaid", amount: nil, currency: "usd", want: "Pending payment"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatMoney(tt.amount, tt.currency))
		})
	}
	assert.Equal(t, "abc", ShortOrderID("abc"))
}
