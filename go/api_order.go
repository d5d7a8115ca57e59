package marketplaceserver

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	ordermapper "github.com/Apurer/food-marketplace-api/internal/domains/orders/adapters/http/mapper"
	orderports "github.com/Apurer/food-marketplace-api/internal/domains/orders/ports"
	apierrors "github.com/Apurer/food-marketplace-api/internal/shared/errors"
)

// maxWebhookBytes caps the payment event body read into memory.
const maxWebhookBytes = 64 << 10

// SignatureHeader carries the payment provider's event signature.
const SignatureHeader = "Stripe-Signature"

// OrderAPI wires HTTP transport with the orders bounded context.
type OrderAPI struct {
	service orderports.Service
}

// NewOrderAPI creates an OrderAPI backed by the provided service.
func NewOrderAPI(service orderports.Service) OrderAPI {
	return OrderAPI{service: service}
}

// Post /api/order/checkout/create-checkout-session
// Price the cart, record a placed order and return the hosted payment page
func (api *OrderAPI) CreateCheckoutSession(c *gin.Context) {
	var payload ordermapper.CheckoutSessionRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadBody(c, err)
		return
	}
	result, err := api.service.CreateCheckoutSession(c.Request.Context(), ordermapper.ToCheckoutInput(currentUserID(c), payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.CheckoutSessionResponse{URL: result.URL, OrderID: result.OrderID})
}

// Post /api/order/checkout/webhook
// Payment provider callback; authenticated by signature, not by bearer token
func (api *OrderAPI) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		respondBadBody(c, err)
		return
	}
	if _, err := api.service.HandlePaymentWebhook(c.Request.Context(), payload, c.GetHeader(SignatureHeader)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// Get /api/order
// List the caller's orders, newest first
func (api *OrderAPI) GetMyOrders(c *gin.Context) {
	views, err := api.service.ListForCustomer(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromOrderViews(views))
}

// Get /api/my/restaurant/order
// List the orders of the caller's restaurant, newest first
func (api *OrderAPI) GetMyRestaurantOrders(c *gin.Context) {
	views, err := api.service.ListForRestaurant(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromOrderViews(views))
}

// Patch /api/my/restaurant/order/:orderId/status
// Move an order through fulfillment
func (api *OrderAPI) UpdateOrderStatus(c *gin.Context) {
	orderID, ok := pathParam(c, "orderId")
	if !ok {
		return
	}
	var payload ordermapper.StatusUpdateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadBody(c, err)
		return
	}
	if payload.Status == "" {
		respondProblem(c, apierrors.ErrValidation.WithDetail("status is required"))
		return
	}
	updated, err := api.service.UpdateStatus(c.Request.Context(), orderports.UpdateStatusInput{
		ManagerID: currentUserID(c),
		OrderID:   orderID,
		Status:    payload.Status,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromOrder(updated))
}

// Get /api/order/:orderId/history
// Status trail of an order, visible to its customer and its restaurant's manager
func (api *OrderAPI) GetOrderHistory(c *gin.Context) {
	orderID, ok := pathParam(c, "orderId")
	if !ok {
		return
	}
	changes, err := api.service.History(c.Request.Context(), orderports.HistoryInput{CallerID: currentUserID(c), OrderID: orderID})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ordermapper.FromHistory(changes))
}
