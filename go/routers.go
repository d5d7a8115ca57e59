package marketplaceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Access is the authentication level a route requires.
type Access int

const (
	AccessPublic Access = iota
	AccessUser
	AccessManager
	AccessAdmin
)

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// Access is the caller level checked before HandlerFunc runs.
	Access Access
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// ApiHandleFunctions groups the handlers of every API section.
type ApiHandleFunctions struct {
	// Authenticator resolves bearer tokens for non-public routes.
	Authenticator Authenticator
	// Routes for the OrderAPI part of the API
	OrderAPI OrderAPI
	// Routes for the RestaurantAPI part of the API
	RestaurantAPI RestaurantAPI
	// Routes for the UserAPI part of the API
	UserAPI UserAPI
	// Routes for the AdminAPI part of the API
	AdminAPI AdminAPI
	// Routes for the HealthAPI part of the API
	HealthAPI HealthAPI
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		chain := append(accessChain(route.Access, handleFunctions.Authenticator), route.HandlerFunc)
		router.Handle(route.Method, route.Pattern, chain...)
	}
	return router
}

// DefaultHandleFunc answers routes without a handler.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{
			"Health",
			http.MethodGet,
			"/health",
			AccessPublic,
			handleFunctions.HealthAPI.Health,
		},
		{
			"Metrics",
			http.MethodGet,
			"/metrics",
			AccessPublic,
			handleFunctions.HealthAPI.Metrics,
		},
		{
			"CreateCheckoutSession",
			http.MethodPost,
			"/api/order/checkout/create-checkout-session",
			AccessUser,
			handleFunctions.OrderAPI.CreateCheckoutSession,
		},
		{
			"PaymentWebhook",
			http.MethodPost,
			"/api/order/checkout/webhook",
			AccessPublic,
			handleFunctions.OrderAPI.PaymentWebhook,
		},
		{
			"GetMyOrders",
			http.MethodGet,
			"/api/order",
			AccessUser,
			handleFunctions.OrderAPI.GetMyOrders,
		},
		{
			"GetOrderHistory",
			http.MethodGet,
			"/api/order/:orderId/history",
			AccessUser,
			handleFunctions.OrderAPI.GetOrderHistory,
		},
		{
			"GetMyRestaurantOrders",
			http.MethodGet,
			"/api/my/restaurant/order",
			AccessManager,
			handleFunctions.OrderAPI.GetMyRestaurantOrders,
		},
		{
			"UpdateOrderStatus",
			http.MethodPatch,
			"/api/my/restaurant/order/:orderId/status",
			AccessManager,
			handleFunctions.OrderAPI.UpdateOrderStatus,
		},
		{
			"GetRestaurant",
			http.MethodGet,
			"/api/restaurant/:restaurantId",
			AccessPublic,
			handleFunctions.RestaurantAPI.GetRestaurant,
		},
		{
			"GetMyRestaurant",
			http.MethodGet,
			"/api/my/restaurant",
			AccessManager,
			handleFunctions.RestaurantAPI.GetMyRestaurant,
		},
		{
			"CreateMyRestaurant",
			http.MethodPost,
			"/api/my/restaurant",
			AccessManager,
			handleFunctions.RestaurantAPI.CreateMyRestaurant,
		},
		{
			"UpdateMyRestaurant",
			http.MethodPut,
			"/api/my/restaurant",
			AccessManager,
			handleFunctions.RestaurantAPI.UpdateMyRestaurant,
		},
		{
			"RegisterCurrentUser",
			http.MethodPost,
			"/api/my/user",
			AccessPublic,
			handleFunctions.UserAPI.RegisterCurrentUser,
		},
		{
			"GetCurrentUser",
			http.MethodGet,
			"/api/my/user",
			AccessUser,
			handleFunctions.UserAPI.GetCurrentUser,
		},
		{
			"UpdateCurrentUser",
			http.MethodPut,
			"/api/my/user",
			AccessUser,
			handleFunctions.UserAPI.UpdateCurrentUser,
		},
		{
			"LogoutCurrentUser",
			http.MethodPost,
			"/api/my/user/logout",
			AccessUser,
			handleFunctions.UserAPI.LogoutCurrentUser,
		},
		{
			"ListManagers",
			http.MethodGet,
			"/api/admin/managers",
			AccessAdmin,
			handleFunctions.AdminAPI.ListManagers,
		},
		{
			"SetManagerStatus",
			http.MethodPut,
			"/api/admin/managers/:userId/status",
			AccessAdmin,
			handleFunctions.AdminAPI.SetManagerStatus,
		},
		{
			"SetRestaurantApproval",
			http.MethodPatch,
			"/api/admin/restaurants/:restaurantId/approval",
			AccessAdmin,
			handleFunctions.AdminAPI.SetRestaurantApproval,
		},
	}
}
