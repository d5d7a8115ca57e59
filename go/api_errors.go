package marketplaceserver

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"

	orderapp "github.com/Apurer/food-marketplace-api/internal/domains/orders/application"
	restaurantapp "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/application"
	userapp "github.com/Apurer/food-marketplace-api/internal/domains/users/application"
	apierrors "github.com/Apurer/food-marketplace-api/internal/shared/errors"
)

// responder maps application errors to problem responses with fixed, client-safe details.
var responder = apierrors.NewChainedResponder("",
	apierrors.When(orderapp.ErrOrderNotFound, apierrors.NewNotFoundProblem("order")),
	apierrors.When(orderapp.ErrRestaurantNotFound, apierrors.NewNotFoundProblem("restaurant")),
	apierrors.When(orderapp.ErrInvalidCart, apierrors.ErrBadRequest.WithDetail("cart contains unknown menu items or invalid quantities")),
	apierrors.When(orderapp.ErrInvalidStatus, apierrors.ErrBadRequest.WithDetail("order status is unknown or cannot be set")),
	apierrors.When(orderapp.ErrInvalidInput, apierrors.ErrValidation.WithDetail("order details are incomplete or invalid")),
	apierrors.When(orderapp.ErrUnauthorized, apierrors.ErrUnauthorized.WithDetail("caller may not act on this order")),
	apierrors.When(orderapp.ErrAuthentication, apierrors.ErrWebhookSignature.WithDetail("webhook signature verification failed")),
	apierrors.When(orderapp.ErrGateway, apierrors.ErrPaymentProvider.WithDetail("payment provider is unavailable")),
	apierrors.When(restaurantapp.ErrNotFound, apierrors.NewNotFoundProblem("restaurant")),
	apierrors.When(restaurantapp.ErrConflict, apierrors.ErrConflict.WithDetail("a restaurant already exists for this manager")),
	apierrors.When(restaurantapp.ErrInvalidInput, apierrors.ErrValidation.WithDetail("restaurant details are incomplete or invalid")),
	apierrors.When(userapp.ErrNotFound, apierrors.NewNotFoundProblem("user")),
	apierrors.When(userapp.ErrAuthentication, apierrors.ErrUnauthorized.WithDetail("a valid bearer token is required")),
	apierrors.When(userapp.ErrInvalidInput, apierrors.ErrValidation.WithDetail("user details are incomplete or invalid")),
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	responder.Respond(c, problem)
}

// respondServiceError converts application errors; unknown errors become a generic 500.
func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func respondBadBody(c *gin.Context, err error) {
	_ = c.Error(err)
	respondProblem(c, apierrors.ErrBadRequest.WithDetail("request body is not valid JSON for this resource"))
}

// pathParam binds a required simple-style path parameter.
func pathParam(c *gin.Context, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, c.Param(name), &value, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil || strings.TrimSpace(value) == "" {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(fmt.Sprintf("path parameter %s is required", name)))
		return "", false
	}
	return strings.TrimSpace(value), true
}
