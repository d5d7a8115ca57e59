package marketplaceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	restaurantmapper "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/adapters/http/mapper"
	restaurantports "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/ports"
)

// RestaurantAPI implements the catalog routes.
type RestaurantAPI struct {
	service restaurantports.Service
}

func NewRestaurantAPI(service restaurantports.Service) RestaurantAPI {
	return RestaurantAPI{service: service}
}

// Get /api/restaurant/:restaurantId
// Get a restaurant and its menu
func (api *RestaurantAPI) GetRestaurant(c *gin.Context) {
	id, ok := pathParam(c, "restaurantId")
	if !ok {
		return
	}
	restaurant, err := api.service.GetByID(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurantmapper.FromDomain(restaurant))
}

// Get /api/my/restaurant
// Get the caller's restaurant
func (api *RestaurantAPI) GetMyRestaurant(c *gin.Context) {
	restaurant, err := api.service.GetMine(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurantmapper.FromDomain(restaurant))
}

// Post /api/my/restaurant
// Create the caller's restaurant
func (api *RestaurantAPI) CreateMyRestaurant(c *gin.Context) {
	var payload restaurantmapper.RestaurantRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadBody(c, err)
		return
	}
	created, err := api.service.CreateMine(c.Request.Context(), currentUserID(c), restaurantmapper.ToDetails(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, restaurantmapper.FromDomain(created))
}

// Put /api/my/restaurant
// Replace the caller's restaurant details and menu
func (api *RestaurantAPI) UpdateMyRestaurant(c *gin.Context) {
	var payload restaurantmapper.RestaurantRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadBody(c, err)
		return
	}
	updated, err := api.service.UpdateMine(c.Request.Context(), currentUserID(c), restaurantmapper.ToDetails(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurantmapper.FromDomain(updated))
}
