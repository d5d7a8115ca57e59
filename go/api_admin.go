package marketplaceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	restaurantmapper "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/adapters/http/mapper"
	restaurantdomain "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/domain"
	restaurantports "github.com/Apurer/food-marketplace-api/internal/domains/restaurants/ports"
	userhttpmapper "github.com/Apurer/food-marketplace-api/internal/domains/users/adapters/http/mapper"
	userdomain "github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
	userports "github.com/Apurer/food-marketplace-api/internal/domains/users/ports"
)

// AdminAPI implements manager review and restaurant approval.
type AdminAPI struct {
	users       userports.Service
	restaurants restaurantports.Service
}

func NewAdminAPI(users userports.Service, restaurants restaurantports.Service) AdminAPI {
	return AdminAPI{users: users, restaurants: restaurants}
}

// Get /api/admin/managers
// List restaurant manager accounts
func (api *AdminAPI) ListManagers(c *gin.Context) {
	managers, err := api.users.ListManagers(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUsers(managers))
}

// Put /api/admin/managers/:userId/status
// Approve or reject a manager application
func (api *AdminAPI) SetManagerStatus(c *gin.Context) {
	userID, ok := pathParam(c, "userId")
	if !ok {
		return
	}
	var payload userhttpmapper.ApplicationStatusRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadBody(c, err)
		return
	}
	updated, err := api.users.SetApplicationStatus(c.Request.Context(), userID, userdomain.ApplicationStatus(payload.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(updated))
}

// Patch /api/admin/restaurants/:restaurantId/approval
// Approve or reject a restaurant listing
func (api *AdminAPI) SetRestaurantApproval(c *gin.Context) {
	id, ok := pathParam(c, "restaurantId")
	if !ok {
		return
	}
	var payload restaurantmapper.ApprovalRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadBody(c, err)
		return
	}
	updated, err := api.restaurants.SetApproval(c.Request.Context(), id, restaurantdomain.ApprovalStatus(payload.Status))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, restaurantmapper.FromDomain(updated))
}
