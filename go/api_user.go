package marketplaceserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	userhttpmapper "github.com/Apurer/food-marketplace-api/internal/domains/users/adapters/http/mapper"
	userports "github.com/Apurer/food-marketplace-api/internal/domains/users/ports"
)

// UserAPI implements the current-user routes.
type UserAPI struct {
	service userports.Service
}

// NewUserAPI wires dependencies.
func NewUserAPI(service userports.Service) UserAPI {
	return UserAPI{service: service}
}

// Post /api/my/user
// Create the caller on first sign-in and issue a session token.
// Returning users must present their current bearer token.
func (api *UserAPI) RegisterCurrentUser(c *gin.Context) {
	var payload userhttpmapper.RegisterRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadBody(c, err)
		return
	}
	input := userhttpmapper.ToRegisterInput(payload)
	input.SessionToken = bearerToken(c.GetHeader("Authorization"))
	result, err := api.service.Register(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	status := http.StatusOK
	if result.Created {
		status = http.StatusCreated
	}
	c.JSON(status, userhttpmapper.RegisterResponse{User: userhttpmapper.FromDomainUser(result.User), Token: result.Token})
}

// Get /api/my/user
// Get the caller's profile
func (api *UserAPI) GetCurrentUser(c *gin.Context) {
	user, err := api.service.GetCurrent(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(user))
}

// Put /api/my/user
// Update the caller's profile and notification preferences
func (api *UserAPI) UpdateCurrentUser(c *gin.Context) {
	var payload userhttpmapper.UpdateRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBadBody(c, err)
		return
	}
	updated, err := api.service.UpdateCurrent(c.Request.Context(), currentUserID(c), userhttpmapper.ToUpdateInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, userhttpmapper.FromDomainUser(updated))
}

// Post /api/my/user/logout
// Revoke the caller's sessions
func (api *UserAPI) LogoutCurrentUser(c *gin.Context) {
	if err := api.service.Logout(c.Request.Context(), currentUserID(c)); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
