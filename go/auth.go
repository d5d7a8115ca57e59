package marketplaceserver

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	userdomain "github.com/Apurer/food-marketplace-api/internal/domains/users/domain"
	apierrors "github.com/Apurer/food-marketplace-api/internal/shared/errors"
)

const currentUserKey = "marketplace.currentUser"

// Authenticator resolves a bearer token to the calling user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*userdomain.User, error)
}

func accessChain(access Access, auth Authenticator) []gin.HandlerFunc {
	switch access {
	case AccessUser:
		return []gin.HandlerFunc{authenticate(auth)}
	case AccessManager:
		return []gin.HandlerFunc{authenticate(auth), requireRole(userdomain.RoleRestaurantManager)}
	case AccessAdmin:
		return []gin.HandlerFunc{authenticate(auth), requireRole(userdomain.RoleAdmin)}
	default:
		return nil
	}
}

func authenticate(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if auth == nil || token == "" {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail("a valid bearer token is required"))
			return
		}
		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil || user == nil {
			respondProblem(c, apierrors.ErrUnauthorized.WithDetail("a valid bearer token is required"))
			return
		}
		c.Set(currentUserKey, user)
		c.Next()
	}
}

func requireRole(role userdomain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user == nil || user.Role != role {
			respondProblem(c, apierrors.ErrForbidden.WithDetail("insufficient role for this resource"))
			return
		}
		c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// currentUser returns the authenticated caller; nil on public routes.
func currentUser(c *gin.Context) *userdomain.User {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return nil
	}
	user, _ := value.(*userdomain.User)
	return user
}

func currentUserID(c *gin.Context) string {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return ""
}
