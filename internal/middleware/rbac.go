package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/schoolworks/sis-api/internal/models"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
	"github.com/schoolworks/sis-api/pkg/response"
)

// SelfAccess is the sentinel role that lets a user through when the :id
// route parameter is their own user ID.
const SelfAccess = "SELF"

// RBAC restricts a route to the given roles. Must run after JWT.
func RBAC(allowed ...string) gin.HandlerFunc {
	roles := make(map[models.UserRole]bool, len(allowed))
	allowSelf := false
	for _, entry := range allowed {
		if entry == SelfAccess {
			allowSelf = true
			continue
		}
		roles[models.UserRole(entry)] = true
	}

	return func(c *gin.Context) {
		claims, _ := c.Value(ContextUserKey).(*models.JWTClaims)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		if roles[claims.Role] {
			c.Next()
			return
		}
		if allowSelf && c.Param("id") == claims.UserID {
			c.Next()
			return
		}

		response.Error(c, appErrors.ErrForbidden)
		c.Abort()
	}
}

// RequireRoles is RBAC with typed roles.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make([]string, len(roles))
	for i, role := range roles {
		allowed[i] = string(role)
	}
	return RBAC(allowed...)
}
