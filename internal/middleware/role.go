package middleware

import (
	"net/http"

	"github.com/franciscosanchezn/stellar-burgers-api/internal/models"
	"github.com/gin-gonic/gin"
)

// RequireRole is a middleware that checks if the user has the required role.
// It must run after RequireAuth.
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := GateFrom(c).User()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewAPIError(models.ErrUnauthorized, "User not authenticated"))
			return
		}

		if user.Role != requiredRole {
			c.AbortWithStatusJSON(http.StatusForbidden,
				models.NewAPIError(models.ErrForbidden, "Insufficient permissions", map[string]interface{}{
					"required_role": requiredRole,
					"user_role":     user.Role,
				}))
			return
		}

		c.Next()
	}
}
