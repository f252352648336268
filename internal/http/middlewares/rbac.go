package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stockhubapp/stockhub/internal/domain/user"
)

// RequireAdmin lets only administrators through.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID, ok := RoleIDFromContext(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		if roleID != user.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Admin role required",
				},
			})
			return
		}
		c.Next()
	}
}

// RequireSelfOrAdmin lets a request through when the path-addressed user is
// the caller, or when the caller is an administrator.
func (m *AuthMiddleware) RequireSelfOrAdmin(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleID, ok := RoleIDFromContext(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}

		if roleID == user.RoleAdmin {
			c.Next()
			return
		}

		userID, _ := UserIDFromContext(c)

		if userID == "" || userID != c.Param(param) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "You may only act on your own account",
				},
			})
			return
		}

		c.Next()
	}
}
