package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JWTAuthAdminMiddleware gates admin endpoints on the role claim set by
// JWTAuthUserMiddleware. It must run after that middleware.
func JWTAuthAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists || role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "Admin access required",
				"code":  0,
			})
			return
		}
		c.Next()
	}
}
