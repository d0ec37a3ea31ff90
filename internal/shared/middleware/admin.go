package middleware

import (
	"github.com/gin-gonic/gin"

	"catalog-backend/internal/shared/response"
	"catalog-backend/pkg/jwt"
)

// RequireRole lets the request through only when AuthMiddleware stored one
// of roles on the context.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(ContextRole)
		if _, ok := allowed[role]; !ok {
			response.Forbidden(c, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}

// AdminMiddleware only admits administrators.
func AdminMiddleware() gin.HandlerFunc {
	return RequireRole(jwt.RoleAdmin)
}
