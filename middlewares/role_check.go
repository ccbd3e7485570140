package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/utils"
)

// RequireRoles rejects callers whose role is not listed. It must run after
// AuthMiddleware. Tenant checks happen in the services.
func RequireRoles(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := CurrentSession(c)
		if !ok {
			utils.RespondError(c, utils.Unauthorized("unauthorized"))
			return
		}
		for _, role := range roles {
			if sess.Role == role {
				c.Next()
				return
			}
		}
		utils.RespondError(c, utils.Forbidden("%s access is not allowed here", sess.Role))
	}
}
