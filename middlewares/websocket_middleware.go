package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/utils"
)

// WebSocketAuthMiddleware authenticates upgrade requests, which browsers
// cannot send custom headers with, from the ?token= query parameter.
// A bearer header is still honoured when present.
func WebSocketAuthMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			if header := c.GetHeader("Authorization"); header != "" {
				token, _ = bearerToken(header)
			}
		}
		if token == "" {
			utils.RespondError(c, utils.Unauthorized("token missing"))
			return
		}
		authenticate(c, resolver, token)
	}
}
