package middlewares

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/services"
	"github.com/yeremiapane/qr-restaurant/utils"
)

const sessionKey = "session"

// SessionResolver turns a raw bearer token into a caller identity.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (services.Session, error)
}

// AuthMiddleware requires an "Authorization: Bearer <token>" header.
func AuthMiddleware(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, utils.Unauthorized("authorization header missing"))
			return
		}
		tokenString, ok := bearerToken(authHeader)
		if !ok {
			utils.RespondError(c, utils.Unauthorized("authorization header must be a bearer token"))
			return
		}
		authenticate(c, resolver, tokenString)
	}
}

func bearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

func authenticate(c *gin.Context, resolver SessionResolver, token string) {
	sess, err := resolver.ResolveSession(c.Request.Context(), token)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Set(sessionKey, sess)
	c.Next()
}

// CurrentSession returns the session stored by the auth middleware.
func CurrentSession(c *gin.Context) (services.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return services.Session{}, false
	}
	sess, ok := v.(services.Session)
	return sess, ok
}
