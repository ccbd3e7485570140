package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/yeremiapane/qr-restaurant/utils"
)

func LoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" && path != "/api/ws" {
			path = path + "?" + raw
		}

		c.Next()

		fields := logrus.Fields{
			"method":  c.Request.Method,
			"path":    path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start).String(),
			"ip":      c.ClientIP(),
		}
		if sess, ok := CurrentSession(c); ok {
			fields["user_id"] = sess.UserID
			fields["role"] = sess.Role
		}

		entry := utils.InfoLogger.WithFields(fields)
		if c.Writer.Status() >= 500 {
			utils.ErrorLogger.WithFields(fields).Error("request failed")
			return
		}
		entry.Info("request")
	}
}
