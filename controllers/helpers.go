package controllers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/middlewares"
	"github.com/yeremiapane/qr-restaurant/services"
	"github.com/yeremiapane/qr-restaurant/utils"
)

// session fetches the caller's session, answering 401 when the route was
// mounted without the auth middleware.
func session(c *gin.Context) (services.Session, bool) {
	sess, ok := middlewares.CurrentSession(c)
	if !ok {
		utils.RespondError(c, utils.Unauthorized("unauthorized"))
	}
	return sess, ok
}

func queryInt(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		utils.RespondError(c, utils.Unprocessable("%s must be a number", key))
		return 0, false
	}
	return n, true
}

func orderFilter(c *gin.Context) services.OrderFilter {
	return services.OrderFilter{
		RestaurantID:  c.Query("restaurant_id"),
		Status:        c.Query("status"),
		PaymentStatus: c.Query("payment_status"),
		Date:          c.Query("date"),
		From:          c.Query("from"),
		To:            c.Query("to"),
	}
}
