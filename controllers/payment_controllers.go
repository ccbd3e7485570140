package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/services"
	"github.com/yeremiapane/qr-restaurant/utils"
)

type PaymentController struct {
	Orders *services.OrderService
}

func NewPaymentController(orders *services.OrderService) *PaymentController {
	return &PaymentController{Orders: orders}
}

// VerifyPayment -> cashier or owner confirms an order was paid. Only
// "paid" moves anything; repeating it is harmless.
func (pc *PaymentController) VerifyPayment(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	var req struct {
		PaymentStatus models.PaymentStatus `json:"payment_status" binding:"required"`
	}
	if !utils.BindJSON(c, &req) {
		return
	}

	order, err := pc.Orders.ConfirmPayment(c.Request.Context(), sess, c.Param("id"), req.PaymentStatus)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, order)
}
