package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/services"
	"github.com/yeremiapane/qr-restaurant/utils"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// CreateOrder -> public, placed from the table's QR menu. Any price or name
// the client sends with the items is ignored.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		TableID       string                    `json:"table_id" binding:"required"`
		Items         []services.OrderItemInput `json:"items"`
		PaymentMethod models.PaymentMethod      `json:"payment_method"`
	}
	if !utils.BindJSON(c, &req) {
		return
	}

	order, err := oc.Orders.CreateOrder(c.Request.Context(), services.CreateOrderInput{
		TableID:       req.TableID,
		Items:         req.Items,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, order)
}

// GetPublicOrder -> lets the diner follow an order by its id
func (oc *OrderController) GetPublicOrder(c *gin.Context) {
	order, err := oc.Orders.GetPublicOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, order)
}

// GetAllOrders returns the caller's queue: what it contains depends on the role.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	orders, err := oc.Orders.ListOrders(c.Request.Context(), sess, orderFilter(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, orders)
}

func (oc *OrderController) GetOrderByID(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	order, err := oc.Orders.GetOrder(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, order)
}

func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if !utils.BindJSON(c, &req) {
		return
	}

	order, err := oc.Orders.TransitionStatus(c.Request.Context(), sess, c.Param("id"), req.Status)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, order)
}
