package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/services"
	"github.com/yeremiapane/qr-restaurant/utils"
)

type WaiterCallController struct {
	Waiters *services.WaiterService
}

func NewWaiterCallController(waiters *services.WaiterService) *WaiterCallController {
	return &WaiterCallController{Waiters: waiters}
}

// CallWaiter -> public "call waiter" button on the QR menu
func (wc *WaiterCallController) CallWaiter(c *gin.Context) {
	var req struct {
		TableID string `json:"table_id" binding:"required"`
	}
	if !utils.BindJSON(c, &req) {
		return
	}
	call, err := wc.Waiters.CallWaiter(c.Request.Context(), req.TableID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, call)
}

// GetWaiterCalls lists open calls; ?include_resolved=true adds closed ones.
func (wc *WaiterCallController) GetWaiterCalls(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	calls, err := wc.Waiters.ListCalls(c.Request.Context(), sess, c.Query("include_resolved") == "true")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, calls)
}

func (wc *WaiterCallController) ResolveWaiterCall(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	call, err := wc.Waiters.ResolveCall(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, call)
}
