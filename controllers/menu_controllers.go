package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/services"
	"github.com/yeremiapane/qr-restaurant/utils"
)

type MenuController struct {
	Catalog *services.CatalogService
	Tables  *services.TableService
}

func NewMenuController(catalog *services.CatalogService, tables *services.TableService) *MenuController {
	return &MenuController{Catalog: catalog, Tables: tables}
}

// GetPublicMenu -> what a diner sees after scanning the table's QR code
func (mc *MenuController) GetPublicMenu(c *gin.Context) {
	menu, err := mc.Tables.PublicMenu(c.Request.Context(), c.Param("tableId"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, menu)
}

func (mc *MenuController) GetAllMenus(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	items, err := mc.Catalog.ListItems(c.Request.Context(), sess, c.Query("category_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, items)
}

func (mc *MenuController) CreateMenu(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	var req services.MenuItemInput
	if !utils.BindJSON(c, &req) {
		return
	}
	item, err := mc.Catalog.CreateItem(c.Request.Context(), sess, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, item)
}

func (mc *MenuController) UpdateMenu(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	var req services.MenuItemInput
	if !utils.BindJSON(c, &req) {
		return
	}
	item, err := mc.Catalog.UpdateItem(c.Request.Context(), sess, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, item)
}

func (mc *MenuController) DeleteMenu(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	if err := mc.Catalog.DeleteItem(c.Request.Context(), sess, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "menu item deleted"})
}
