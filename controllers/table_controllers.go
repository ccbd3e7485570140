package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/services"
	"github.com/yeremiapane/qr-restaurant/utils"
)

type TableController struct {
	Tables *services.TableService
}

func NewTableController(tables *services.TableService) *TableController {
	return &TableController{Tables: tables}
}

// CreateTable -> adds a table and mints its QR payload
func (tc *TableController) CreateTable(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
	}
	if !utils.BindJSON(c, &req) {
		return
	}
	table, err := tc.Tables.CreateTable(c.Request.Context(), sess, services.TableInput{TableNumber: req.TableNumber})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, table)
}

// GetAllTables -> ?restaurant_id is honoured for admins only
func (tc *TableController) GetAllTables(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	tables, err := tc.Tables.ListTables(c.Request.Context(), sess, c.Query("restaurant_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	table, err := tc.Tables.GetTable(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, table)
}

func (tc *TableController) UpdateTable(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	var req services.TableInput
	if !utils.BindJSON(c, &req) {
		return
	}
	table, err := tc.Tables.UpdateTable(c.Request.Context(), sess, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, table)
}

func (tc *TableController) DeleteTable(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	if err := tc.Tables.DeleteTable(c.Request.Context(), sess, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "table deleted"})
}
