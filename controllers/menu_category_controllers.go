package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/services"
	"github.com/yeremiapane/qr-restaurant/utils"
)

type MenuCategoryController struct {
	Catalog *services.CatalogService
}

func NewMenuCategoryController(catalog *services.CatalogService) *MenuCategoryController {
	return &MenuCategoryController{Catalog: catalog}
}

func (mcc *MenuCategoryController) GetAllCategories(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	categories, err := mcc.Catalog.ListCategories(c.Request.Context(), sess)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, categories)
}

func (mcc *MenuCategoryController) CreateCategory(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	var req services.CategoryInput
	if !utils.BindJSON(c, &req) {
		return
	}
	category, err := mcc.Catalog.CreateCategory(c.Request.Context(), sess, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, category)
}

func (mcc *MenuCategoryController) UpdateCategory(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	var req services.CategoryInput
	if !utils.BindJSON(c, &req) {
		return
	}
	category, err := mcc.Catalog.UpdateCategory(c.Request.Context(), sess, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, category)
}

func (mcc *MenuCategoryController) DeleteCategory(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	if err := mcc.Catalog.DeleteCategory(c.Request.Context(), sess, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "category deleted"})
}
