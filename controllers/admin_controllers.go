package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/services"
	"github.com/yeremiapane/qr-restaurant/utils"
)

type AdminController struct {
	Tenants   *services.TenantService
	Analytics *services.AnalyticsService
}

func NewAdminController(tenants *services.TenantService, analytics *services.AnalyticsService) *AdminController {
	return &AdminController{Tenants: tenants, Analytics: analytics}
}

func (ac *AdminController) CreateRestaurant(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	var req services.CreateRestaurantInput
	if !utils.BindJSON(c, &req) {
		return
	}
	restaurant, err := ac.Tenants.CreateRestaurant(c.Request.Context(), sess, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, restaurant)
}

func (ac *AdminController) GetAllRestaurants(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	restaurants, err := ac.Tenants.ListRestaurants(c.Request.Context(), sess)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, restaurants)
}

func (ac *AdminController) GetRestaurantByID(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	restaurant, err := ac.Tenants.GetRestaurant(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, restaurant)
}

func (ac *AdminController) UpdateRestaurant(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	var req services.UpdateRestaurantInput
	if !utils.BindJSON(c, &req) {
		return
	}
	restaurant, err := ac.Tenants.UpdateRestaurant(c.Request.Context(), sess, c.Param("id"), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, restaurant)
}

func (ac *AdminController) DeleteRestaurant(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	if err := ac.Tenants.DeleteRestaurant(c.Request.Context(), sess, c.Param("id")); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "restaurant deleted"})
}

func (ac *AdminController) GetRestaurantStaff(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	staff, err := ac.Tenants.ListStaff(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, staff)
}

func (ac *AdminController) GetAllUsers(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	users, err := ac.Tenants.ListUsers(c.Request.Context(), sess, c.Query("restaurant_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, users)
}

// GetDashboardStats -> platform-wide headline numbers
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	stats, err := ac.Analytics.AdminStats(c.Request.Context(), sess)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, stats)
}

// GetAnalytics -> ?days=N (default 7, at most 90)
func (ac *AdminController) GetAnalytics(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days")
	if !ok {
		return
	}
	analytics, err := ac.Analytics.AdminAnalytics(c.Request.Context(), sess, days)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, analytics)
}

// GetOwnerStats -> the owner's dashboard for their own restaurant
func (ac *AdminController) GetOwnerStats(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days")
	if !ok {
		return
	}
	summary, err := ac.Analytics.OwnerSummary(c.Request.Context(), sess, days)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, summary)
}
