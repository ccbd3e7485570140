package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/services"
	"github.com/yeremiapane/qr-restaurant/utils"
)

type UserController struct {
	Auth *services.AuthService
}

func NewUserController(auth *services.AuthService) *UserController {
	return &UserController{Auth: auth}
}

// Login -> return bearer token
func (uc *UserController) Login(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !utils.BindJSON(c, &input) {
		return
	}

	result, err := uc.Auth.Login(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, result)
}

func (uc *UserController) Logout(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	if err := uc.Auth.Logout(c.Request.Context(), sess); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, gin.H{"message": "logged out"})
}

// GetProfile returns the signed-in user.
func (uc *UserController) GetProfile(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	user, err := uc.Auth.Me(c.Request.Context(), sess)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, user)
}

// Register creates a staff account (admin only).
func (uc *UserController) Register(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	var req services.RegisterInput
	if !utils.BindJSON(c, &req) {
		return
	}
	user, err := uc.Auth.Register(c.Request.Context(), sess, req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, user)
}
