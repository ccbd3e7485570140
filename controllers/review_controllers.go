package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/qr-restaurant/services"
	"github.com/yeremiapane/qr-restaurant/utils"
)

type ReviewController struct {
	Reviews *services.ReviewService
}

func NewReviewController(reviews *services.ReviewService) *ReviewController {
	return &ReviewController{Reviews: reviews}
}

func (rc *ReviewController) CreateReview(c *gin.Context) {
	var req services.ReviewInput
	if !utils.BindJSON(c, &req) {
		return
	}
	review, err := rc.Reviews.SubmitReview(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, review)
}

func (rc *ReviewController) GetAllReviews(c *gin.Context) {
	sess, ok := session(c)
	if !ok {
		return
	}
	reviews, err := rc.Reviews.ListReviews(c.Request.Context(), sess, c.Query("restaurant_id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, reviews)
}
