package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/utils"
	"gorm.io/gorm"
)

type ReviewInput struct {
	RestaurantID string  `json:"restaurant_id"`
	OrderID      *string `json:"order_id"`
	Rating       int     `json:"rating"`
	Comment      string  `json:"comment"`
}

type ReviewService struct {
	DB *gorm.DB
}

func NewReviewService(db *gorm.DB) *ReviewService {
	return &ReviewService{DB: db}
}

// SubmitReview stores a diner's rating. It needs no session.
func (s *ReviewService) SubmitReview(ctx context.Context, in ReviewInput) (*models.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, utils.Unprocessable("rating must be between 1 and 5")
	}
	db := s.DB.WithContext(ctx)
	if _, err := loadRestaurant(db, in.RestaurantID); err != nil {
		return nil, err
	}

	review := models.Review{
		RestaurantID: in.RestaurantID,
		Rating:       in.Rating,
		Comment:      strings.TrimSpace(in.Comment),
	}
	if in.OrderID != nil && *in.OrderID != "" {
		var order models.Order
		if err := first(db, &order, *in.OrderID, "order"); err != nil {
			return nil, err
		}
		if order.RestaurantID != in.RestaurantID {
			return nil, utils.Unprocessable("order does not belong to this restaurant")
		}
		review.OrderID = &order.ID
	}

	if err := db.Create(&review).Error; err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	utils.InfoLogger.Printf("Review %s submitted for restaurant %s (rating=%d)", review.ID, review.RestaurantID, review.Rating)
	return &review, nil
}

// ListReviews returns the newest reviews first. Admins may pass a
// restaurant id to narrow the list; everyone else sees their own.
func (s *ReviewService) ListReviews(ctx context.Context, sess Session, restaurantID string) ([]models.Review, error) {
	scope := sess.RestaurantID
	if sess.IsAdmin() {
		scope = restaurantID
	}
	if err := Authorize(sess, ResourceReview, ActionRead, scope); err != nil {
		return nil, err
	}
	query := s.DB.WithContext(ctx).Order("created_at DESC")
	if scope != "" {
		query = query.Where("restaurant_id = ?", scope)
	}
	reviews := []models.Review{}
	if err := query.Find(&reviews).Error; err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return reviews, nil
}
