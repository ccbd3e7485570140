package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/utils"
	"gorm.io/gorm"
)

// CreateRestaurantInput accepts staff either nested (owner, kasa, mutfak)
// or as the flat owner_* fields older admin clients send.
type CreateRestaurantInput struct {
	Name                string      `json:"name"`
	Address             string      `json:"address"`
	Phone               string      `json:"phone"`
	SubscriptionEndDate *string     `json:"subscription_end_date"`
	Owner               *StaffInput `json:"owner"`
	Cashier             *StaffInput `json:"kasa"`
	Kitchen             *StaffInput `json:"mutfak"`

	OwnerEmail    string `json:"owner_email"`
	OwnerPassword string `json:"owner_password"`
	OwnerFullName string `json:"owner_full_name"`
}

func (in CreateRestaurantInput) owner() StaffInput {
	if in.Owner != nil {
		return *in.Owner
	}
	return StaffInput{FullName: in.OwnerFullName, Email: in.OwnerEmail, Password: in.OwnerPassword}
}

type staffAccount struct {
	role  models.Role
	input StaffInput
}

// UpdateRestaurantInput is a patch; nil fields are left unchanged.
type UpdateRestaurantInput struct {
	Name                *string                    `json:"name"`
	Address             *string                    `json:"address"`
	Phone               *string                    `json:"phone"`
	SubscriptionStatus  *models.SubscriptionStatus `json:"subscription_status"`
	SubscriptionEndDate *string                    `json:"subscription_end_date"`
}

// RestaurantDetail is a restaurant together with its staff accounts.
type RestaurantDetail struct {
	models.Restaurant
	OwnerID string        `json:"owner_id,omitempty"`
	Staff   []models.User `json:"staff"`
}

type TenantService struct {
	DB *gorm.DB
}

func NewTenantService(db *gorm.DB) *TenantService {
	return &TenantService{DB: db}
}

// parseEndDate accepts YYYY-MM-DD or RFC 3339. An empty string clears the date.
func parseEndDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return nil, utils.Unprocessable("invalid subscription_end_date %q", value)
	}
	// A date means "through the end of that day".
	end := t.AddDate(0, 0, 1).Add(-time.Second)
	return &end, nil
}

// CreateRestaurant creates the restaurant and its staff in one transaction.
// Any duplicate email, including one repeated inside the request, aborts the
// whole thing.
func (s *TenantService) CreateRestaurant(ctx context.Context, sess Session, in CreateRestaurantInput) (*RestaurantDetail, error) {
	if err := Authorize(sess, ResourceRestaurant, ActionCreate, ""); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, utils.Unprocessable("name is required")
	}

	accounts := []staffAccount{{models.RoleOwner, in.owner()}}
	if in.Cashier != nil {
		accounts = append(accounts, staffAccount{models.RoleCashier, *in.Cashier})
	}
	if in.Kitchen != nil {
		accounts = append(accounts, staffAccount{models.RoleKitchen, *in.Kitchen})
	}

	seen := make(map[string]bool, len(accounts))
	for _, a := range accounts {
		email := models.NormalizeEmail(a.input.Email)
		if email == "" {
			return nil, utils.Unprocessable("email is required for the %s account", a.role)
		}
		if seen[email] {
			return nil, utils.Conflict("email %s is used for more than one account", email)
		}
		seen[email] = true
	}

	restaurant := models.Restaurant{
		Name:               name,
		Address:            strings.TrimSpace(in.Address),
		Phone:              strings.TrimSpace(in.Phone),
		SubscriptionStatus: models.SubscriptionActive,
	}
	if in.SubscriptionEndDate != nil {
		end, err := parseEndDate(*in.SubscriptionEndDate)
		if err != nil {
			return nil, err
		}
		restaurant.SubscriptionEndDate = end
	}

	detail := &RestaurantDetail{}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&restaurant).Error; err != nil {
			return fmt.Errorf("create restaurant: %w", err)
		}
		for _, a := range accounts {
			restaurantID := restaurant.ID
			user, err := createUser(tx, a.input, a.role, &restaurantID)
			if err != nil {
				return err
			}
			if a.role == models.RoleOwner {
				detail.OwnerID = user.ID
			}
			detail.Staff = append(detail.Staff, *user)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	detail.Restaurant = restaurant
	utils.InfoLogger.Printf("Restaurant %s (%s) created with %d staff accounts", restaurant.Name, restaurant.ID, len(detail.Staff))
	return detail, nil
}

func (s *TenantService) UpdateRestaurant(ctx context.Context, sess Session, id string, in UpdateRestaurantInput) (*models.Restaurant, error) {
	if err := Authorize(sess, ResourceRestaurant, ActionUpdate, id); err != nil {
		return nil, err
	}
	restaurant, err := loadRestaurant(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, utils.Unprocessable("name cannot be empty")
		}
		updates["name"] = name
	}
	if in.Address != nil {
		updates["address"] = strings.TrimSpace(*in.Address)
	}
	if in.Phone != nil {
		updates["phone"] = strings.TrimSpace(*in.Phone)
	}
	if in.SubscriptionStatus != nil {
		status := *in.SubscriptionStatus
		if status != models.SubscriptionActive && status != models.SubscriptionInactive {
			return nil, utils.Unprocessable("subscription_status must be active or inactive")
		}
		updates["subscription_status"] = status
	}
	if in.SubscriptionEndDate != nil {
		end, err := parseEndDate(*in.SubscriptionEndDate)
		if err != nil {
			return nil, err
		}
		updates["subscription_end_date"] = end
	}
	if len(updates) == 0 {
		return restaurant, nil
	}

	if err := s.DB.WithContext(ctx).Model(restaurant).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update restaurant: %w", err)
	}
	utils.InfoLogger.Printf("Restaurant %s updated", restaurant.ID)
	return loadRestaurant(s.DB.WithContext(ctx), id)
}

// DeleteRestaurant soft-deletes the restaurant and removes everything that
// lets anyone act on it: staff accounts, catalog, tables and open calls.
// Orders and reviews stay for reporting.
func (s *TenantService) DeleteRestaurant(ctx context.Context, sess Session, id string) error {
	if err := Authorize(sess, ResourceRestaurant, ActionDelete, id); err != nil {
		return err
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		restaurant, err := loadRestaurant(tx, id)
		if err != nil {
			return err
		}
		for _, model := range []interface{}{
			&models.User{}, &models.MenuItem{}, &models.Category{}, &models.Table{}, &models.WaiterCall{},
		} {
			if err := tx.Where("restaurant_id = ?", id).Delete(model).Error; err != nil {
				return fmt.Errorf("delete restaurant data: %w", err)
			}
		}
		if err := tx.Delete(restaurant).Error; err != nil {
			return fmt.Errorf("delete restaurant: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	utils.InfoLogger.Printf("Restaurant %s deleted", id)
	return nil
}

func (s *TenantService) ListRestaurants(ctx context.Context, sess Session) ([]models.Restaurant, error) {
	if err := Authorize(sess, ResourceRestaurant, ActionRead, sess.RestaurantID); err != nil {
		return nil, err
	}
	query := s.DB.WithContext(ctx).Order("created_at DESC")
	if !sess.IsAdmin() {
		query = query.Where("id = ?", sess.RestaurantID)
	}
	restaurants := []models.Restaurant{}
	if err := query.Find(&restaurants).Error; err != nil {
		return nil, fmt.Errorf("list restaurants: %w", err)
	}
	return restaurants, nil
}

func (s *TenantService) GetRestaurant(ctx context.Context, sess Session, id string) (*RestaurantDetail, error) {
	if err := Authorize(sess, ResourceRestaurant, ActionRead, id); err != nil {
		return nil, err
	}
	restaurant, err := loadRestaurant(s.DB.WithContext(ctx), id)
	if err != nil {
		return nil, err
	}
	detail := &RestaurantDetail{Restaurant: *restaurant}
	if sess.IsAdmin() {
		staff, err := s.staff(ctx, id)
		if err != nil {
			return nil, err
		}
		detail.Staff = staff
	}
	for _, u := range detail.Staff {
		if u.Role == models.RoleOwner {
			detail.OwnerID = u.ID
			break
		}
	}
	return detail, nil
}

func (s *TenantService) ListStaff(ctx context.Context, sess Session, restaurantID string) ([]models.User, error) {
	if err := Authorize(sess, ResourceUser, ActionRead, restaurantID); err != nil {
		return nil, err
	}
	if _, err := loadRestaurant(s.DB.WithContext(ctx), restaurantID); err != nil {
		return nil, err
	}
	return s.staff(ctx, restaurantID)
}

func (s *TenantService) staff(ctx context.Context, restaurantID string) ([]models.User, error) {
	users := []models.User{}
	err := s.DB.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	return users, nil
}

// ListUsers returns every account, optionally only those of one restaurant.
func (s *TenantService) ListUsers(ctx context.Context, sess Session, restaurantID string) ([]models.User, error) {
	if err := Authorize(sess, ResourceUser, ActionRead, restaurantID); err != nil {
		return nil, err
	}
	query := s.DB.WithContext(ctx).Order("created_at ASC")
	if restaurantID != "" {
		query = query.Where("restaurant_id = ?", restaurantID)
	}
	users := []models.User{}
	if err := query.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
