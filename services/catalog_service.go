package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/utils"
	"gorm.io/gorm"
)

type CategoryInput struct {
	Name  *string `json:"name"`
	Order *int    `json:"order"`
}

// MenuItemInput serves both create and update. On update nil fields are
// left unchanged.
type MenuItemInput struct {
	CategoryID             *string  `json:"category_id"`
	Name                   *string  `json:"name"`
	Description            *string  `json:"description"`
	Price                  *float64 `json:"price"`
	ImageURL               *string  `json:"image_url"`
	Available              *bool    `json:"available"`
	PreparationTimeMinutes *int     `json:"preparation_time_minutes"`
}

type CatalogService struct {
	DB *gorm.DB
}

func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

func orderedCategories(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("name ASC")
}

func (s *CatalogService) ListCategories(ctx context.Context, sess Session) ([]models.Category, error) {
	if err := Authorize(sess, ResourceCategory, ActionRead, sess.RestaurantID); err != nil {
		return nil, err
	}
	categories := []models.Category{}
	err := orderedCategories(s.DB.WithContext(ctx)).
		Where("restaurant_id = ?", sess.RestaurantID).
		Find(&categories).Error
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, sess Session, in CategoryInput) (*models.Category, error) {
	if err := Authorize(sess, ResourceCategory, ActionCreate, sess.RestaurantID); err != nil {
		return nil, err
	}
	if in.Name == nil || strings.TrimSpace(*in.Name) == "" {
		return nil, utils.Unprocessable("name is required")
	}

	category := models.Category{
		RestaurantID: sess.RestaurantID,
		Name:         strings.TrimSpace(*in.Name),
	}
	if in.Order != nil {
		category.Order = *in.Order
	}
	if err := s.DB.WithContext(ctx).Create(&category).Error; err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}
	utils.InfoLogger.Printf("Category %q created for restaurant %s", category.Name, category.RestaurantID)
	return &category, nil
}

func (s *CatalogService) loadCategory(ctx context.Context, sess Session, id string, action Action) (*models.Category, error) {
	var category models.Category
	if err := first(s.DB.WithContext(ctx), &category, id, "category"); err != nil {
		return nil, err
	}
	if err := Authorize(sess, ResourceCategory, action, category.RestaurantID); err != nil {
		return nil, err
	}
	return &category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, sess Session, id string, in CategoryInput) (*models.Category, error) {
	category, err := s.loadCategory(ctx, sess, id, ActionUpdate)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, utils.Unprocessable("name cannot be empty")
		}
		category.Name = name
	}
	if in.Order != nil {
		category.Order = *in.Order
	}
	if err := s.DB.WithContext(ctx).Save(category).Error; err != nil {
		return nil, fmt.Errorf("update category: %w", err)
	}
	return category, nil
}

// DeleteCategory refuses to orphan menu items.
func (s *CatalogService) DeleteCategory(ctx context.Context, sess Session, id string) error {
	category, err := s.loadCategory(ctx, sess, id, ActionDelete)
	if err != nil {
		return err
	}
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.MenuItem{}).Where("category_id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("count category items: %w", err)
	}
	if count > 0 {
		return utils.Conflict("category %q still has %d menu items", category.Name, count)
	}
	if err := s.DB.WithContext(ctx).Delete(category).Error; err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	utils.InfoLogger.Printf("Category %s deleted", id)
	return nil
}

func (s *CatalogService) ListItems(ctx context.Context, sess Session, categoryID string) ([]models.MenuItem, error) {
	if err := Authorize(sess, ResourceMenuItem, ActionRead, sess.RestaurantID); err != nil {
		return nil, err
	}
	query := s.DB.WithContext(ctx).Where("restaurant_id = ?", sess.RestaurantID)
	if categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	items := []models.MenuItem{}
	if err := query.Order("name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	return items, nil
}

// checkCategory makes sure an item points at a category of its own restaurant.
func (s *CatalogService) checkCategory(ctx context.Context, restaurantID, categoryID string) error {
	var count int64
	err := s.DB.WithContext(ctx).Model(&models.Category{}).
		Where("id = ? AND restaurant_id = ?", categoryID, restaurantID).
		Count(&count).Error
	if err != nil {
		return fmt.Errorf("check category: %w", err)
	}
	if count == 0 {
		return utils.Unprocessable("category %s does not belong to this restaurant", categoryID)
	}
	return nil
}

func validateItemFields(in MenuItemInput) error {
	if in.Name != nil && strings.TrimSpace(*in.Name) == "" {
		return utils.Unprocessable("name cannot be empty")
	}
	if in.Price != nil && (*in.Price < 0 || *in.Price > utils.MaxAmount) {
		return utils.Unprocessable("price must be between 0 and %.2f", utils.MaxAmount)
	}
	if in.PreparationTimeMinutes != nil && *in.PreparationTimeMinutes < 1 {
		return utils.Unprocessable("preparation_time_minutes must be at least 1")
	}
	return nil
}

func (s *CatalogService) CreateItem(ctx context.Context, sess Session, in MenuItemInput) (*models.MenuItem, error) {
	if err := Authorize(sess, ResourceMenuItem, ActionCreate, sess.RestaurantID); err != nil {
		return nil, err
	}
	if in.Name == nil || in.Price == nil || in.CategoryID == nil {
		return nil, utils.Unprocessable("category_id, name and price are required")
	}
	if err := validateItemFields(in); err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, sess.RestaurantID, *in.CategoryID); err != nil {
		return nil, err
	}

	item := models.MenuItem{
		RestaurantID:           sess.RestaurantID,
		CategoryID:             *in.CategoryID,
		Name:                   strings.TrimSpace(*in.Name),
		Price:                  utils.RoundMoney(*in.Price),
		ImageURL:               in.ImageURL,
		Available:              true,
		PreparationTimeMinutes: models.DefaultPreparationMinutes,
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Available != nil {
		item.Available = *in.Available
	}
	if in.PreparationTimeMinutes != nil {
		item.PreparationTimeMinutes = *in.PreparationTimeMinutes
	}

	if err := s.DB.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	utils.InfoLogger.Printf("Menu item %q created (price=%.2f)", item.Name, item.Price)
	return &item, nil
}

func (s *CatalogService) loadItem(ctx context.Context, sess Session, id string, action Action) (*models.MenuItem, error) {
	var item models.MenuItem
	if err := first(s.DB.WithContext(ctx), &item, id, "menu item"); err != nil {
		return nil, err
	}
	if err := Authorize(sess, ResourceMenuItem, action, item.RestaurantID); err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateItem changes the catalog only. Orders already placed keep the
// name and price they were created with.
func (s *CatalogService) UpdateItem(ctx context.Context, sess Session, id string, in MenuItemInput) (*models.MenuItem, error) {
	item, err := s.loadItem(ctx, sess, id, ActionUpdate)
	if err != nil {
		return nil, err
	}
	if err := validateItemFields(in); err != nil {
		return nil, err
	}
	if in.CategoryID != nil && *in.CategoryID != item.CategoryID {
		if err := s.checkCategory(ctx, item.RestaurantID, *in.CategoryID); err != nil {
			return nil, err
		}
		item.CategoryID = *in.CategoryID
	}
	if in.Name != nil {
		item.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		item.Description = *in.Description
	}
	if in.Price != nil {
		item.Price = utils.RoundMoney(*in.Price)
	}
	if in.ImageURL != nil {
		item.ImageURL = in.ImageURL
		if *in.ImageURL == "" {
			item.ImageURL = nil
		}
	}
	if in.Available != nil {
		item.Available = *in.Available
	}
	if in.PreparationTimeMinutes != nil {
		item.PreparationTimeMinutes = *in.PreparationTimeMinutes
	}

	if err := s.DB.WithContext(ctx).Save(item).Error; err != nil {
		return nil, fmt.Errorf("update menu item: %w", err)
	}
	return item, nil
}

func (s *CatalogService) DeleteItem(ctx context.Context, sess Session, id string) error {
	item, err := s.loadItem(ctx, sess, id, ActionDelete)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(item).Error; err != nil {
		return fmt.Errorf("delete menu item: %w", err)
	}
	utils.InfoLogger.Printf("Menu item %s deleted", id)
	return nil
}
