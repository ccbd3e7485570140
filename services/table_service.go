package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yeremiapane/qr-restaurant/models"
	"github.com/yeremiapane/qr-restaurant/utils"
	"gorm.io/gorm"
)

type TableInput struct {
	TableNumber string `json:"table_number"`
}

// PublicMenu is everything a diner's device needs after scanning a table's QR code.
type PublicMenu struct {
	Restaurant models.Restaurant `json:"restaurant"`
	Table      models.Table      `json:"table"`
	Categories []models.Category `json:"categories"`
	Items      []models.MenuItem `json:"items"`
}

type TableService struct {
	DB      *gorm.DB
	BaseURL string
}

func NewTableService(db *gorm.DB, baseURL string) *TableService {
	return &TableService{DB: db, BaseURL: strings.TrimRight(baseURL, "/")}
}

// withURL fills in the absolute URL a QR code for t should encode.
func (s *TableService) withURL(t *models.Table) {
	t.QRURL = s.BaseURL + t.QRPayload
}

// ListTables lists the caller's tables. Admins may pass a restaurant id to
// narrow the platform-wide list.
func (s *TableService) ListTables(ctx context.Context, sess Session, restaurantID string) ([]models.Table, error) {
	if err := Authorize(sess, ResourceTable, ActionRead, sess.RestaurantID); err != nil {
		return nil, err
	}
	tables := []models.Table{}
	query := s.DB.WithContext(ctx)
	if scope := readScope(sess, restaurantID); scope != "" {
		query = query.Where("restaurant_id = ?", scope)
	}
	err := query.Order("restaurant_id ASC, table_number ASC").Find(&tables).Error
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	for i := range tables {
		s.withURL(&tables[i])
	}
	return tables, nil
}

func (s *TableService) numberTaken(ctx context.Context, restaurantID, number, exceptID string) (bool, error) {
	var count int64
	query := s.DB.WithContext(ctx).Model(&models.Table{}).
		Where("restaurant_id = ? AND table_number = ?", restaurantID, number)
	if exceptID != "" {
		query = query.Where("id <> ?", exceptID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, fmt.Errorf("check table number: %w", err)
	}
	return count > 0, nil
}

func (s *TableService) CreateTable(ctx context.Context, sess Session, in TableInput) (*models.Table, error) {
	if err := Authorize(sess, ResourceTable, ActionCreate, sess.RestaurantID); err != nil {
		return nil, err
	}
	number := strings.TrimSpace(in.TableNumber)
	if number == "" {
		return nil, utils.Unprocessable("table_number is required")
	}
	taken, err := s.numberTaken(ctx, sess.RestaurantID, number, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, utils.Conflict("table %s already exists", number)
	}

	table := models.Table{RestaurantID: sess.RestaurantID, TableNumber: number}
	if err := s.DB.WithContext(ctx).Create(&table).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, utils.Conflict("table %s already exists", number)
		}
		return nil, fmt.Errorf("create table: %w", err)
	}
	s.withURL(&table)
	utils.InfoLogger.Printf("New table created: %s (restaurant=%s)", table.TableNumber, table.RestaurantID)
	return &table, nil
}

func (s *TableService) loadTable(ctx context.Context, sess Session, id string, action Action) (*models.Table, error) {
	var table models.Table
	if err := first(s.DB.WithContext(ctx), &table, id, "table"); err != nil {
		return nil, err
	}
	if err := Authorize(sess, ResourceTable, action, table.RestaurantID); err != nil {
		return nil, err
	}
	return &table, nil
}

func (s *TableService) GetTable(ctx context.Context, sess Session, id string) (*models.Table, error) {
	table, err := s.loadTable(ctx, sess, id, ActionRead)
	if err != nil {
		return nil, err
	}
	s.withURL(table)
	return table, nil
}

// UpdateTable renumbers a table. The id, and so the QR payload, never changes.
func (s *TableService) UpdateTable(ctx context.Context, sess Session, id string, in TableInput) (*models.Table, error) {
	table, err := s.loadTable(ctx, sess, id, ActionUpdate)
	if err != nil {
		return nil, err
	}
	number := strings.TrimSpace(in.TableNumber)
	if number == "" {
		return nil, utils.Unprocessable("table_number is required")
	}
	if number != table.TableNumber {
		taken, err := s.numberTaken(ctx, table.RestaurantID, number, table.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, utils.Conflict("table %s already exists", number)
		}
		if err := s.DB.WithContext(ctx).Model(table).Update("table_number", number).Error; err != nil {
			if isDuplicateKey(err) {
				return nil, utils.Conflict("table %s already exists", number)
			}
			return nil, fmt.Errorf("update table: %w", err)
		}
		table.TableNumber = number
	}
	s.withURL(table)
	return table, nil
}

func (s *TableService) DeleteTable(ctx context.Context, sess Session, id string) error {
	table, err := s.loadTable(ctx, sess, id, ActionDelete)
	if err != nil {
		return err
	}
	if err := s.DB.WithContext(ctx).Delete(table).Error; err != nil {
		return fmt.Errorf("delete table: %w", err)
	}
	utils.InfoLogger.Printf("Table %s deleted", table.TableNumber)
	return nil
}

// PublicMenu resolves a scanned table to its restaurant's available menu.
func (s *TableService) PublicMenu(ctx context.Context, tableID string) (*PublicMenu, error) {
	db := s.DB.WithContext(ctx)

	var table models.Table
	if err := first(db, &table, tableID, "table"); err != nil {
		return nil, err
	}
	restaurant, err := loadRestaurant(db, table.RestaurantID)
	if errors.Is(err, utils.ErrNotFound) {
		return nil, utils.NotFound("table not found")
	}
	if err != nil {
		return nil, err
	}
	if !restaurant.Active() {
		return nil, utils.Forbidden("restaurant subscription is inactive")
	}

	menu := &PublicMenu{Restaurant: *restaurant, Table: table, Categories: []models.Category{}, Items: []models.MenuItem{}}
	s.withURL(&menu.Table)
	if err := orderedCategories(db).Where("restaurant_id = ?", restaurant.ID).Find(&menu.Categories).Error; err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	err = db.Where("restaurant_id = ? AND available = ?", restaurant.ID, true).
		Order("name ASC").
		Find(&menu.Items).Error
	if err != nil {
		return nil, fmt.Errorf("load menu items: %w", err)
	}
	return menu, nil
}
