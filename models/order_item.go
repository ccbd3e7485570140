package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderItem is the name and price of a menu item as it was when the order
// was placed. Catalog edits never touch it.
type OrderItem struct {
	ID         string  `gorm:"type:varchar(36);primaryKey" json:"-"`
	OrderID    string  `gorm:"type:varchar(36);not null;index" json:"-"`
	Position   int     `gorm:"not null" json:"-"`
	MenuItemID string  `gorm:"type:varchar(36);not null;index" json:"menu_item_id"`
	Name       string  `gorm:"type:varchar(255);not null" json:"name"`
	Price      float64 `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity   int     `gorm:"not null" json:"quantity"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}
