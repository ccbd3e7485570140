package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultPreparationMinutes = 10

type MenuItem struct {
	ID                     string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	RestaurantID           string    `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	CategoryID             string    `gorm:"type:varchar(36);not null;index" json:"category_id"`
	Name                   string    `gorm:"type:varchar(255);not null" json:"name"`
	Description            string    `gorm:"type:text" json:"description"`
	Price                  float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	ImageURL               *string   `gorm:"type:varchar(500)" json:"image_url"`
	Available              bool      `gorm:"not null" json:"available"`
	PreparationTimeMinutes int       `gorm:"not null;default:10" json:"preparation_time_minutes"`
	CreatedAt              time.Time `json:"created_at"`
	UpdatedAt              time.Time `json:"-"`
}

func (m *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.PreparationTimeMinutes <= 0 {
		m.PreparationTimeMinutes = DefaultPreparationMinutes
	}
	return nil
}
