package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WaiterCall struct {
	ID           string `gorm:"type:varchar(36);primaryKey" json:"id"`
	RestaurantID string `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	TableID      string `gorm:"type:varchar(36);not null;index" json:"table_id"`
	TableNumber  string `gorm:"type:varchar(50);not null" json:"table_number"`
	Resolved     bool   `gorm:"not null;default:false;index" json:"resolved"`
	// OpenTableID is the table id while the call is open and NULL once
	// resolved; its unique index allows one open call per table.
	OpenTableID *string    `gorm:"type:varchar(36);uniqueIndex" json:"-"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

func (w *WaiterCall) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
