package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Table struct {
	ID           string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	RestaurantID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_restaurant_table_number" json:"restaurant_id"`
	TableNumber  string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_restaurant_table_number" json:"table_number"`
	QRPayload    string    `gorm:"type:varchar(255);not null" json:"qr_payload"`
	QRURL        string    `gorm:"-" json:"qr_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// BeforeCreate mints the id first so the QR payload can point at it.
func (t *Table) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.QRPayload = MenuPath(t.ID)
	return nil
}

// MenuPath is the public, stable path a table's QR code resolves to.
func MenuPath(tableID string) string {
	return "/menu/" + tableID
}
