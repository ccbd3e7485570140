package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubscriptionStatus string

const (
	SubscriptionActive   SubscriptionStatus = "active"
	SubscriptionInactive SubscriptionStatus = "inactive"
)

type Restaurant struct {
	ID                  string             `gorm:"type:varchar(36);primaryKey" json:"id"`
	Name                string             `gorm:"type:varchar(255);not null" json:"name"`
	Address             string             `gorm:"type:varchar(500)" json:"address"`
	Phone               string             `gorm:"type:varchar(50)" json:"phone"`
	SubscriptionStatus  SubscriptionStatus `gorm:"type:varchar(20);not null;default:'active'" json:"subscription_status"`
	SubscriptionEndDate *time.Time         `json:"subscription_end_date"`
	CreatedAt           time.Time          `json:"created_at"`
	UpdatedAt           time.Time          `json:"updated_at"`
	DeletedAt           gorm.DeletedAt     `gorm:"index" json:"-"`
}

func (r *Restaurant) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.SubscriptionStatus == "" {
		r.SubscriptionStatus = SubscriptionActive
	}
	return nil
}

func (r *Restaurant) Active() bool {
	return r.SubscriptionStatus == SubscriptionActive
}
