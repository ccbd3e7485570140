package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPreparing OrderStatus = "preparing"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
)

// Valid reports whether s is a known lifecycle state.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderPreparing, OrderReady, OrderCompleted:
		return true
	}
	return false
}

// Next returns the only state s may move to. ok is false for completed.
func (s OrderStatus) Next() (next OrderStatus, ok bool) {
	switch s {
	case OrderPending:
		return OrderPreparing, true
	case OrderPreparing:
		return OrderReady, true
	case OrderReady:
		return OrderCompleted, true
	}
	return "", false
}

type PaymentMethod string

const (
	PaymentCash   PaymentMethod = "cash"
	PaymentOnline PaymentMethod = "online"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentCash || m == PaymentOnline
}

type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "unpaid"
	PaymentPaid   PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	return s == PaymentUnpaid || s == PaymentPaid
}

type Order struct {
	ID                         string        `gorm:"type:varchar(36);primaryKey" json:"id"`
	RestaurantID               string        `gorm:"type:varchar(36);not null;index" json:"restaurant_id"`
	TableID                    string        `gorm:"type:varchar(36);not null;index" json:"table_id"`
	TableNumber                string        `gorm:"type:varchar(50);not null" json:"table_number"`
	Items                      []OrderItem   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items"`
	TotalAmount                float64       `gorm:"type:decimal(10,2);not null;default:0.00" json:"total_amount"`
	PaymentMethod              PaymentMethod `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus              PaymentStatus `gorm:"type:varchar(20);not null;default:'unpaid';index" json:"payment_status"`
	Status                     OrderStatus   `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	EstimatedCompletionMinutes int           `gorm:"not null" json:"estimated_completion_minutes"`
	PaidAt                     *time.Time    `json:"paid_at,omitempty"`
	CreatedAt                  time.Time     `gorm:"index" json:"created_at"`
	UpdatedAt                  time.Time     `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	return nil
}
