package models

import (
	"time"

	"gorm.io/gorm"
)

// Product represents a ready-made furniture piece sold from stock.
// Stock is only ever decremented by the payment reconciliation pass,
// never speculatively at checkout time.
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Price     float64        `gorm:"not null;check:price >= 0" json:"price"`
	Stock     int            `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
