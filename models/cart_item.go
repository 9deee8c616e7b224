package models

import (
	"time"
)

// CartItem is a line in a buyer's cart. Custom pieces are priced through the
// pricing engine at the moment they are added, so the cart always carries a
// final unit price. Purchased lines are removed by the payment
// reconciliation pass once the gateway confirms payment.
type CartItem struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	UserID      uint            `gorm:"not null;index" json:"user_id"`
	ProductID   *uint           `gorm:"index" json:"product_id,omitempty"` // nil for custom pieces
	Product     *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	Name        string          `gorm:"not null" json:"name"`
	Quantity    int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice   float64         `gorm:"not null" json:"unit_price"`
	IsCustom    bool            `gorm:"not null;default:false" json:"is_custom"`
	Length      *float64        `json:"length,omitempty"`
	Width       *float64        `json:"width,omitempty"`
	Height      *float64        `json:"height,omitempty"`
	LaborDays   *float64        `json:"labor_days,omitempty"`
	LegMaterial *string         `json:"leg_material,omitempty"`
	TopMaterial *string         `json:"top_material,omitempty"`
	Breakdown   *PriceBreakdown `gorm:"serializer:json" json:"breakdown,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the CartItem model
func (CartItem) TableName() string {
	return "cart_items"
}
