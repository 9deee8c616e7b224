package models

import (
	"time"

	"gorm.io/gorm"
)

// Order statuses. These string values are persisted and matched on by API
// consumers, so they must never be renamed.
const (
	StatusPending             = "Pending"
	StatusOnProcess           = "On Process"
	StatusReadyForPickup      = "Ready for Pickup"
	StatusDelivered           = "Delivered"
	StatusPickedUp            = "Picked Up"
	StatusRequestingForRefund = "Requesting for Refund"
	StatusRefunded            = "Refunded"
	StatusCancelled           = "Cancelled"
)

// Payment statuses, tracked independently from the order status.
const (
	PaymentStatusPending     = "Pending Payment"
	PaymentStatusDownpayment = "Downpayment Received"
	PaymentStatusFullyPaid   = "Fully Paid"
	PaymentStatusRefunded    = "Refunded"
)

// Delivery options
const (
	DeliveryOptionDelivery = "delivery"
	DeliveryOptionPickup   = "pickup"
)

// Payment types. Down payment is only legal when the order has at least one
// customized line.
const (
	PaymentTypeFull        = "full_payment"
	PaymentTypeDownPayment = "down_payment"
)

// PlankCounts records how many planks of each kind a custom piece consumes.
type PlankCounts struct {
	Legs     int `json:"legs"`
	Tabletop int `json:"tabletop"`
	Frame    int `json:"frame"`
}

// PriceBreakdown is the full costing of a single custom piece as produced by
// the pricing engine. It is stored verbatim on the order line so the numbers
// shown to the buyer at quote time survive later catalog or labor-rate edits.
type PriceBreakdown struct {
	TotalLaborCost    float64     `json:"total_labor_cost"`
	TotalMaterialCost float64     `json:"total_material_cost"`
	OverheadCost      float64     `json:"overhead_cost"`
	Subtotal          float64     `json:"subtotal"`
	ProfitAmount      float64     `json:"profit_amount"`
	FinalSellingPrice float64     `json:"final_selling_price"`
	Planks            PlankCounts `json:"planks"`
	Volume            float64     `json:"volume"` // cubic feet, informational only
}

// OrderLine is a single purchased item. Stock items reference a Product;
// custom items carry their dimensions, chosen materials and the frozen
// pricing breakdown instead.
type OrderLine struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	OrderID     uint            `gorm:"not null;index" json:"order_id"`
	ProductID   *uint           `gorm:"index" json:"product_id,omitempty"` // nil for custom pieces
	Product     *Product        `gorm:"foreignKey:ProductID" json:"product,omitempty"`
	CartItemID  *uint           `json:"cart_item_id,omitempty"` // cart line this was checked out from
	Name        string          `gorm:"not null" json:"name"`
	Quantity    int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	UnitPrice   float64         `gorm:"not null" json:"unit_price"`
	IsCustom    bool            `gorm:"not null;default:false" json:"is_custom"`
	Length      *float64        `json:"length,omitempty"` // feet
	Width       *float64        `json:"width,omitempty"`
	Height      *float64        `json:"height,omitempty"`
	LaborDays   *float64        `json:"labor_days,omitempty"`
	LegMaterial *string         `json:"leg_material,omitempty"`
	TopMaterial *string         `json:"top_material,omitempty"`
	Breakdown   *PriceBreakdown `gorm:"serializer:json" json:"breakdown,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the OrderLine model
func (OrderLine) TableName() string {
	return "order_lines"
}

// Order represents a placed order. Status and PaymentStatus are decoupled:
// the first tracks fulfillment, the second tracks gateway confirmation.
// Orders are never deleted; terminal states are retained for audit.
type Order struct {
	ID                uint           `gorm:"primaryKey" json:"id"`
	CustomerID        uint           `gorm:"not null;index" json:"customer_id"`
	Customer          User           `gorm:"foreignKey:CustomerID" json:"customer"`
	Lines             []OrderLine    `gorm:"foreignKey:OrderID" json:"lines"`
	DeliveryOption    string         `gorm:"not null" json:"delivery_option"` // "delivery" or "pickup"
	ShippingAddress   *string        `json:"shipping_address,omitempty"`
	ShippingFee       float64        `gorm:"not null;default:0;check:shipping_fee >= 0" json:"shipping_fee"`
	PaymentType       string         `gorm:"not null" json:"payment_type"` // "full_payment" or "down_payment"
	Amount            float64        `gorm:"not null" json:"amount"`
	AmountPaid        float64        `gorm:"not null;default:0" json:"amount_paid"`
	Balance           float64        `gorm:"not null" json:"balance"`
	Status            string         `gorm:"not null" json:"status"`
	PaymentStatus     string         `gorm:"not null" json:"payment_status"`
	BalanceGatewayRef *string        `gorm:"uniqueIndex" json:"-"` // checkout session for the balance charge
	Remarks           *string        `json:"remarks,omitempty"`
	DeliveryProofKey  *string        `json:"delivery_proof_key,omitempty"`          // S3 key of the delivery photo
	DeliveryProofURL  *string        `gorm:"-" json:"delivery_proof_url,omitempty"` // computed, presigned
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// HasCustomLine reports whether any line on the order is a custom piece.
func (o *Order) HasCustomLine() bool {
	for i := range o.Lines {
		if o.Lines[i].IsCustom {
			return true
		}
	}
	return false
}
