package models

import (
	"time"
)

// PendingPayment is the locally persisted marker written before the buyer is
// redirected to the payment gateway. Its presence means the order has not
// been reconciled yet; the reconciliation pass deletes it only after cart
// cleanup and the batched stock decrement have completed, which is what makes
// re-running the pass safe.
type PendingPayment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	OrderID    uint      `gorm:"uniqueIndex;not null" json:"order_id"`
	Order      Order     `gorm:"foreignKey:OrderID" json:"-"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	GatewayRef string    `gorm:"uniqueIndex;not null" json:"gateway_ref"` // checkout session reference
	CreatedAt  time.Time `json:"created_at"`
}

// TableName specifies the table name for the PendingPayment model
func (PendingPayment) TableName() string {
	return "pending_payments"
}
