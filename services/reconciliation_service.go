package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/abellano-woodworks/abellano-furniture-api/models"
	"gorm.io/gorm"
)

// ReconciliationError is a transient failure while aligning local order
// state with the gateway outcome. The pending marker is left in place so the
// pass is retried on the client's next foreground signal.
type ReconciliationError struct {
	Reason string
	Err    error
}

func (e *ReconciliationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("reconciliation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("reconciliation failed: %s", e.Reason)
}

func (e *ReconciliationError) Unwrap() error {
	return e.Err
}

// ReconciliationResult reports what a reconciliation pass did.
type ReconciliationResult struct {
	OrderID          uint   `json:"order_id,omitempty"`
	PaymentStatus    string `json:"payment_status,omitempty"`
	Pending          bool   `json:"pending"`           // a marker existed when the pass started
	Reconciled       bool   `json:"reconciled"`        // cleanup ran and the marker was cleared
	CartLinesCleared int    `json:"cart_lines_cleared"`
	StockDecremented bool   `json:"stock_decremented"`
}

// Reconcile runs one reconciliation pass for the user's pending order. It is
// invoked every time the client regains foreground focus after a gateway
// redirect, with no bound on retries, so the marker check up front is what
// makes repeated invocations safe: once the marker is gone the pass is a
// no-op regardless of how the downstream calls behave.
//
// When the gateway has confirmed payment the pass removes each purchased
// cart line individually (continue-on-error), submits one batched stock
// decrement for every stock line, and only then clears the marker. Any
// failure along the way leaves the marker so the whole batch is retried.
func Reconcile(db *gorm.DB, userID uint) (*ReconciliationResult, error) {
	var marker models.PendingPayment
	if err := db.Where("user_id = ?", userID).First(&marker).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing pending: already reconciled or never redirected.
			return &ReconciliationResult{Pending: false, Reconciled: false}, nil
		}
		return nil, &ReconciliationError{Reason: "failed to read pending-payment marker", Err: err}
	}

	result := &ReconciliationResult{OrderID: marker.OrderID, Pending: true}

	var order models.Order
	if err := db.Preload("Lines").First(&order, marker.OrderID).Error; err != nil {
		return nil, &ReconciliationError{Reason: "failed to query order status", Err: err}
	}
	result.PaymentStatus = order.PaymentStatus

	if order.PaymentStatus != models.PaymentStatusDownpayment && order.PaymentStatus != models.PaymentStatusFullyPaid {
		// Gateway outcome not observed yet; leave the marker for the next
		// foreground event.
		return result, nil
	}

	cleanupFailed := false

	// (a) Remove purchased lines from the cart, one removal per line.
	for i := range order.Lines {
		line := &order.Lines[i]
		if line.CartItemID == nil {
			continue
		}
		if err := db.Delete(&models.CartItem{}, *line.CartItemID).Error; err != nil {
			cleanupFailed = true
			log.Printf("reconciliation: failed to clear cart line %d for order %d: %v", *line.CartItemID, order.ID, err)
		} else {
			result.CartLinesCleared++
		}
	}

	// (b) One batched stock decrement covering every stock line.
	if err := decrementStock(db, order.Lines); err != nil {
		cleanupFailed = true
		log.Printf("reconciliation: stock decrement failed for order %d: %v", order.ID, err)
	} else {
		result.StockDecremented = true
	}

	if cleanupFailed {
		return result, &ReconciliationError{Reason: "cleanup incomplete, will retry"}
	}

	// (c) Clear the marker only after all cleanup succeeded.
	if err := db.Delete(&models.PendingPayment{}, marker.ID).Error; err != nil {
		return result, &ReconciliationError{Reason: "failed to clear pending-payment marker", Err: err}
	}

	result.Reconciled = true
	return result, nil
}

// decrementStock applies the whole order's stock consumption as a single
// transaction. Stock is never decremented speculatively at checkout, so
// abandoned payment attempts never reserve inventory.
func decrementStock(db *gorm.DB, lines []models.OrderLine) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for i := range lines {
			line := &lines[i]
			if line.IsCustom || line.ProductID == nil {
				continue
			}
			result := tx.Model(&models.Product{}).
				Where("id = ? AND stock >= ?", *line.ProductID, line.Quantity).
				Update("stock", gorm.Expr("stock - ?", line.Quantity))
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("insufficient stock for product %d", *line.ProductID)
			}
		}
		return nil
	})
}
