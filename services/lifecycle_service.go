package services

import (
	"fmt"
	"log"
	"time"

	"github.com/abellano-woodworks/abellano-furniture-api/models"
	"gorm.io/gorm"
)

// transitionTable maps each order status to the set of statuses reachable
// from it. Checked before any mutation; statuses absent from the map are
// terminal.
var transitionTable = map[string][]string{
	models.StatusPending:             {models.StatusOnProcess, models.StatusCancelled},
	models.StatusOnProcess:           {models.StatusReadyForPickup, models.StatusDelivered, models.StatusPickedUp, models.StatusCancelled},
	models.StatusReadyForPickup:      {models.StatusPickedUp, models.StatusDelivered, models.StatusRequestingForRefund},
	models.StatusDelivered:           {models.StatusRequestingForRefund},
	models.StatusPickedUp:            {models.StatusRequestingForRefund},
	models.StatusRequestingForRefund: {models.StatusRefunded},
}

// InvalidTransitionError reports a transition not allowed by the state graph,
// including one lost to a concurrent transition on the same order.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition order from %q to %q", e.From, e.To)
}

// RemarksRequiredError is returned when a negative terminal transition is
// requested without a justification.
type RemarksRequiredError struct {
	Target string
}

func (e *RemarksRequiredError) Error() string {
	return fmt.Sprintf("remarks are required to mark an order %q", e.Target)
}

// ProofRequiredError is returned when a delivery-route order is marked
// Delivered without a delivery photo.
type ProofRequiredError struct{}

func (e *ProofRequiredError) Error() string {
	return "a delivery proof photo is required to mark a delivery order as Delivered"
}

// CanTransition reports whether the state graph allows moving from one
// status to another.
func CanTransition(from, to string) bool {
	for _, allowed := range transitionTable[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// InitialStatus computes the entry status for a newly created order. Custom
// work must begin immediately, so any custom line puts the order On Process
// regardless of delivery option; otherwise pickup orders are ready at once.
func InitialStatus(lines []models.OrderLine, deliveryOption string) string {
	for i := range lines {
		if lines[i].IsCustom {
			return models.StatusOnProcess
		}
	}
	if deliveryOption == models.DeliveryOptionPickup {
		return models.StatusReadyForPickup
	}
	return models.StatusOnProcess
}

// Transition moves an order to the requested status. Validation (state
// graph, remarks, proof) happens before any mutation; the commit itself is
// an optimistic update conditioned on the status the order was read at, so
// of two racing transitions only one can succeed and the loser sees an
// InvalidTransitionError. The audit event is emitted after commit,
// best-effort: a sink failure is logged and never surfaced.
func Transition(db *gorm.DB, orderID uint, requested, remarks, proofKey, actor string) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Lines").First(&order, orderID).Error; err != nil {
		return nil, err
	}

	if !CanTransition(order.Status, requested) {
		return nil, &InvalidTransitionError{From: order.Status, To: requested}
	}

	if requested == models.StatusCancelled || requested == models.StatusRefunded {
		if remarks == "" {
			return nil, &RemarksRequiredError{Target: requested}
		}
	}

	if requested == models.StatusDelivered && order.DeliveryOption == models.DeliveryOptionDelivery {
		if proofKey == "" && (order.DeliveryProofKey == nil || *order.DeliveryProofKey == "") {
			return nil, &ProofRequiredError{}
		}
	}

	fromStatus := order.Status
	updates := map[string]interface{}{
		"status": requested,
	}
	if remarks != "" {
		updates["remarks"] = remarks
	}
	if proofKey != "" {
		updates["delivery_proof_key"] = proofKey
	}
	// The payment status is decoupled from fulfillment and normally driven by
	// gateway confirmation; a completed refund is the one transition that
	// settles it here.
	if requested == models.StatusRefunded {
		updates["payment_status"] = models.PaymentStatusRefunded
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, fromStatus).
			Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			// A concurrent transition moved the order first.
			return &InvalidTransitionError{From: fromStatus, To: requested}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := db.Preload("Lines").Preload("Customer").First(&order, order.ID).Error; err != nil {
		return nil, err
	}

	emitAuditEvent(AuditEvent{
		OrderID:    order.ID,
		FromStatus: fromStatus,
		ToStatus:   requested,
		Actor:      actor,
		Timestamp:  time.Now().UTC(),
		Remarks:    remarks,
	})

	return &order, nil
}

// emitAuditEvent delivers the event to the external audit collaborator.
// Failures are swallowed by design: audit delivery must never block or fail
// a business transition.
func emitAuditEvent(event AuditEvent) {
	sink := GetAuditSink()
	if sink == nil {
		log.Printf("audit sink not configured, dropping event for order %d (%s -> %s)",
			event.OrderID, event.FromStatus, event.ToStatus)
		return
	}
	if err := sink.Emit(event); err != nil {
		log.Printf("failed to deliver audit event for order %d (%s -> %s): %v",
			event.OrderID, event.FromStatus, event.ToStatus, err)
	}
}
