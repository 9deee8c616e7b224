package services

import (
	"fmt"

	"github.com/abellano-woodworks/abellano-furniture-api/models"
	"gorm.io/gorm"
)

// ConfirmPayment applies the gateway's confirmation of the checkout charge.
// A pending order moves to Downpayment Received or Fully Paid depending on
// its payment type. The checkout session only ever charges the deposit (or the
// full amount), so any later payment status means the charge was already
// applied and the call is a no-op; gateways redeliver webhooks and a replayed
// deposit confirmation must never settle the balance. The update is
// conditioned on the payment status the order was read at, mirroring the
// fulfillment transition's optimistic commit.
func ConfirmPayment(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Lines").First(&order, orderID).Error; err != nil {
		return nil, err
	}

	split := ComputeSplit(order.Lines)

	var toStatus string
	var amountPaid float64
	switch order.PaymentStatus {
	case models.PaymentStatusPending:
		if split.EffectivePaymentType(order.PaymentType) == models.PaymentTypeDownPayment {
			toStatus = models.PaymentStatusDownpayment
			amountPaid = split.AmountDue(models.PaymentTypeDownPayment, order.ShippingFee)
		} else {
			toStatus = models.PaymentStatusFullyPaid
			amountPaid = split.AmountDue(models.PaymentTypeFull, order.ShippingFee)
		}
	case models.PaymentStatusDownpayment, models.PaymentStatusFullyPaid:
		// Checkout charge already applied; redelivered webhooks land here.
		return &order, nil
	default:
		return nil, fmt.Errorf("cannot confirm payment for order %d with payment status %q", order.ID, order.PaymentStatus)
	}

	return advancePaymentStatus(db, &order, toStatus, amountPaid)
}

// ConfirmBalancePayment settles the outstanding balance of a downpaid order
// after the gateway has confirmed the balance charge. The balance charge runs
// through its own checkout session, so this is only ever reached via that
// session's reference. Confirming an already fully paid order is a no-op.
func ConfirmBalancePayment(db *gorm.DB, orderID uint) (*models.Order, error) {
	var order models.Order
	if err := db.Preload("Lines").First(&order, orderID).Error; err != nil {
		return nil, err
	}

	switch order.PaymentStatus {
	case models.PaymentStatusDownpayment:
		return advancePaymentStatus(db, &order, models.PaymentStatusFullyPaid, order.Amount+order.ShippingFee)
	case models.PaymentStatusFullyPaid:
		return &order, nil
	default:
		return nil, fmt.Errorf("cannot settle balance for order %d with payment status %q", order.ID, order.PaymentStatus)
	}
}

// advancePaymentStatus commits a payment status move conditioned on the
// status the order was read at. Losing the race to a concurrent confirmation
// is not an error: the order is re-read and returned as-is.
func advancePaymentStatus(db *gorm.DB, order *models.Order, toStatus string, amountPaid float64) (*models.Order, error) {
	result := db.Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", order.ID, order.PaymentStatus).
		Updates(map[string]interface{}{
			"payment_status": toStatus,
			"amount_paid":    amountPaid,
			"balance":        order.Amount + order.ShippingFee - amountPaid,
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if err := db.Preload("Lines").First(order, order.ID).Error; err != nil {
		return nil, err
	}
	return order, nil
}
