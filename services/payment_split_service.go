package services

import (
	"math"

	"github.com/abellano-woodworks/abellano-furniture-api/models"
)

// DownPaymentRate is the fraction of the customized portion collected as a
// deposit. Standard items are always paid in full, even on a down-payment
// order, because they ship or are reserved immediately.
const DownPaymentRate = 0.3

// PaymentSplit separates an order's customized value from its standard value
// and carries the resulting deposit/balance apportionment.
type PaymentSplit struct {
	CustomizedTotal   float64 `json:"customized_total"`
	NormalTotal       float64 `json:"normal_total"`
	DownPaymentAmount float64 `json:"down_payment_amount"`
	RemainingBalance  float64 `json:"remaining_balance"`
	FullAmount        float64 `json:"full_amount"`
}

// ComputeSplit classifies the order lines and computes the deposit/balance
// split. The deposit on the customized portion and the remaining balance
// always reconstruct the customized total exactly: the balance is derived by
// subtraction rather than computed as an independent 70%, so cent rounding
// can never drift.
func ComputeSplit(lines []models.OrderLine) PaymentSplit {
	var customized, normal float64
	for i := range lines {
		lineTotal := lines[i].UnitPrice * float64(lines[i].Quantity)
		if lines[i].IsCustom {
			customized += lineTotal
		} else {
			normal += lineTotal
		}
	}

	customized = roundCents(customized)
	normal = roundCents(normal)
	deposit := roundCents(customized * DownPaymentRate)

	return PaymentSplit{
		CustomizedTotal:   customized,
		NormalTotal:       normal,
		DownPaymentAmount: roundCents(deposit + normal),
		RemainingBalance:  roundCents(customized - deposit),
		FullAmount:        roundCents(customized + normal),
	}
}

// EffectivePaymentType returns the payment type actually honored for the
// split. Down payment silently falls back to full payment when the order has
// no customized value, since nothing is eligible for a deposit.
func (s PaymentSplit) EffectivePaymentType(requested string) string {
	if requested == models.PaymentTypeDownPayment && s.CustomizedTotal > 0 {
		return models.PaymentTypeDownPayment
	}
	return models.PaymentTypeFull
}

// AmountDue is the amount charged at checkout for the given payment type,
// shipping included.
func (s PaymentSplit) AmountDue(paymentType string, shippingFee float64) float64 {
	if s.EffectivePaymentType(paymentType) == models.PaymentTypeDownPayment {
		return roundCents(s.DownPaymentAmount + shippingFee)
	}
	return roundCents(s.FullAmount + shippingFee)
}

// roundCents rounds to currency minor units (two decimal places).
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
