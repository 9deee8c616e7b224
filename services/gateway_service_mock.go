package services

import (
	"fmt"
	"sync"

	"github.com/abellano-woodworks/abellano-furniture-api/models"
	"github.com/google/uuid"
)

// MockPaymentGateway is an in-memory gateway for testing. Sessions start
// unpaid; tests call MarkPaid to simulate the buyer completing payment.
type MockPaymentGateway struct {
	sessions map[string]*PaymentVerification
	mu       sync.Mutex
}

// NewMockPaymentGateway creates a new mock payment gateway
func NewMockPaymentGateway() *MockPaymentGateway {
	return &MockPaymentGateway{
		sessions: make(map[string]*PaymentVerification),
	}
}

// SetAsMockForTesting sets this mock as the global gateway instance for testing
func (m *MockPaymentGateway) SetAsMockForTesting() {
	SetPaymentGateway(m)
}

// CreateCheckout registers an unpaid session and returns a fake redirect URL
func (m *MockPaymentGateway) CreateCheckout(order *models.Order, amountDue float64) (*CheckoutSession, error) {
	ref := uuid.NewString()

	m.mu.Lock()
	m.sessions[ref] = &PaymentVerification{Ref: ref, Paid: false, Amount: amountDue}
	m.mu.Unlock()

	return &CheckoutSession{
		Ref:         ref,
		RedirectURL: fmt.Sprintf("https://gateway.test/checkout/%s", ref),
		Amount:      amountDue,
	}, nil
}

// VerifyPayment returns the recorded outcome for a session
func (m *MockPaymentGateway) VerifyPayment(gatewayRef string) (*PaymentVerification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	verification, exists := m.sessions[gatewayRef]
	if !exists {
		return nil, fmt.Errorf("unknown payment session %s", gatewayRef)
	}
	copied := *verification
	return &copied, nil
}

// MarkPaid simulates the buyer completing payment on the gateway side
func (m *MockPaymentGateway) MarkPaid(gatewayRef string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if verification, exists := m.sessions[gatewayRef]; exists {
		verification.Paid = true
	}
}
