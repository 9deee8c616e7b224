package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/abellano-woodworks/abellano-furniture-api/models"
	"github.com/google/uuid"
)

// CheckoutSession is the gateway-side session the buyer is redirected to.
type CheckoutSession struct {
	Ref         string  `json:"ref"`
	RedirectURL string  `json:"redirect_url"`
	Amount      float64 `json:"amount"`
}

// PaymentVerification is the gateway's answer when a webhook notification is
// verified against it.
type PaymentVerification struct {
	Ref    string  `json:"ref"`
	Paid   bool    `json:"paid"`
	Amount float64 `json:"amount"`
}

// PaymentGateway abstracts the external payment provider. There is no direct
// callback into the order flow: confirmation arrives via webhook or via the
// client's reconcile-on-resume query.
type PaymentGateway interface {
	CreateCheckout(order *models.Order, amountDue float64) (*CheckoutSession, error)
	VerifyPayment(gatewayRef string) (*PaymentVerification, error)
}

var gatewayInstance PaymentGateway

// InitPaymentGateway initializes the gateway client against the provider's
// API base URL.
func InitPaymentGateway(baseURL string) PaymentGateway {
	gatewayInstance = &HTTPPaymentGateway{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	return gatewayInstance
}

// GetPaymentGateway returns the initialized gateway instance
func GetPaymentGateway() PaymentGateway {
	return gatewayInstance
}

// SetPaymentGateway sets the gateway instance (primarily for testing)
func SetPaymentGateway(gateway PaymentGateway) {
	gatewayInstance = gateway
}

// HTTPPaymentGateway talks to the hosted payment provider over HTTP.
type HTTPPaymentGateway struct {
	baseURL    string
	httpClient *http.Client
}

// CreateCheckout registers a checkout session with the provider and returns
// the redirect URL for the buyer.
func (g *HTTPPaymentGateway) CreateCheckout(order *models.Order, amountDue float64) (*CheckoutSession, error) {
	ref := uuid.NewString()

	body, err := json.Marshal(map[string]interface{}{
		"ref":      ref,
		"order_id": order.ID,
		"amount":   amountDue,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode checkout request: %w", err)
	}

	resp, err := g.httpClient.Post(g.baseURL+"/checkout", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("gateway returned status %d creating checkout", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}
	if session.Ref == "" {
		session.Ref = ref
	}

	return &session, nil
}

// VerifyPayment asks the provider for the authoritative outcome of a session.
// Webhook payloads are never trusted directly.
func (g *HTTPPaymentGateway) VerifyPayment(gatewayRef string) (*PaymentVerification, error) {
	resp, err := g.httpClient.Get(fmt.Sprintf("%s/sessions/%s", g.baseURL, gatewayRef))
	if err != nil {
		return nil, fmt.Errorf("failed to query payment session: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("gateway returned status %d verifying session %s", resp.StatusCode, gatewayRef)
	}

	var verification PaymentVerification
	if err := json.NewDecoder(resp.Body).Decode(&verification); err != nil {
		return nil, fmt.Errorf("failed to decode verification response: %w", err)
	}

	return &verification, nil
}
