package services

import (
	"errors"
	"testing"

	"github.com/abellano-woodworks/abellano-furniture-api/models"
	"github.com/abellano-woodworks/abellano-furniture-api/tests/testutil"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLifecycleTestDB(t *testing.T) *gorm.DB {
	testutil.RequireTestEnvironment(t)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Product{}, &models.Order{}, &models.OrderLine{}); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

func createLifecycleOrder(t *testing.T, db *gorm.DB, status, deliveryOption string, custom bool) *models.Order {
	t.Helper()

	customer := models.User{
		Auth0ID: "auth0|lifecycle-" + status + deliveryOption,
		Name:    "Lifecycle Customer",
		Email:   "lifecycle-" + status + deliveryOption + "@example.com",
		Role:    "customer",
	}
	if err := db.Where(models.User{Auth0ID: customer.Auth0ID}).FirstOrCreate(&customer).Error; err != nil {
		t.Fatalf("Failed to create customer: %v", err)
	}

	order := models.Order{
		CustomerID:     customer.ID,
		DeliveryOption: deliveryOption,
		PaymentType:    models.PaymentTypeFull,
		Amount:         5000,
		Balance:        5000,
		Status:         status,
		PaymentStatus:  models.PaymentStatusPending,
		Lines: []models.OrderLine{
			{Name: "Dining table", Quantity: 1, UnitPrice: 5000, IsCustom: custom},
		},
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("Failed to create order: %v", err)
	}

	return &order
}

func TestInitialStatus(t *testing.T) {
	customLines := []models.OrderLine{{IsCustom: true}}
	stockLines := []models.OrderLine{{IsCustom: false}}
	mixedLines := []models.OrderLine{{IsCustom: false}, {IsCustom: true}}

	// Custom work must begin regardless of delivery option
	assert.Equal(t, models.StatusOnProcess, InitialStatus(customLines, models.DeliveryOptionPickup))
	assert.Equal(t, models.StatusOnProcess, InitialStatus(customLines, models.DeliveryOptionDelivery))
	assert.Equal(t, models.StatusOnProcess, InitialStatus(mixedLines, models.DeliveryOptionPickup))

	// Stock-only orders are ready at once when picked up
	assert.Equal(t, models.StatusReadyForPickup, InitialStatus(stockLines, models.DeliveryOptionPickup))
	assert.Equal(t, models.StatusOnProcess, InitialStatus(stockLines, models.DeliveryOptionDelivery))
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(models.StatusPending, models.StatusOnProcess))
	assert.True(t, CanTransition(models.StatusOnProcess, models.StatusReadyForPickup))
	assert.True(t, CanTransition(models.StatusDelivered, models.StatusRequestingForRefund))
	assert.True(t, CanTransition(models.StatusRequestingForRefund, models.StatusRefunded))

	// Terminal states have no forward fulfillment transitions
	assert.False(t, CanTransition(models.StatusDelivered, models.StatusOnProcess))
	assert.False(t, CanTransition(models.StatusCancelled, models.StatusOnProcess))
	assert.False(t, CanTransition(models.StatusRefunded, models.StatusPending))
	assert.False(t, CanTransition(models.StatusPending, models.StatusDelivered))
}

func TestTransitionRejectsIllegalMove(t *testing.T) {
	db := setupLifecycleTestDB(t)
	NewMockAuditSink().SetAsMockForTesting()

	order := createLifecycleOrder(t, db, models.StatusDelivered, models.DeliveryOptionDelivery, false)

	_, err := Transition(db, order.ID, models.StatusOnProcess, "", "", "admin@example.com")
	assert.Error(t, err)

	var invalidErr *InvalidTransitionError
	assert.True(t, errors.As(err, &invalidErr))
	assert.Equal(t, models.StatusDelivered, invalidErr.From)
	assert.Equal(t, models.StatusOnProcess, invalidErr.To)

	// Nothing was mutated
	var reloaded models.Order
	db.First(&reloaded, order.ID)
	assert.Equal(t, models.StatusDelivered, reloaded.Status)
}

func TestTransitionCancelRequiresRemarks(t *testing.T) {
	db := setupLifecycleTestDB(t)
	sink := NewMockAuditSink()
	sink.SetAsMockForTesting()

	order := createLifecycleOrder(t, db, models.StatusPending, models.DeliveryOptionPickup, false)

	_, err := Transition(db, order.ID, models.StatusCancelled, "", "", "admin@example.com")
	var remarksErr *RemarksRequiredError
	assert.True(t, errors.As(err, &remarksErr))
	assert.Equal(t, models.StatusCancelled, remarksErr.Target)

	// No state change and no audit event on rejection
	var reloaded models.Order
	db.First(&reloaded, order.ID)
	assert.Equal(t, models.StatusPending, reloaded.Status)
	assert.Empty(t, sink.Events())

	// Same call with remarks succeeds and persists them
	updated, err := Transition(db, order.ID, models.StatusCancelled, "customer requested cancellation", "", "admin@example.com")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, updated.Status)
	assert.NotNil(t, updated.Remarks)
	assert.Equal(t, "customer requested cancellation", *updated.Remarks)
}

func TestTransitionDeliveredRequiresProof(t *testing.T) {
	db := setupLifecycleTestDB(t)
	NewMockAuditSink().SetAsMockForTesting()

	order := createLifecycleOrder(t, db, models.StatusOnProcess, models.DeliveryOptionDelivery, false)

	_, err := Transition(db, order.ID, models.StatusDelivered, "", "", "admin@example.com")
	var proofErr *ProofRequiredError
	assert.True(t, errors.As(err, &proofErr))

	updated, err := Transition(db, order.ID, models.StatusDelivered, "", "proofs/1700000000_door.png", "admin@example.com")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusDelivered, updated.Status)
	assert.NotNil(t, updated.DeliveryProofKey)
	assert.Equal(t, "proofs/1700000000_door.png", *updated.DeliveryProofKey)
}

func TestTransitionPickupNeedsNoProof(t *testing.T) {
	db := setupLifecycleTestDB(t)
	NewMockAuditSink().SetAsMockForTesting()

	order := createLifecycleOrder(t, db, models.StatusReadyForPickup, models.DeliveryOptionPickup, false)

	updated, err := Transition(db, order.ID, models.StatusPickedUp, "", "", "admin@example.com")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusPickedUp, updated.Status)
}

func TestTransitionRefundSettlesPaymentStatus(t *testing.T) {
	db := setupLifecycleTestDB(t)
	NewMockAuditSink().SetAsMockForTesting()

	order := createLifecycleOrder(t, db, models.StatusRequestingForRefund, models.DeliveryOptionDelivery, true)

	updated, err := Transition(db, order.ID, models.StatusRefunded, "damaged in transit", "", "admin@example.com")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusRefunded, updated.Status)
	assert.Equal(t, models.PaymentStatusRefunded, updated.PaymentStatus)
}

func TestTransitionEmitsAuditEvent(t *testing.T) {
	db := setupLifecycleTestDB(t)
	sink := NewMockAuditSink()
	sink.SetAsMockForTesting()

	order := createLifecycleOrder(t, db, models.StatusPending, models.DeliveryOptionDelivery, false)

	_, err := Transition(db, order.ID, models.StatusOnProcess, "", "", "admin@example.com")
	assert.NoError(t, err)

	events := sink.Events()
	assert.Len(t, events, 1)
	assert.Equal(t, order.ID, events[0].OrderID)
	assert.Equal(t, models.StatusPending, events[0].FromStatus)
	assert.Equal(t, models.StatusOnProcess, events[0].ToStatus)
	assert.Equal(t, "admin@example.com", events[0].Actor)
	assert.False(t, events[0].Timestamp.IsZero())
}

// TestTransitionSurvivesAuditSinkFailure verifies that audit delivery is
// best-effort: a failing sink never blocks the business transition.
func TestTransitionSurvivesAuditSinkFailure(t *testing.T) {
	db := setupLifecycleTestDB(t)
	sink := NewMockAuditSink()
	sink.FailWith(errors.New("collector unreachable"))
	sink.SetAsMockForTesting()

	order := createLifecycleOrder(t, db, models.StatusPending, models.DeliveryOptionDelivery, false)

	updated, err := Transition(db, order.ID, models.StatusOnProcess, "", "", "admin@example.com")
	assert.NoError(t, err)
	assert.Equal(t, models.StatusOnProcess, updated.Status)
}

// TestTransitionLosesRaceToConcurrentMove drives the optimistic-concurrency
// path: once a first transition lands, a second one computed against the
// stale status must fail with InvalidTransitionError.
func TestTransitionLosesRaceToConcurrentMove(t *testing.T) {
	db := setupLifecycleTestDB(t)
	NewMockAuditSink().SetAsMockForTesting()

	order := createLifecycleOrder(t, db, models.StatusOnProcess, models.DeliveryOptionPickup, false)

	// First admin cancels
	_, err := Transition(db, order.ID, models.StatusCancelled, "out of stock", "", "admin-a@example.com")
	assert.NoError(t, err)

	// Second admin, still looking at On Process, tries to mark it picked up
	_, err = Transition(db, order.ID, models.StatusPickedUp, "", "", "admin-b@example.com")
	var invalidErr *InvalidTransitionError
	assert.True(t, errors.As(err, &invalidErr))
	assert.Equal(t, models.StatusCancelled, invalidErr.From)
}

func TestTransitionStatusStringsRoundTrip(t *testing.T) {
	db := setupLifecycleTestDB(t)
	NewMockAuditSink().SetAsMockForTesting()

	order := createLifecycleOrder(t, db, models.StatusPending, models.DeliveryOptionDelivery, false)

	updated, err := Transition(db, order.ID, models.StatusOnProcess, "", "", "admin@example.com")
	assert.NoError(t, err)

	// Consumers match on the literal strings, so they must persist verbatim
	var raw string
	db.Raw("SELECT status FROM orders WHERE id = ?", updated.ID).Scan(&raw)
	assert.Equal(t, "On Process", raw)
}
