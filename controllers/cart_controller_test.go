package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/abellano-woodworks/abellano-furniture-api/config"
	"github.com/abellano-woodworks/abellano-furniture-api/models"
)

func TestAddCartItem_StockProduct(t *testing.T) {
	// Setup
	db := setupTestDB(t)
	config.SetDB(db)
	setTestConfig(t)
	createTestUser(t, db, "auth0|buyer", "customer")

	product := models.Product{Name: "Bookshelf", Price: 2000, Stock: 5}
	db.Create(&product)

	router := setupTestRouter()
	router.POST("/cart", mockAuthMiddleware("auth0|buyer", "customer", "token"), AddCartItem)

	body, _ := json.Marshal(map[string]interface{}{
		"product_id": product.ID,
		"quantity":   2,
	})
	req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code, "Response body: %s", w.Body.String())

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response["success"].(bool))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Bookshelf", data["name"])
	assert.Equal(t, 2.0, data["quantity"])
	assert.Equal(t, 2000.0, data["unit_price"])
	assert.Equal(t, false, data["is_custom"])

	// Stock is untouched: it is only consumed after payment is confirmed
	var reloaded models.Product
	db.First(&reloaded, product.ID)
	assert.Equal(t, 5, reloaded.Stock)
}

func TestAddCartItem_CustomPiece(t *testing.T) {
	// Setup
	db := setupTestDB(t)
	config.SetDB(db)
	setTestConfig(t)
	seedMaterials(t, db)
	createTestUser(t, db, "auth0|buyer", "customer")

	router := setupTestRouter()
	router.POST("/cart", mockAuthMiddleware("auth0|buyer", "customer", "token"), AddCartItem)

	body, _ := json.Marshal(map[string]interface{}{
		"is_custom":    true,
		"quantity":     1,
		"name":         "Conference table",
		"length":       6,
		"width":        3,
		"height":       2.5,
		"labor_days":   7,
		"leg_material": "Mahogany",
		"top_material": "Mahogany",
	})
	req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code, "Response body: %s", w.Body.String())

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "Conference table", data["name"])
	assert.Equal(t, true, data["is_custom"])
	// Priced on the spot by the pricing engine
	assert.Equal(t, 9525.0, data["unit_price"])

	// The breakdown is frozen onto the cart line
	breakdown := data["breakdown"].(map[string]interface{})
	assert.Equal(t, 9525.0, breakdown["final_selling_price"])
	assert.Equal(t, 3400.0, breakdown["total_material_cost"])
}

func TestAddCartItem_CustomPieceMissingDimensions(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	setTestConfig(t)
	createTestUser(t, db, "auth0|buyer", "customer")

	router := setupTestRouter()
	router.POST("/cart", mockAuthMiddleware("auth0|buyer", "customer", "token"), AddCartItem)

	body, _ := json.Marshal(map[string]interface{}{
		"is_custom": true,
		"quantity":  1,
		"length":    6,
	})
	req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "VALIDATION_ERROR", errorData["code"])
}

func TestAddCartItem_ProductNotFound(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	setTestConfig(t)
	createTestUser(t, db, "auth0|buyer", "customer")

	router := setupTestRouter()
	router.POST("/cart", mockAuthMiddleware("auth0|buyer", "customer", "token"), AddCartItem)

	body, _ := json.Marshal(map[string]interface{}{
		"product_id": 9999,
		"quantity":   1,
	})
	req := httptest.NewRequest(http.MethodPost, "/cart", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "PRODUCT_NOT_FOUND", errorData["code"])
}

func TestGetCart(t *testing.T) {
	// Setup
	db := setupTestDB(t)
	config.SetDB(db)
	buyer := createTestUser(t, db, "auth0|buyer", "customer")
	other := createTestUser(t, db, "auth0|other", "customer")

	db.Create(&models.CartItem{UserID: buyer.ID, Name: "Bookshelf", Quantity: 1, UnitPrice: 2000})
	db.Create(&models.CartItem{UserID: buyer.ID, Name: "Stool", Quantity: 2, UnitPrice: 500})
	db.Create(&models.CartItem{UserID: other.ID, Name: "Bench", Quantity: 1, UnitPrice: 1500})

	router := setupTestRouter()
	router.GET("/cart", mockAuthMiddleware("auth0|buyer", "customer", "token"), GetCart)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	assert.True(t, response["success"].(bool))
	// Only the buyer's own lines come back
	data := response["data"].([]interface{})
	assert.Len(t, data, 2)
}

func TestRemoveCartItem(t *testing.T) {
	// Setup
	db := setupTestDB(t)
	config.SetDB(db)
	buyer := createTestUser(t, db, "auth0|buyer", "customer")

	item := models.CartItem{UserID: buyer.ID, Name: "Bookshelf", Quantity: 1, UnitPrice: 2000}
	db.Create(&item)

	router := setupTestRouter()
	router.DELETE("/cart/:id", mockAuthMiddleware("auth0|buyer", "customer", "token"), RemoveCartItem)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/cart/%d", item.ID), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&models.CartItem{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

// TestRemoveCartItem_OtherUsersLine: deleting someone else's cart line is a
// 404, not a delete.
func TestRemoveCartItem_OtherUsersLine(t *testing.T) {
	db := setupTestDB(t)
	config.SetDB(db)
	createTestUser(t, db, "auth0|buyer", "customer")
	other := createTestUser(t, db, "auth0|other", "customer")

	item := models.CartItem{UserID: other.ID, Name: "Bench", Quantity: 1, UnitPrice: 1500}
	db.Create(&item)

	router := setupTestRouter()
	router.DELETE("/cart/:id", mockAuthMiddleware("auth0|buyer", "customer", "token"), RemoveCartItem)

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/cart/%d", item.ID), nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)

	var response map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &response)
	errorData := response["error"].(map[string]interface{})
	assert.Equal(t, "CART_ITEM_NOT_FOUND", errorData["code"])

	var count int64
	db.Model(&models.CartItem{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
