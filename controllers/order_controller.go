package controllers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/abellano-woodworks/abellano-furniture-api/config"
	"github.com/abellano-woodworks/abellano-furniture-api/middleware"
	"github.com/abellano-woodworks/abellano-furniture-api/models"
	"github.com/abellano-woodworks/abellano-furniture-api/services"
)

// CreateOrderRequest represents the checkout request. The lines being
// purchased are referenced by cart line ID; each cart line already carries
// its final unit price (custom pieces were priced when added to the cart).
type CreateOrderRequest struct {
	CartItemIDs     []uint  `json:"cart_item_ids" binding:"required,min=1"`
	DeliveryOption  string  `json:"delivery_option" binding:"required,oneof=delivery pickup"`
	PaymentType     string  `json:"payment_type" binding:"required,oneof=full_payment down_payment"`
	ShippingFee     float64 `json:"shipping_fee" binding:"gte=0"`
	ShippingAddress *string `json:"shipping_address"`
}

// TransitionOrderRequest represents the request body for a status transition
type TransitionOrderRequest struct {
	Status   string `json:"status" binding:"required"`
	Remarks  string `json:"remarks"`
	ProofKey string `json:"proof_key"`
}

// CreateOrder handles POST /api/v1/orders - checks out cart lines into an
// order, computes the payment split, writes the pending-payment marker and
// opens a gateway checkout session. Stock is NOT decremented here; that only
// happens once the gateway confirms payment and the reconciliation pass runs.
func CreateOrder(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	if req.DeliveryOption == models.DeliveryOptionDelivery && (req.ShippingAddress == nil || *req.ShippingAddress == "") {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Delivery orders require a shipping address",
				"field":   "shipping_address",
			},
		})
		return
	}

	var cartItems []models.CartItem
	if err := db.Where("user_id = ? AND id IN ?", user.ID, req.CartItemIDs).Find(&cartItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load cart lines",
			},
		})
		return
	}
	if len(cartItems) != len(req.CartItemIDs) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "One or more cart lines do not exist",
				"field":   "cart_item_ids",
			},
		})
		return
	}

	// A buyer can only have one order awaiting gateway confirmation at a time;
	// the pending marker is keyed by user for the reconcile-on-resume query.
	var existing models.PendingPayment
	if err := db.Where("user_id = ?", user.ID).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PAYMENT_PENDING",
				"message": "A previous order is still awaiting payment confirmation",
			},
		})
		return
	}

	lines := make([]models.OrderLine, 0, len(cartItems))
	for i := range cartItems {
		item := &cartItems[i]
		cartItemID := item.ID
		lines = append(lines, models.OrderLine{
			ProductID:   item.ProductID,
			CartItemID:  &cartItemID,
			Name:        item.Name,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			IsCustom:    item.IsCustom,
			Length:      item.Length,
			Width:       item.Width,
			Height:      item.Height,
			LaborDays:   item.LaborDays,
			LegMaterial: item.LegMaterial,
			TopMaterial: item.TopMaterial,
			Breakdown:   item.Breakdown,
		})
	}

	split := services.ComputeSplit(lines)
	paymentType := split.EffectivePaymentType(req.PaymentType)
	amountDue := split.AmountDue(paymentType, req.ShippingFee)

	order := models.Order{
		CustomerID:      user.ID,
		Lines:           lines,
		DeliveryOption:  req.DeliveryOption,
		ShippingAddress: req.ShippingAddress,
		ShippingFee:     req.ShippingFee,
		PaymentType:     paymentType,
		Amount:          split.FullAmount,
		AmountPaid:      0,
		Balance:         split.FullAmount + req.ShippingFee,
		Status:          services.InitialStatus(lines, req.DeliveryOption),
		PaymentStatus:   models.PaymentStatusPending,
	}

	gateway := services.GetPaymentGateway()
	if gateway == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GATEWAY_ERROR",
				"message": "Payment gateway is not configured",
			},
		})
		return
	}

	var session *services.CheckoutSession
	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		session, err = gateway.CreateCheckout(&order, amountDue)
		if err != nil {
			return err
		}

		marker := models.PendingPayment{
			OrderID:    order.ID,
			UserID:     user.ID,
			GatewayRef: session.Ref,
		}
		return tx.Create(&marker).Error
	})
	if err != nil {
		log.Printf("checkout failed for user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CHECKOUT_ERROR",
				"message": "Failed to create order",
			},
		})
		return
	}

	if err := db.Preload("Lines").Preload("Customer").First(&order, order.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order details",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"order":        order,
			"split":        split,
			"amount_due":   amountDue,
			"redirect_url": session.RedirectURL,
			"gateway_ref":  session.Ref,
		},
	})
}

// ListOrders handles GET /api/v1/orders - customers see their own orders,
// admins see all
func ListOrders(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return
	}

	query := db.Preload("Lines").Preload("Customer").Order("id DESC")
	if user.Role != "admin" {
		query = query.Where("customer_id = ?", user.ID)
	}

	var orders []models.Order
	if err := query.Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list orders",
			},
		})
		return
	}

	if orders == nil {
		orders = []models.Order{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    orders,
	})
}

// GetOrder handles GET /api/v1/orders/:id - returns one order. Customers can
// only read their own orders.
func GetOrder(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return
	}

	order, ok := loadOrderForUser(c, db, &user)
	if !ok {
		return
	}

	// Attach a viewable URL for the delivery photo when one exists
	if order.DeliveryProofKey != nil && *order.DeliveryProofKey != "" {
		if proofService := services.GetProofService(); proofService != nil {
			if url, err := proofService.GetProofURL(*order.DeliveryProofKey); err == nil && url != "" {
				order.DeliveryProofURL = &url
			} else if err != nil {
				log.Printf("failed to generate proof URL for order %d: %v", order.ID, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// GetOrderPayment handles GET /api/v1/orders/:id/payment - the lightweight
// status query polled by the client's reconciliation loop.
func GetOrderPayment(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return
	}

	order, ok := loadOrderForUser(c, db, &user)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"order_id":       order.ID,
			"status":         order.Status,
			"payment_status": order.PaymentStatus,
		},
	})
}

// TransitionOrder handles PUT /api/v1/orders/:id/status - moves an order
// through the fulfillment state machine (admins only). Negative terminal
// transitions require remarks; marking a delivery order Delivered requires a
// delivery photo reference.
func TransitionOrder(c *gin.Context) {
	auth0ID, err := middleware.GetUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User profile not found. Please create a profile first.",
			},
		})
		return
	}

	if user.Role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Only admins can update order status",
			},
		})
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid order id",
			},
		})
		return
	}

	var req TransitionOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	order, err := services.Transition(db, uint(orderID), req.Status, req.Remarks, req.ProofKey, user.Email)
	if err != nil {
		var invalidErr *services.InvalidTransitionError
		var remarksErr *services.RemarksRequiredError
		var proofErr *services.ProofRequiredError
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NOT_FOUND",
					"message": "Order not found",
				},
			})
		case errors.As(err, &invalidErr):
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_TRANSITION",
					"message": invalidErr.Error(),
					"from":    invalidErr.From,
					"to":      invalidErr.To,
				},
			})
		case errors.As(err, &remarksErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "REMARKS_REQUIRED",
					"message": remarksErr.Error(),
					"field":   "remarks",
				},
			})
		case errors.As(err, &proofErr):
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PROOF_REQUIRED",
					"message": proofErr.Error(),
					"field":   "proof_key",
				},
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to update order status",
				},
			})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    order,
	})
}

// loadOrderForUser reads the :id path param, loads the order and enforces
// that customers only see their own orders. Writes the error response and
// returns ok=false on failure.
func loadOrderForUser(c *gin.Context, db *gorm.DB, user *models.User) (*models.Order, bool) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid order id",
			},
		})
		return nil, false
	}

	var order models.Order
	if err := db.Preload("Lines").Preload("Customer").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "ORDER_NOT_FOUND",
					"message": "Order not found",
				},
			})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load order",
			},
		})
		return nil, false
	}

	if user.Role != "admin" && order.CustomerID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "You can only view your own orders",
			},
		})
		return nil, false
	}

	return &order, true
}
