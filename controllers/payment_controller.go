package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/abellano-woodworks/abellano-furniture-api/config"
	"github.com/abellano-woodworks/abellano-furniture-api/middleware"
	"github.com/abellano-woodworks/abellano-furniture-api/models"
	"github.com/abellano-woodworks/abellano-furniture-api/services"
)

// PaymentWebhookRequest represents the gateway's payment notification
type PaymentWebhookRequest struct {
	GatewayRef string `json:"gateway_ref" binding:"required"`
}

// PaymentWebhook handles POST /api/v1/payments/webhook - the gateway's
// server-to-server notification. The payload is never trusted directly: the
// outcome is verified against the gateway before the order's payment status
// moves.
func PaymentWebhook(c *gin.Context) {
	var req PaymentWebhookRequest
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

	verification, err := gateway.VerifyPayment(req.GatewayRef)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GATEWAY_ERROR",
				"message": "Could not verify payment with gateway",
			},
		})
		return
	}
	if !verification.Paid {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "PAYMENT_NOT_CONFIRMED",
				"message": "Gateway has not confirmed this payment",
			},
		})
		return
	}

	// The session reference tells the two charges apart: checkout sessions
	// live on the pending-payment marker, balance sessions on the order.
	db := config.GetDB()
	var order *models.Order
	var marker models.PendingPayment
	if err := db.Where("gateway_ref = ?", req.GatewayRef).First(&marker).Error; err == nil {
		order, err = services.ConfirmPayment(db, marker.OrderID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PAYMENT_ERROR",
					"message": "Failed to apply payment confirmation",
				},
			})
			return
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to look up payment session",
			},
		})
		return
	} else {
		var balanceOrder models.Order
		if err := db.Where("balance_gateway_ref = ?", req.GatewayRef).First(&balanceOrder).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Unknown or already-reconciled session; nothing to do
				c.JSON(http.StatusOK, gin.H{
					"success": true,
					"data":    gin.H{"applied": false},
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to look up payment session",
				},
			})
			return
		}

		order, err = services.ConfirmBalancePayment(db, balanceOrder.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PAYMENT_ERROR",
					"message": "Failed to apply payment confirmation",
				},
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"applied":        true,
			"order_id":       order.ID,
			"payment_status": order.PaymentStatus,
		},
	})
}

// CreateBalanceCheckout handles POST /api/v1/orders/:id/payments/balance -
// opens a gateway checkout session for the outstanding balance of a downpaid
// order. The session gets its own reference so the webhook can never mistake
// a redelivered deposit confirmation for the balance settlement.
func CreateBalanceCheckout(c *gin.Context) {
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

	if order.PaymentStatus != models.PaymentStatusDownpayment {
		c.JSON(http.StatusConflict, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "NO_BALANCE_DUE",
				"message": "Order has no outstanding balance to charge",
			},
		})
		return
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

	session, err := gateway.CreateCheckout(order, order.Balance)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "GATEWAY_ERROR",
				"message": "Could not create balance checkout session",
			},
		})
		return
	}

	if err := db.Model(order).Update("balance_gateway_ref", session.Ref).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to record balance checkout session",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"order_id":     order.ID,
			"gateway_ref":  session.Ref,
			"redirect_url": session.RedirectURL,
			"amount":       session.Amount,
		},
	})
}

// ReconcilePayments handles POST /api/v1/payments/reconcile - invoked by the
// client every time it regains foreground focus after a gateway redirect.
// Safe to call any number of times: once the pending marker is gone the pass
// is a no-op.
func ReconcilePayments(c *gin.Context) {
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

	result, err := services.Reconcile(db, user.ID)
	if err != nil {
		// Transient: the marker is left in place, the client retries on its
		// next foreground event.
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "RECONCILIATION_ERROR",
				"message": "Reconciliation incomplete, will retry",
			},
			"data": result,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
