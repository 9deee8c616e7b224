package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/abellano-woodworks/abellano-furniture-api/config"
	"github.com/abellano-woodworks/abellano-furniture-api/middleware"
	"github.com/abellano-woodworks/abellano-furniture-api/models"
	"github.com/abellano-woodworks/abellano-furniture-api/services"
)

// AddCartItemRequest represents the request body for adding a cart line.
// Stock items carry a product ID; custom pieces carry dimensions, labor
// estimate and chosen materials instead and are priced on the spot.
type AddCartItemRequest struct {
	ProductID   *uint    `json:"product_id"`
	Quantity    int      `json:"quantity" binding:"required,gt=0"`
	IsCustom    bool     `json:"is_custom"`
	Name        string   `json:"name"`
	Length      *float64 `json:"length"`
	Width       *float64 `json:"width"`
	Height      *float64 `json:"height"`
	LaborDays   *float64 `json:"labor_days"`
	LegMaterial *string  `json:"leg_material"`
	TopMaterial *string  `json:"top_material"`
}

// AddCartItem handles POST /api/v1/cart - adds a line to the buyer's cart
func AddCartItem(c *gin.Context) {
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

	var req AddCartItemRequest
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

	item := models.CartItem{
		UserID:   user.ID,
		Quantity: req.Quantity,
		IsCustom: req.IsCustom,
	}

	if req.IsCustom {
		if req.Length == nil || req.Width == nil || req.Height == nil ||
			req.LaborDays == nil || req.LegMaterial == nil || req.TopMaterial == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Custom pieces require dimensions, labor days and materials",
				},
			})
			return
		}

		var legMaterial, topMaterial models.Material
		if err := db.Where("name = ?", *req.LegMaterial).First(&legMaterial).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Unknown material for field leg_material",
					"field":   "leg_material",
				},
			})
			return
		}
		if err := db.Where("name = ?", *req.TopMaterial).First(&topMaterial).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Unknown material for field top_material",
					"field":   "top_material",
				},
			})
			return
		}

		cfg := config.GetConfig()
		breakdown, err := services.ComputePrice(
			services.Dimensions{Length: *req.Length, Width: *req.Width, Height: *req.Height},
			*req.LaborDays,
			services.CostParameters{
				LaborCostPerDay: cfg.LaborCostPerDay,
				ProfitMargin:    cfg.ProfitMargin,
				OverheadCost:    cfg.OverheadCost,
			},
			legMaterial.PlankLegCost,
			topMaterial.PlankTopCost,
		)
		if err != nil {
			var validationErr *services.ValidationError
			if errors.As(err, &validationErr) {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "VALIDATION_ERROR",
						"message": validationErr.Message,
						"field":   validationErr.Field,
					},
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "PRICING_ERROR",
					"message": "Failed to price custom piece",
				},
			})
			return
		}

		name := req.Name
		if name == "" {
			name = "Custom table"
		}
		item.Name = name
		item.UnitPrice = breakdown.FinalSellingPrice
		item.Length = req.Length
		item.Width = req.Width
		item.Height = req.Height
		item.LaborDays = req.LaborDays
		item.LegMaterial = req.LegMaterial
		item.TopMaterial = req.TopMaterial
		item.Breakdown = breakdown
	} else {
		if req.ProductID == nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Stock items require a product_id",
					"field":   "product_id",
				},
			})
			return
		}

		var product models.Product
		if err := db.First(&product, *req.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "PRODUCT_NOT_FOUND",
						"message": "Product not found",
					},
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to look up product",
				},
			})
			return
		}

		item.ProductID = req.ProductID
		item.Name = product.Name
		item.UnitPrice = product.Price
	}

	if err := db.Create(&item).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to add item to cart",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    item,
	})
}

// GetCart handles GET /api/v1/cart - returns the buyer's cart lines
func GetCart(c *gin.Context) {
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

	var items []models.CartItem
	if err := db.Preload("Product").Where("user_id = ?", user.ID).Order("id").Find(&items).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load cart",
			},
		})
		return
	}

	if items == nil {
		items = []models.CartItem{}
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    items,
	})
}

// RemoveCartItem handles DELETE /api/v1/cart/:id - removes one cart line
func RemoveCartItem(c *gin.Context) {
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

	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid cart item id",
			},
		})
		return
	}

	result := db.Where("id = ? AND user_id = ?", itemID, user.ID).Delete(&models.CartItem{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to remove cart item",
			},
		})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "CART_ITEM_NOT_FOUND",
				"message": "Cart item not found",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"deleted": true},
	})
}
