package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/abellano-woodworks/abellano-furniture-api/config"
	"github.com/abellano-woodworks/abellano-furniture-api/models"
	"github.com/abellano-woodworks/abellano-furniture-api/services"
)

// PricingQuoteRequest represents the request body for a custom-piece quote
type PricingQuoteRequest struct {
	Length      float64  `json:"length" binding:"required"`
	Width       float64  `json:"width" binding:"required"`
	Height      float64  `json:"height" binding:"required"`
	LaborDays   *float64 `json:"labor_days" binding:"required"`
	LegMaterial string   `json:"leg_material" binding:"required"`
	TopMaterial string   `json:"top_material" binding:"required"`
}

// QuoteCustomPiece handles POST /api/v1/pricing/quote - prices a custom piece
// from buyer-supplied dimensions and chosen materials. The buyer may pick
// different materials for the leg/frame stock and the tabletop stock.
func QuoteCustomPiece(c *gin.Context) {
	var req PricingQuoteRequest
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

	db := config.GetDB()

	var legMaterial models.Material
	if err := db.Where("name = ?", req.LegMaterial).First(&legMaterial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
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
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to look up material",
			},
		})
		return
	}

	var topMaterial models.Material
	if err := db.Where("name = ?", req.TopMaterial).First(&topMaterial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
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
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to look up material",
			},
		})
		return
	}

	cfg := config.GetConfig()
	params := services.CostParameters{
		LaborCostPerDay: cfg.LaborCostPerDay,
		ProfitMargin:    cfg.ProfitMargin,
		OverheadCost:    cfg.OverheadCost,
	}
	dims := services.Dimensions{Length: req.Length, Width: req.Width, Height: req.Height}

	breakdown, err := services.ComputePrice(dims, *req.LaborDays, params, legMaterial.PlankLegCost, topMaterial.PlankTopCost)
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
				"message": "Failed to compute price",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    breakdown,
	})
}
