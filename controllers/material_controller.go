package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/abellano-woodworks/abellano-furniture-api/config"
	"github.com/abellano-woodworks/abellano-furniture-api/middleware"
	"github.com/abellano-woodworks/abellano-furniture-api/models"
)

// CreateMaterialRequest represents the request body for adding a material
type CreateMaterialRequest struct {
	Name         string   `json:"name" binding:"required"`
	PlankLegCost *float64 `json:"plank_leg_cost" binding:"required"`
	PlankTopCost *float64 `json:"plank_top_cost" binding:"required"`
}

// ListMaterials handles GET /api/v1/materials - lists the raw-material catalog
func ListMaterials(c *gin.Context) {
	db := config.GetDB()

	var materials []models.Material
	if err := db.Order("name").Find(&materials).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to list materials",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    materials,
	})
}

// CreateMaterial handles POST /api/v1/materials - adds a catalog entry (admins only)
func CreateMaterial(c *gin.Context) {
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
				"message": "Only admins can manage the material catalog",
			},
		})
		return
	}

	var req CreateMaterialRequest
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

	if *req.PlankLegCost < 0 || *req.PlankTopCost < 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Plank costs must not be negative",
			},
		})
		return
	}

	material := models.Material{
		Name:         req.Name,
		PlankLegCost: *req.PlankLegCost,
		PlankTopCost: *req.PlankTopCost,
	}

	if err := db.Create(&material).Error; err != nil {
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") ||
			strings.Contains(errMsg, "unique constraint") ||
			strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "MATERIAL_EXISTS",
					"message": "A material with this name already exists",
				},
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create material",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    material,
	})
}
