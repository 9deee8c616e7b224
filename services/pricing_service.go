package services

import (
	"fmt"
	"math"

	"github.com/abellano-woodworks/abellano-furniture-api/models"
)

// Dimension bounds enforced by the storefront UI. The engine re-validates
// them rather than trusting callers.
const (
	MinLengthFt = 2.0
	MaxLengthFt = 10.0
	MinWidthFt  = 2.0
	MaxWidthFt  = 6.0
	MinHeightFt = 2.5
	MaxHeightFt = 5.0
)

// Dimensions are the buyer-supplied measurements of a custom piece, in feet.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// CostParameters are the shop-level cost settings applied to every quote.
type CostParameters struct {
	LaborCostPerDay float64 `json:"labor_cost_per_day"`
	ProfitMargin    float64 `json:"profit_margin"` // fraction, e.g. 0.5 for 50%
	OverheadCost    float64 `json:"overhead_cost"`
}

// ValidationError reports which pricing input failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// LegPlanks returns the number of 3x3 planks needed for legs. Wide tables
// (exactly 6 ft) get one extra leg plank; everything else uses two. This is a
// fixed shop policy, not a formula.
func LegPlanks(width float64) int {
	if width == 6.0 {
		return 3
	}
	return 2
}

// TabletopPlanks returns the number of 2x12 planks needed for the tabletop.
// Each plank is 1 ft wide; a plank yields two tabletop sections when the
// table is 5 ft or shorter, otherwise one section per plank.
func TabletopPlanks(length, width float64) int {
	strips := math.Ceil(width / 1.0)
	sectionsPerPlank := 1.0
	if length <= 5.0 {
		sectionsPerPlank = 2.0
	}
	return int(math.Ceil(strips / sectionsPerPlank))
}

// FramePlanks returns the number of 3x3 planks needed for the frame.
func FramePlanks(length, width float64) int {
	planks := 0
	if length <= 5.0 {
		planks++
	} else {
		planks += 2
	}
	if width <= 5.0 {
		planks++
	} else {
		planks += 2
	}
	return planks
}

// ComputePrice turns dimensions, labor estimate and resolved material unit
// costs into a full price breakdown. It is deterministic and has no side
// effects. Leg and frame planks are both valued at the leg-stock unit cost;
// tabletop planks at the tabletop-stock unit cost.
func ComputePrice(dims Dimensions, laborDays float64, params CostParameters, legUnitCost, topUnitCost float64) (*models.PriceBreakdown, error) {
	if err := ValidateDimensions(dims); err != nil {
		return nil, err
	}
	if laborDays < 0 {
		return nil, &ValidationError{Field: "labor_days", Message: "labor days must not be negative"}
	}
	if legUnitCost < 0 {
		return nil, &ValidationError{Field: "leg_material", Message: "material unit cost must not be negative"}
	}
	if topUnitCost < 0 {
		return nil, &ValidationError{Field: "top_material", Message: "material unit cost must not be negative"}
	}

	planks := models.PlankCounts{
		Legs:     LegPlanks(dims.Width),
		Tabletop: TabletopPlanks(dims.Length, dims.Width),
		Frame:    FramePlanks(dims.Length, dims.Width),
	}

	materialCost := float64(planks.Legs+planks.Frame)*legUnitCost + float64(planks.Tabletop)*topUnitCost
	laborCost := laborDays * params.LaborCostPerDay
	subtotal := laborCost + materialCost + params.OverheadCost
	profit := subtotal * params.ProfitMargin

	return &models.PriceBreakdown{
		TotalLaborCost:    laborCost,
		TotalMaterialCost: materialCost,
		OverheadCost:      params.OverheadCost,
		Subtotal:          subtotal,
		ProfitAmount:      profit,
		FinalSellingPrice: subtotal + profit,
		Planks:            planks,
		Volume:            dims.Length * dims.Width * dims.Height,
	}, nil
}

// ValidateDimensions checks the buyer-supplied measurements against the
// configured bounds. Out-of-range values are rejected, never clamped.
func ValidateDimensions(dims Dimensions) error {
	if dims.Length < MinLengthFt || dims.Length > MaxLengthFt {
		return &ValidationError{
			Field:   "length",
			Message: fmt.Sprintf("length must be between %.0f and %.0f feet", MinLengthFt, MaxLengthFt),
		}
	}
	if dims.Width < MinWidthFt || dims.Width > MaxWidthFt {
		return &ValidationError{
			Field:   "width",
			Message: fmt.Sprintf("width must be between %.0f and %.0f feet", MinWidthFt, MaxWidthFt),
		}
	}
	if dims.Height < MinHeightFt || dims.Height > MaxHeightFt {
		return &ValidationError{
			Field:   "height",
			Message: fmt.Sprintf("height must be between %.1f and %.1f feet", MinHeightFt, MaxHeightFt),
		}
	}
	return nil
}
