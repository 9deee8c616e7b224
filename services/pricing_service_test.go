package services

import (
	"testing"

	"github.com/abellano-woodworks/abellano-furniture-api/models"
	"github.com/stretchr/testify/assert"
)

func TestLegPlanks(t *testing.T) {
	assert.Equal(t, 3, LegPlanks(6.0), "6 ft wide tables get an extra leg plank")
	assert.Equal(t, 2, LegPlanks(5.0))
	assert.Equal(t, 2, LegPlanks(3.0))
	assert.Equal(t, 2, LegPlanks(2.0))
}

func TestTabletopPlanks(t *testing.T) {
	// 3 strips, 2 sections per plank on a short table
	assert.Equal(t, 2, TabletopPlanks(4, 3))
	// 3 strips, 1 section per plank once the table is longer than 5 ft
	assert.Equal(t, 3, TabletopPlanks(6, 3))
	// boundary: exactly 5 ft still yields two sections per plank
	assert.Equal(t, 3, TabletopPlanks(5, 6))
	assert.Equal(t, 1, TabletopPlanks(4, 2))
}

func TestFramePlanks(t *testing.T) {
	assert.Equal(t, 2, FramePlanks(4, 4))
	assert.Equal(t, 4, FramePlanks(8, 8))
	assert.Equal(t, 3, FramePlanks(6, 3))
	assert.Equal(t, 3, FramePlanks(4, 6))
}

// TestComputePriceBreakdown pins the exact cost attribution: leg and frame
// planks are both valued at the leg-stock unit cost, tabletop planks at the
// tabletop-stock unit cost.
func TestComputePriceBreakdown(t *testing.T) {
	dims := Dimensions{Length: 6, Width: 3, Height: 2.5}
	params := CostParameters{LaborCostPerDay: 350, ProfitMargin: 0.5, OverheadCost: 500}

	breakdown, err := ComputePrice(dims, 7, params, 200, 800)
	assert.NoError(t, err)

	assert.Equal(t, models.PlankCounts{Legs: 2, Tabletop: 3, Frame: 3}, breakdown.Planks)
	// (2 legs + 3 frame) x 200 + 3 tabletop x 800
	assert.Equal(t, 3400.0, breakdown.TotalMaterialCost)
	assert.Equal(t, 2450.0, breakdown.TotalLaborCost)
	assert.Equal(t, 500.0, breakdown.OverheadCost)
	assert.Equal(t, 6350.0, breakdown.Subtotal)
	assert.Equal(t, 3175.0, breakdown.ProfitAmount)
	assert.Equal(t, 9525.0, breakdown.FinalSellingPrice)
	assert.Equal(t, 45.0, breakdown.Volume)
}

func TestComputePriceDeterministic(t *testing.T) {
	dims := Dimensions{Length: 5, Width: 4, Height: 3}
	params := CostParameters{LaborCostPerDay: 400, ProfitMargin: 0.4, OverheadCost: 250}

	first, err := ComputePrice(dims, 3, params, 150, 600)
	assert.NoError(t, err)
	second, err := ComputePrice(dims, 3, params, 150, 600)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestComputePriceInvariants(t *testing.T) {
	dims := Dimensions{Length: 6, Width: 4, Height: 3}
	params := CostParameters{LaborCostPerDay: 350, ProfitMargin: 0.5, OverheadCost: 500}

	breakdown, err := ComputePrice(dims, 5, params, 300, 300)
	assert.NoError(t, err)
	assert.GreaterOrEqual(t, breakdown.FinalSellingPrice, breakdown.Subtotal)
	assert.GreaterOrEqual(t, breakdown.Subtotal, 0.0)
	assert.Equal(t, breakdown.Subtotal, breakdown.TotalLaborCost+breakdown.TotalMaterialCost+breakdown.OverheadCost)
}

// TestComputePriceMonotonic verifies the final price grows with labor days,
// profit margin and overhead, everything else fixed.
func TestComputePriceMonotonic(t *testing.T) {
	dims := Dimensions{Length: 6, Width: 4, Height: 3}
	base := CostParameters{LaborCostPerDay: 350, ProfitMargin: 0.5, OverheadCost: 500}

	baseline, err := ComputePrice(dims, 5, base, 300, 300)
	assert.NoError(t, err)

	moreLabor, err := ComputePrice(dims, 6, base, 300, 300)
	assert.NoError(t, err)
	assert.Greater(t, moreLabor.FinalSellingPrice, baseline.FinalSellingPrice)

	moreMargin, err := ComputePrice(dims, 5, CostParameters{LaborCostPerDay: 350, ProfitMargin: 0.6, OverheadCost: 500}, 300, 300)
	assert.NoError(t, err)
	assert.Greater(t, moreMargin.FinalSellingPrice, baseline.FinalSellingPrice)

	moreOverhead, err := ComputePrice(dims, 5, CostParameters{LaborCostPerDay: 350, ProfitMargin: 0.5, OverheadCost: 600}, 300, 300)
	assert.NoError(t, err)
	assert.Greater(t, moreOverhead.FinalSellingPrice, baseline.FinalSellingPrice)
}

func TestComputePriceValidation(t *testing.T) {
	params := CostParameters{LaborCostPerDay: 350, ProfitMargin: 0.5, OverheadCost: 500}

	tests := []struct {
		name          string
		dims          Dimensions
		laborDays     float64
		expectedField string
	}{
		{
			name:          "length below minimum",
			dims:          Dimensions{Length: 1.5, Width: 3, Height: 3},
			laborDays:     5,
			expectedField: "length",
		},
		{
			name:          "length above maximum",
			dims:          Dimensions{Length: 11, Width: 3, Height: 3},
			laborDays:     5,
			expectedField: "length",
		},
		{
			name:          "width above maximum",
			dims:          Dimensions{Length: 6, Width: 7, Height: 3},
			laborDays:     5,
			expectedField: "width",
		},
		{
			name:          "height below minimum",
			dims:          Dimensions{Length: 6, Width: 3, Height: 2},
			laborDays:     5,
			expectedField: "height",
		},
		{
			name:          "negative labor days",
			dims:          Dimensions{Length: 6, Width: 3, Height: 3},
			laborDays:     -1,
			expectedField: "labor_days",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputePrice(tt.dims, tt.laborDays, params, 200, 800)
			assert.Error(t, err)

			validationErr, ok := err.(*ValidationError)
			assert.True(t, ok, "expected a ValidationError")
			assert.Equal(t, tt.expectedField, validationErr.Field)
		})
	}
}

func TestComputePriceBoundsInclusive(t *testing.T) {
	params := CostParameters{LaborCostPerDay: 350, ProfitMargin: 0.5, OverheadCost: 500}

	// Boundary values are valid
	_, err := ComputePrice(Dimensions{Length: 2, Width: 2, Height: 2.5}, 0, params, 200, 800)
	assert.NoError(t, err)
	_, err = ComputePrice(Dimensions{Length: 10, Width: 6, Height: 5}, 0, params, 200, 800)
	assert.NoError(t, err)
}
