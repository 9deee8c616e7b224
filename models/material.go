package models

import (
	"time"

	"gorm.io/gorm"
)

// Material represents a raw-lumber catalog entry. Each material carries two
// per-plank prices: one for the 3x3 profile used for legs and frame pieces,
// and one for the 2x12 profile used for tabletops. Orders snapshot these
// prices into the stored line breakdown, so editing a material never changes
// historical order totals.
type Material struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"uniqueIndex;not null" json:"name"`
	PlankLegCost float64        `gorm:"not null;check:plank_leg_cost >= 0" json:"plank_leg_cost"` // per 3x3x10 plank
	PlankTopCost float64        `gorm:"not null;check:plank_top_cost >= 0" json:"plank_top_cost"` // per 2x12x10 plank
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Material model
func (Material) TableName() string {
	return "materials"
}
