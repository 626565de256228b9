package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Condition report areas
const (
	AreaExterior = "EXTERIOR"
	AreaInterior = "INTERIOR"
	AreaEngine   = "ENGINE"
	AreaWheels   = "WHEELS"
)

// ConditionReport stores an AI-graded assessment of one area of the car.
// Creating a report always applies its ValueAdjustment to the owning
// vehicle's current market value; reports are never informational only.
type ConditionReport struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	VehicleID uint   `json:"vehicle_id" gorm:"index;not null"`
	Area      string `json:"area" gorm:"size:20;not null"` // EXTERIOR, INTERIOR, ENGINE, WHEELS
	Photo     string `json:"photo" gorm:"size:255"`        // document store key

	// Grading (1-10 scale)
	Grade           float64         `json:"grade" gorm:"not null"`
	AIFeedback      string          `json:"ai_feedback"`
	ValueAdjustment decimal.Decimal `json:"value_adjustment" gorm:"type:numeric(10,2);default:0"`

	CreatedAt time.Time `json:"created_at"`
}
