package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Upgrade statuses. The transition graph is deliberately loose:
// any status may be set directly via update, only Install has
// dedicated semantics.
const (
	StatusWishlist  = "WISHLIST"
	StatusOrdered   = "ORDERED"
	StatusInstalled = "INSTALLED"
)

// Upgrade tracks planned and completed car modifications.
type Upgrade struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	VehicleID  uint   `json:"vehicle_id" gorm:"index;not null"`
	PartName   string `json:"part_name" gorm:"size:255;not null"`
	Brand      string `json:"brand" gorm:"size:100"`
	PartNumber string `json:"part_number" gorm:"size:100"`
	Status     string `json:"status" gorm:"size:20;default:WISHLIST"` // WISHLIST, ORDERED, INSTALLED

	Cost             decimal.Decimal `json:"cost" gorm:"type:numeric(10,2);default:0"`
	InstallationDate *time.Time      `json:"installation_date,omitempty"`
	Notes            string          `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
