// internal/models/vehicle.go
package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Vehicle is the core asset: one car in a user's garage.
// CurrentMarketValue is only ever written by the valuation and
// condition-grading workflows, never directly by a client update.
type Vehicle struct {
	ID      uint    `gorm:"primaryKey" json:"id"`
	OwnerID uint    `json:"owner_id" gorm:"index;not null"`
	Make    string  `json:"make" gorm:"size:50;not null"`
	Model   string  `json:"model" gorm:"size:50;not null"`
	Year    int     `json:"year" gorm:"not null"`
	Trim    string  `json:"trim" gorm:"size:100"`
	VIN     *string `json:"vin,omitempty" gorm:"size:17;uniqueIndex"`

	// Financials
	PurchasePrice      *decimal.Decimal `json:"purchase_price,omitempty" gorm:"type:numeric(12,2)"`
	CurrentMarketValue decimal.Decimal  `json:"current_market_value" gorm:"type:numeric(12,2);default:0"`

	Mileage   uint      `json:"mileage" gorm:"default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Services         []ServiceRecord   `gorm:"foreignKey:VehicleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"services,omitempty"`
	Upgrades         []Upgrade         `gorm:"foreignKey:VehicleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"upgrades,omitempty"`
	ConditionReports []ConditionReport `gorm:"foreignKey:VehicleID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"condition_reports,omitempty"`
}

func (v *Vehicle) String() string {
	return fmt.Sprintf("%d %s %s", v.Year, v.Make, v.Model)
}
