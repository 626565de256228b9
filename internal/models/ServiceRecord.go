package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Service record categories
const (
	CategoryMaintenance = "MAINTENANCE"
	CategoryRepair      = "REPAIR"
	CategoryUpgrade     = "UPGRADE"
)

// Placeholder values a record carries between receipt upload and OCR
// extraction. A record stays on these (and unverified) if extraction
// never succeeds.
const (
	VendorProcessing       = "Processing..."
	DescriptionAwaitingOCR = "Awaiting AI extraction"
)

// ServiceRecord stores service history and digitized receipts.
type ServiceRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	VehicleID   uint      `json:"vehicle_id" gorm:"index;not null"`
	Date        time.Time `json:"date"`
	Vendor      string    `json:"vendor" gorm:"size:255"`
	Description string    `json:"description"`
	Category    string    `json:"category" gorm:"size:20;default:MAINTENANCE"` // MAINTENANCE, REPAIR, UPGRADE

	// Document digitization
	TotalCost    decimal.Decimal `json:"total_cost" gorm:"type:numeric(10,2);default:0"`
	ReceiptImage string          `json:"receipt_image,omitempty" gorm:"size:255"` // document store key
	OCRRawData   datatypes.JSON  `json:"ocr_raw_data,omitempty"`                  // raw extraction payload, opaque

	IsVerified bool      `json:"is_verified" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
