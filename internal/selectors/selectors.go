// Package selectors holds the read-only aggregation queries. Every
// function is a pure read of current database state; there is no
// caching layer in front of them.
package selectors

import (
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zaigner/my-garage/internal/models"
)

// MaintenanceTotal sums the cost of a vehicle's verified service
// records; zero if there are none.
func MaintenanceTotal(db *gorm.DB, vehicleID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.Model(&models.ServiceRecord{}).
		Where("vehicle_id = ? AND is_verified = ?", vehicleID, true).
		Select("COALESCE(SUM(total_cost), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// UpgradeTotal sums the cost of a vehicle's installed upgrades; zero if
// there are none.
func UpgradeTotal(db *gorm.DB, vehicleID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.Model(&models.Upgrade{}).
		Where("vehicle_id = ? AND status = ?", vehicleID, models.StatusInstalled).
		Select("COALESCE(SUM(cost), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// BuildSummary aggregates the financial and condition picture of one
// vehicle.
type BuildSummary struct {
	Vehicle            *models.Vehicle
	MaintenanceTotal   decimal.Decimal
	UpgradeTotal       decimal.Decimal
	TotalInvestment    decimal.Decimal
	CurrentMarketValue decimal.Decimal
	Equity             decimal.Decimal
	LatestGrade        *float64
	IsProfitable       bool
}

// GetBuildSummary computes the dashboard numbers for a vehicle.
// Investment counts maintenance, installed upgrades and the purchase
// price (zero when unknown); equity is market value minus investment.
// The latest grade comes from the newest condition report, newest id
// winning a created_at tie; it is nil when no reports exist.
func GetBuildSummary(db *gorm.DB, vehicleID uint) (*BuildSummary, error) {
	var vehicle models.Vehicle
	if err := db.First(&vehicle, vehicleID).Error; err != nil {
		return nil, err
	}

	maintenance, err := MaintenanceTotal(db, vehicleID)
	if err != nil {
		return nil, err
	}
	upgrades, err := UpgradeTotal(db, vehicleID)
	if err != nil {
		return nil, err
	}

	purchase := decimal.Zero
	if vehicle.PurchasePrice != nil {
		purchase = *vehicle.PurchasePrice
	}
	investment := maintenance.Add(upgrades).Add(purchase)
	equity := vehicle.CurrentMarketValue.Sub(investment)

	var latestGrade *float64
	var latest models.ConditionReport
	err = db.Where("vehicle_id = ?", vehicleID).
		Order("created_at DESC, id DESC").
		First(&latest).Error
	if err == nil {
		latestGrade = &latest.Grade
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return &BuildSummary{
		Vehicle:            &vehicle,
		MaintenanceTotal:   maintenance,
		UpgradeTotal:       upgrades,
		TotalInvestment:    investment,
		CurrentMarketValue: vehicle.CurrentMarketValue,
		Equity:             equity,
		LatestGrade:        latestGrade,
		IsProfitable:       equity.GreaterThan(decimal.Zero),
	}, nil
}

// WishlistItems lists a vehicle's WISHLIST upgrades by part name.
func WishlistItems(db *gorm.DB, vehicleID uint) ([]models.Upgrade, error) {
	var items []models.Upgrade
	err := db.Where("vehicle_id = ? AND status = ?", vehicleID, models.StatusWishlist).
		Order("part_name ASC").
		Find(&items).Error
	return items, err
}

// PendingServiceCount counts a vehicle's unverified service records.
func PendingServiceCount(db *gorm.DB, vehicleID uint) (int64, error) {
	var count int64
	err := db.Model(&models.ServiceRecord{}).
		Where("vehicle_id = ? AND is_verified = ?", vehicleID, false).
		Count(&count).Error
	return count, err
}

// GarageValue sums the current market value of all of a user's vehicles.
func GarageValue(db *gorm.DB, ownerID uint) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := db.Model(&models.Vehicle{}).
		Where("owner_id = ?", ownerID).
		Select("COALESCE(SUM(current_market_value), 0)").
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}
