package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/zaigner/my-garage/internal/config"
	"github.com/zaigner/my-garage/internal/models"
	"github.com/zaigner/my-garage/internal/selectors"
)

// CreateVehicle adds a car to the caller's garage. The market value
// always starts at zero; only the valuation workflows move it.
func CreateVehicle(c *gin.Context) {
	var input struct {
		Make          string           `json:"make" binding:"required"`
		Model         string           `json:"model" binding:"required"`
		Year          int              `json:"year" binding:"required"`
		Trim          string           `json:"trim"`
		VIN           *string          `json:"vin"`
		PurchasePrice *decimal.Decimal `json:"purchase_price"`
		Mileage       uint             `json:"mileage"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid vehicle input: " + err.Error()})
		return
	}

	vehicle := models.Vehicle{
		OwnerID:            currentUserID(c),
		Make:               input.Make,
		Model:              input.Model,
		Year:               input.Year,
		Trim:               input.Trim,
		VIN:                input.VIN,
		PurchasePrice:      input.PurchasePrice,
		CurrentMarketValue: decimal.Zero,
		Mileage:            input.Mileage,
	}

	if err := config.DB.Create(&vehicle).Error; err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "a vehicle with this VIN already exists"})
			return
		}
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "a vehicle with this VIN already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create vehicle: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"vehicle": vehicle})
}

// ListVehicles returns the caller's garage, optionally filtered.
func ListVehicles(c *gin.Context) {
	q := config.DB.Where("owner_id = ?", currentUserID(c))
	if makeName := c.Query("make"); makeName != "" {
		q = q.Where("make = ?", makeName)
	}
	if model := c.Query("model"); model != "" {
		q = q.Where("model = ?", model)
	}
	if year := c.Query("year"); year != "" {
		q = q.Where("year = ?", year)
	}

	var vehicles []models.Vehicle
	if err := q.Order("created_at DESC").Find(&vehicles).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching vehicles"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": vehicles})
}

func GetVehicle(c *gin.Context) {
	vehicle, ok := ownedVehicle(c, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// UpdateVehicle edits the client-writable fields. CurrentMarketValue is
// deliberately not among them.
func UpdateVehicle(c *gin.Context) {
	vehicle, ok := ownedVehicle(c, c.Param("id"))
	if !ok {
		return
	}

	var input struct {
		Make          *string          `json:"make"`
		Model         *string          `json:"model"`
		Year          *int             `json:"year"`
		Trim          *string          `json:"trim"`
		VIN           *string          `json:"vin"`
		PurchasePrice *decimal.Decimal `json:"purchase_price"`
		Mileage       *uint            `json:"mileage"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		return
	}

	updates := map[string]interface{}{}
	if input.Make != nil {
		updates["make"] = *input.Make
	}
	if input.Model != nil {
		updates["model"] = *input.Model
	}
	if input.Year != nil {
		updates["year"] = *input.Year
	}
	if input.Trim != nil {
		updates["trim"] = *input.Trim
	}
	if input.VIN != nil {
		updates["vin"] = *input.VIN
	}
	if input.PurchasePrice != nil {
		updates["purchase_price"] = *input.PurchasePrice
	}
	if input.Mileage != nil {
		updates["mileage"] = *input.Mileage
	}

	if len(updates) > 0 {
		if err := config.DB.Model(vehicle).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update vehicle: " + err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"vehicle": vehicle})
}

// DeleteVehicle removes the vehicle; the FK constraints cascade to its
// services, upgrades and condition reports.
func DeleteVehicle(c *gin.Context) {
	vehicle, ok := ownedVehicle(c, c.Param("id"))
	if !ok {
		return
	}

	if err := config.DB.Delete(vehicle).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete vehicle"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Vehicle deleted"})
}

// RefreshValuation queues the async valuation job and acknowledges
// immediately; the new value lands later.
func RefreshValuation(c *gin.Context) {
	vehicle, ok := ownedVehicle(c, c.Param("id"))
	if !ok {
		return
	}

	if err := jobs.EnqueueValuation(vehicle.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not queue valuation: " + err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"message": "Valuation update queued successfully"})
}

// BuildSummary returns the composite aggregation with monetary amounts
// as fixed-precision strings.
func BuildSummary(c *gin.Context) {
	vehicle, ok := ownedVehicle(c, c.Param("id"))
	if !ok {
		return
	}

	summary, err := selectors.GetBuildSummary(config.DB, vehicle.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not build summary: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicle":              summary.Vehicle,
		"maintenance_total":    summary.MaintenanceTotal.StringFixed(2),
		"upgrade_total":        summary.UpgradeTotal.StringFixed(2),
		"total_investment":     summary.TotalInvestment.StringFixed(2),
		"current_market_value": summary.CurrentMarketValue.StringFixed(2),
		"equity":               summary.Equity.StringFixed(2),
		"latest_grade":         summary.LatestGrade,
		"is_profitable":        summary.IsProfitable,
	})
}

// Wishlist lists the vehicle's wishlist upgrades by part name.
func Wishlist(c *gin.Context) {
	vehicle, ok := ownedVehicle(c, c.Param("id"))
	if !ok {
		return
	}

	items, err := selectors.WishlistItems(config.DB, vehicle.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not fetch wishlist"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": items})
}

// PendingServices reports how many service records still await OCR.
func PendingServices(c *gin.Context) {
	vehicle, ok := ownedVehicle(c, c.Param("id"))
	if !ok {
		return
	}

	count, err := selectors.PendingServiceCount(config.DB, vehicle.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not count pending services"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pending": count})
}

// UploadReceipt ingests a receipt image: the record is created in its
// placeholder state right away and extraction runs in the background.
func UploadReceipt(c *gin.Context) {
	vehicle, ok := ownedVehicle(c, c.Param("id"))
	if !ok {
		return
	}

	file, err := c.FormFile("receipt")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "receipt file is required"})
		return
	}
	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read receipt file"})
		return
	}
	defer f.Close()
	image, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "could not read receipt file"})
		return
	}

	record, err := svc.CreateServiceRecordFromUpload(c.Request.Context(), vehicle.ID, image, file.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create service record: " + err.Error()})
		return
	}

	if err := jobs.EnqueueOCR(record.ID); err != nil {
		// Record exists and stays pending; surface the queue failure
		logrus.WithField("record_id", record.ID).WithError(err).Error("could not queue OCR job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Record created but extraction could not be queued"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"record": record, "message": "Receipt uploaded, extraction in progress"})
}

// GarageSummary totals the caller's whole garage.
func GarageSummary(c *gin.Context) {
	userID := currentUserID(c)

	var count int64
	if err := config.DB.Model(&models.Vehicle{}).Where("owner_id = ?", userID).Count(&count).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not count vehicles"})
		return
	}
	total, err := selectors.GarageValue(config.DB, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not total garage value"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"vehicle_count":      count,
		"total_garage_value": total.StringFixed(2),
	})
}
