package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zaigner/my-garage/internal/config"
	"github.com/zaigner/my-garage/internal/models"
)

// ownedRecordQuery scopes service record lookups to the caller's
// vehicles via a join.
func ownedRecordQuery(c *gin.Context) *gorm.DB {
	return config.DB.Model(&models.ServiceRecord{}).
		Joins("JOIN vehicles ON vehicles.id = service_records.vehicle_id").
		Where("vehicles.owner_id = ?", currentUserID(c))
}

// CreateServiceRecord adds a manually entered service record (as
// opposed to the receipt-upload path, which goes through OCR).
func CreateServiceRecord(c *gin.Context) {
	var input struct {
		VehicleID   uint            `json:"vehicle_id" binding:"required"`
		Date        time.Time       `json:"date" binding:"required"`
		Vendor      string          `json:"vendor" binding:"required"`
		Description string          `json:"description"`
		Category    string          `json:"category"`
		TotalCost   decimal.Decimal `json:"total_cost"`
		IsVerified  bool            `json:"is_verified"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, ok := ownedVehicle(c, input.VehicleID); !ok {
		return
	}
	if input.Category == "" {
		input.Category = models.CategoryMaintenance
	}
	if !validCategory(input.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	record := models.ServiceRecord{
		VehicleID:   input.VehicleID,
		Date:        input.Date,
		Vendor:      input.Vendor,
		Description: input.Description,
		Category:    input.Category,
		TotalCost:   input.TotalCost,
		IsVerified:  input.IsVerified,
	}
	if err := config.DB.Create(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create service record: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"record": record})
}

func ListServiceRecords(c *gin.Context) {
	q := ownedRecordQuery(c)
	if v := c.Query("vehicle_id"); v != "" {
		q = q.Where("service_records.vehicle_id = ?", v)
	}
	if cat := c.Query("category"); cat != "" {
		q = q.Where("service_records.category = ?", cat)
	}
	if verified := c.Query("is_verified"); verified != "" {
		q = q.Where("service_records.is_verified = ?", verified == "true")
	}

	var records []models.ServiceRecord
	if err := q.Order("service_records.date DESC").Find(&records).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing service records"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": records})
}

func GetServiceRecord(c *gin.Context) {
	var record models.ServiceRecord
	if err := ownedRecordQuery(c).Where("service_records.id = ?", c.Param("id")).First(&record).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service record not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"record": record})
}

func UpdateServiceRecord(c *gin.Context) {
	var record models.ServiceRecord
	if err := ownedRecordQuery(c).Where("service_records.id = ?", c.Param("id")).First(&record).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service record not found"})
		return
	}

	var input struct {
		Date        *time.Time       `json:"date"`
		Vendor      *string          `json:"vendor"`
		Description *string          `json:"description"`
		Category    *string          `json:"category"`
		TotalCost   *decimal.Decimal `json:"total_cost"`
		IsVerified  *bool            `json:"is_verified"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		return
	}
	if input.Category != nil && !validCategory(*input.Category) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown category"})
		return
	}

	updates := map[string]interface{}{}
	if input.Date != nil {
		updates["date"] = *input.Date
	}
	if input.Vendor != nil {
		updates["vendor"] = *input.Vendor
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Category != nil {
		updates["category"] = *input.Category
	}
	if input.TotalCost != nil {
		updates["total_cost"] = *input.TotalCost
	}
	if input.IsVerified != nil {
		updates["is_verified"] = *input.IsVerified
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&record).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update service record"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"record": record})
}

func DeleteServiceRecord(c *gin.Context) {
	var record models.ServiceRecord
	if err := ownedRecordQuery(c).Where("service_records.id = ?", c.Param("id")).First(&record).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Service record not found"})
		return
	}

	if err := config.DB.Delete(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete service record"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service record deleted"})
}

func validCategory(cat string) bool {
	switch cat {
	case models.CategoryMaintenance, models.CategoryRepair, models.CategoryUpgrade:
		return true
	}
	return false
}
