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

func ownedUpgradeQuery(c *gin.Context) *gorm.DB {
	return config.DB.Model(&models.Upgrade{}).
		Joins("JOIN vehicles ON vehicles.id = upgrades.vehicle_id").
		Where("vehicles.owner_id = ?", currentUserID(c))
}

func CreateUpgrade(c *gin.Context) {
	var input struct {
		VehicleID  uint            `json:"vehicle_id" binding:"required"`
		PartName   string          `json:"part_name" binding:"required"`
		Brand      string          `json:"brand"`
		PartNumber string          `json:"part_number"`
		Status     string          `json:"status"`
		Cost       decimal.Decimal `json:"cost"`
		Notes      string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if _, ok := ownedVehicle(c, input.VehicleID); !ok {
		return
	}
	if input.Status == "" {
		input.Status = models.StatusWishlist
	}
	if !validStatus(input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	upgrade := models.Upgrade{
		VehicleID:  input.VehicleID,
		PartName:   input.PartName,
		Brand:      input.Brand,
		PartNumber: input.PartNumber,
		Status:     input.Status,
		Cost:       input.Cost,
		Notes:      input.Notes,
	}
	if err := config.DB.Create(&upgrade).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create upgrade: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"upgrade": upgrade})
}

func ListUpgrades(c *gin.Context) {
	q := ownedUpgradeQuery(c)
	if v := c.Query("vehicle_id"); v != "" {
		q = q.Where("upgrades.vehicle_id = ?", v)
	}
	if status := c.Query("status"); status != "" {
		q = q.Where("upgrades.status = ?", status)
	}

	var upgrades []models.Upgrade
	if err := q.Order("upgrades.installation_date DESC NULLS LAST").Find(&upgrades).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing upgrades"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": upgrades})
}

func GetUpgrade(c *gin.Context) {
	var upgrade models.Upgrade
	if err := ownedUpgradeQuery(c).Where("upgrades.id = ?", c.Param("id")).First(&upgrade).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Upgrade not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"upgrade": upgrade})
}

// UpdateUpgrade allows any status to be set directly; the transition
// graph is not enforced. Install has its own endpoint with the
// cost-override semantics.
func UpdateUpgrade(c *gin.Context) {
	var upgrade models.Upgrade
	if err := ownedUpgradeQuery(c).Where("upgrades.id = ?", c.Param("id")).First(&upgrade).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Upgrade not found"})
		return
	}

	var input struct {
		PartName         *string          `json:"part_name"`
		Brand            *string          `json:"brand"`
		PartNumber       *string          `json:"part_number"`
		Status           *string          `json:"status"`
		Cost             *decimal.Decimal `json:"cost"`
		InstallationDate *time.Time       `json:"installation_date"`
		Notes            *string          `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid update"})
		return
	}
	if input.Status != nil && !validStatus(*input.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
		return
	}

	updates := map[string]interface{}{}
	if input.PartName != nil {
		updates["part_name"] = *input.PartName
	}
	if input.Brand != nil {
		updates["brand"] = *input.Brand
	}
	if input.PartNumber != nil {
		updates["part_number"] = *input.PartNumber
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.Cost != nil {
		updates["cost"] = *input.Cost
	}
	if input.InstallationDate != nil {
		updates["installation_date"] = *input.InstallationDate
	}
	if input.Notes != nil {
		updates["notes"] = *input.Notes
	}

	if len(updates) > 0 {
		if err := config.DB.Model(&upgrade).Updates(updates).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update upgrade"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"upgrade": upgrade})
}

func DeleteUpgrade(c *gin.Context) {
	var upgrade models.Upgrade
	if err := ownedUpgradeQuery(c).Where("upgrades.id = ?", c.Param("id")).First(&upgrade).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Upgrade not found"})
		return
	}

	if err := config.DB.Delete(&upgrade).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete upgrade"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Upgrade deleted"})
}

// InstallUpgrade marks the part installed. A zero or omitted cost keeps
// the stored cost; record a genuinely free install via a normal update.
func InstallUpgrade(c *gin.Context) {
	var upgrade models.Upgrade
	if err := ownedUpgradeQuery(c).Where("upgrades.id = ?", c.Param("id")).First(&upgrade).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Upgrade not found"})
		return
	}

	var input struct {
		Cost *decimal.Decimal `json:"cost"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid install input"})
			return
		}
	}

	installed, err := svc.InstallUpgradePart(c.Request.Context(), upgrade.ID, input.Cost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not install upgrade: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"upgrade": installed})
}

func validStatus(status string) bool {
	switch status {
	case models.StatusWishlist, models.StatusOrdered, models.StatusInstalled:
		return true
	}
	return false
}
