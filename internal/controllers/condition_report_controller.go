package controllers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zaigner/my-garage/internal/config"
	"github.com/zaigner/my-garage/internal/models"
	"github.com/zaigner/my-garage/internal/services"
)

func ownedReportQuery(c *gin.Context) *gorm.DB {
	return config.DB.Model(&models.ConditionReport{}).
		Joins("JOIN vehicles ON vehicles.id = condition_reports.vehicle_id").
		Where("vehicles.owner_id = ?", currentUserID(c))
}

// CreateConditionReport records an AI grade for one area of the car.
// Multipart form: vehicle_id, area, grade, feedback, impact, photo.
// The impact is applied to the vehicle's market value atomically with
// the report itself.
func CreateConditionReport(c *gin.Context) {
	vehicleID, err := strconv.ParseUint(c.PostForm("vehicle_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "vehicle_id is required"})
		return
	}
	vehicle, ok := ownedVehicle(c, uint(vehicleID))
	if !ok {
		return
	}

	area := c.PostForm("area")
	if !validArea(area) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown area"})
		return
	}

	grade, err := strconv.ParseFloat(c.PostForm("grade"), 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "grade is required"})
		return
	}

	impact := decimal.Zero
	if raw := c.PostForm("impact"); raw != "" {
		impact, err = decimal.NewFromString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid impact amount"})
			return
		}
	}

	var photo []byte
	var photoType string
	if file, err := c.FormFile("photo"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read photo"})
			return
		}
		defer f.Close()
		photo, err = io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "could not read photo"})
			return
		}
		photoType = file.Header.Get("Content-Type")
	}

	report, err := svc.AddConditionGrade(c.Request.Context(), services.ConditionGradeInput{
		VehicleID: vehicle.ID,
		Area:      area,
		Photo:     photo,
		PhotoType: photoType,
		Grade:     grade,
		Feedback:  c.PostForm("feedback"),
		Impact:    impact,
	})
	if err != nil {
		if errors.Is(err, services.ErrGradeOutOfRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not save condition report: " + err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"report": report})
}

func ListConditionReports(c *gin.Context) {
	q := ownedReportQuery(c)
	if v := c.Query("vehicle_id"); v != "" {
		q = q.Where("condition_reports.vehicle_id = ?", v)
	}
	if area := c.Query("area"); area != "" {
		q = q.Where("condition_reports.area = ?", area)
	}

	var reports []models.ConditionReport
	if err := q.Order("condition_reports.created_at DESC").Find(&reports).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error listing condition reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reports})
}

func GetConditionReport(c *gin.Context) {
	var report models.ConditionReport
	if err := ownedReportQuery(c).Where("condition_reports.id = ?", c.Param("id")).First(&report).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Condition report not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": report})
}

// DeleteConditionReport removes the report record. The value adjustment
// it already applied stays applied: reports are assessments, not
// reversible ledger entries.
func DeleteConditionReport(c *gin.Context) {
	var report models.ConditionReport
	if err := ownedReportQuery(c).Where("condition_reports.id = ?", c.Param("id")).First(&report).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Condition report not found"})
		return
	}

	if err := config.DB.Delete(&report).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete condition report"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Condition report deleted"})
}

func validArea(area string) bool {
	switch area {
	case models.AreaExterior, models.AreaInterior, models.AreaEngine, models.AreaWheels:
		return true
	}
	return false
}
