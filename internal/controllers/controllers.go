package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaigner/my-garage/internal/config"
	"github.com/zaigner/my-garage/internal/models"
	"github.com/zaigner/my-garage/internal/services"
)

// Jobs is the slice of the task queue the request path needs.
type Jobs interface {
	EnqueueOCR(recordID uint) error
	EnqueueValuation(vehicleID uint) error
}

var (
	svc  *services.Service
	jobs Jobs
)

// Init wires the workflow service and job queue into the handlers.
// Called once from main before the router starts serving.
func Init(s *services.Service, j Jobs) {
	svc = s
	jobs = j
}

// currentUserID pulls the caller's id out of the JWT claims.
func currentUserID(c *gin.Context) uint {
	return uint(c.MustGet("user_id").(float64))
}

// ownedVehicle loads a vehicle only if the caller owns it; on a miss it
// writes the 404 and reports false. Ownership scoping happens here for
// every vehicle-rooted action.
func ownedVehicle(c *gin.Context, vehicleID interface{}) (*models.Vehicle, bool) {
	var vehicle models.Vehicle
	err := config.DB.Where("id = ? AND owner_id = ?", vehicleID, currentUserID(c)).First(&vehicle).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Vehicle not found"})
		return nil, false
	}
	return &vehicle, true
}
