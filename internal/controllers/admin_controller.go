package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/zaigner/my-garage/internal/config"
	"github.com/zaigner/my-garage/internal/tasks"
)

// SweepValuations enqueues a valuation refresh for every vehicle in the
// system and reports the count. The worker also runs this on a schedule;
// the endpoint exists for manual triggering.
func SweepValuations(c *gin.Context) {
	count, err := tasks.BulkValuationSweep(config.DB, jobs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Sweep failed: " + err.Error(), "enqueued": count})
		return
	}
	c.JSON(http.StatusOK, gin.H{"enqueued": count})
}
