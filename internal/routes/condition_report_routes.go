package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/zaigner/my-garage/internal/controllers"
	"github.com/zaigner/my-garage/internal/middleware"
)

func ConditionReportRoutes(r *gin.Engine) {
	reports := r.Group("/condition-reports")
	reports.Use(middleware.RequireAuth())
	{
		reports.POST("/", controllers.CreateConditionReport)
		reports.GET("/", controllers.ListConditionReports)
		reports.GET("/:id", controllers.GetConditionReport)
		reports.DELETE("/:id", controllers.DeleteConditionReport)
	}
}
